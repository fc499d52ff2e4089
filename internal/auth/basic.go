package auth

import "encoding/base64"

// BasicCredentials authorizes calls to the OAuth token endpoint with the app's client
// id and secret.
type BasicCredentials struct {
	ClientID     string
	ClientSecret string
}

func (b BasicCredentials) AuthorizationHeaderValue() string {
	raw := b.ClientID + ":" + b.ClientSecret
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}
