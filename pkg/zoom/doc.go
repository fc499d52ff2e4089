// Package zoom is a typed client for the Zoom REST API.
//
// A Client holds no user state. Every resource method takes the caller's
// model.CredentialSet, and the token operations return new sets instead of
// mutating old ones. Use a Session to keep one user's credentials fresh across
// goroutines:
//
//	client, _ := zoom.New(zoom.Options{ClientID: id, ClientSecret: secret})
//	creds, _ := client.Exchange(ctx, code, redirectURI, "")
//	session := client.NewSession(creds)
//	current, _ := session.Credentials(ctx)
//	meeting, _ := client.GetMeeting(ctx, current, 85746065432)
package zoom
