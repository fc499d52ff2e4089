package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/go-querystring/query"
	"github.com/stoewer/go-strcase"
)

// ErrUnsupportedValue is returned when a value cannot be flattened into query or form
// parameters.
var ErrUnsupportedValue = errors.New("codec: unsupported value")

// EncodeJSON serializes v as wire JSON: keys in snake_case, dates as RFC 3339.
func EncodeJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	tree, err := toTree(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

// EncodeValues flattens v into key/value parameters for a query string or a
// form-encoded body. v may be url.Values, map[string]string or a struct whose fields
// carry `url` tags.
func EncodeValues(v any) (url.Values, error) {
	switch t := v.(type) {
	case nil:
		return url.Values{}, nil
	case url.Values:
		out := make(url.Values, len(t))
		for k, vals := range t {
			out[k] = append([]string(nil), vals...)
		}
		return out, nil
	case map[string]string:
		out := make(url.Values, len(t))
		for k, val := range t {
			out.Set(k, val)
		}
		return out, nil
	}

	out, err := query.Values(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
	}
	return out, nil
}

// toTree marshals v with encoding/json and re-reads it as a generic tree with
// snake_case keys. Numbers are kept as json.Number so 64-bit ids survive.
func toTree(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: encode %T: %w", v, err)
	}
	tree, err := parseTree(raw)
	if err != nil {
		return nil, fmt.Errorf("codec: encode %T: %w", v, err)
	}
	return renameKeys(tree, strcase.SnakeCase), nil
}

func parseTree(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON value")
	}
	return tree, nil
}
