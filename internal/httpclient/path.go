package httpclient

import (
	"net/url"
	"strings"
)

// AppendSegment returns a copy of base with segment joined onto its path by exactly one
// slash. Empty parts inside segment are dropped, so appending "a" then "b" equals
// appending "a/b". Segments that would start a new absolute URL are rejected.
func AppendSegment(base *url.URL, segment string) (*url.URL, error) {
	if base == nil {
		return nil, &PreconditionError{Op: "append segment", Reason: "base url is nil"}
	}
	if isAbsolute(segment) {
		return nil, &PreconditionError{Op: "append segment", Reason: "segment " + segment + " is an absolute url"}
	}

	out := *base
	if base.User != nil {
		user := *base.User
		out.User = &user
	}

	parts := strings.FieldsFunc(segment, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return &out, nil
	}

	out.Path = strings.TrimRight(base.Path, "/") + "/" + strings.Join(parts, "/")
	out.RawPath = ""
	return &out, nil
}

// JoinURL parses base and appends each segment in turn.
func JoinURL(base string, segments ...string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", &PreconditionError{Op: "join url", Reason: "invalid base url", Err: err}
	}
	for _, s := range segments {
		if u, err = AppendSegment(u, s); err != nil {
			return "", err
		}
	}
	return u.String(), nil
}

// MustJoinURL is JoinURL for package-level endpoint constants.
func MustJoinURL(base string, segments ...string) string {
	u, err := JoinURL(base, segments...)
	if err != nil {
		panic(err)
	}
	return u
}

func isAbsolute(segment string) bool {
	s := strings.TrimSpace(segment)
	if strings.HasPrefix(s, "//") {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		// a segment that does not parse cannot be a valid relative path either
		return true
	}
	return u.Scheme != "" || u.Host != ""
}
