package providers

import (
	"net/url"
	"regexp"
	"strings"
)

// sensitiveQueryKeys is the fixed set of query-string keys that must
// never reach a log line in the clear.
var sensitiveQueryKeys = map[string]bool{
	"apikey":        true,
	"api_key":       true,
	"token":         true,
	"secret":        true,
	"authorization": true,
	"cookie":        true,
}

const redacted = "[REDACTED]"

var bearerLike = regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9._-]{8,}`)
var jwtLike = regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)

// SanitizeURL returns u with every sensitive query parameter replaced
// by the literal [REDACTED], safe to embed in a log line.
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return SanitizeText(raw)
	}
	q := u.Query()
	for key := range q {
		if sensitiveQueryKeys[strings.ToLower(key)] {
			q.Set(key, redacted)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// SanitizeText scrubs bearer tokens and JWT-shaped substrings from an
// arbitrary log line or error string. Secrets are never embedded in
// URLs in the first place (parameters are passed structurally); this
// is a defense-in-depth pass over whatever text a client ends up
// logging, including upstream error bodies that might echo a header.
func SanitizeText(s string) string {
	s = bearerLike.ReplaceAllString(s, "${1}"+redacted)
	s = jwtLike.ReplaceAllString(s, redacted)
	return s
}
