package middleware

import (
	"net/http"
	"strings"

	"github.com/hoadb/memberwall/internal/util"
)

const maxLoggedValue = 200

var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"cookie":              {},
	"set-cookie":          {},
	"proxy-authorization": {},
	"x-api-key":           {},
	"x-forwarded-for":     {},
}

// SanitizeHeaders returns a copy of h safe for logging. Credentials and
// cookies are redacted, other values are stripped of control characters and
// truncated.
func SanitizeHeaders(h http.Header) map[string][]string {
	if h == nil {
		return nil
	}
	out := make(map[string][]string, len(h))
	for k, vals := range h {
		if _, ok := sensitiveHeaders[strings.ToLower(k)]; ok {
			out[k] = []string{"<redacted>"}
			continue
		}
		clean := make([]string, 0, len(vals))
		for _, v := range vals {
			clean = append(clean, util.Truncate(v, maxLoggedValue))
		}
		out[k] = clean
	}
	return out
}

// SanitizePath prepares a request path for logging. Query parameters are
// dropped since login forms may be submitted through them.
func SanitizePath(p string) string {
	if i := strings.Index(p, "?"); i != -1 {
		p = p[:i]
	}
	return util.Truncate(p, maxLoggedValue)
}
