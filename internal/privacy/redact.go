// Package privacy enforces the outbound privacy invariants: sensitive keys
// are redacted from logs and telemetry, and location detail is coarsened
// before leaving the process.
package privacy

import (
	"math"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Redacted replaces any value whose key matches the sensitive pattern.
const Redacted = "[redacted]"

// sensitiveKeyPattern matches field keys that must never be logged verbatim.
var sensitiveKeyPattern = regexp.MustCompile(`(?i)(transcript|token|secret|password|api[_-]?key|appid|authorization|credential)`)

// IsSensitiveKey reports whether key matches the sensitive pattern.
func IsSensitiveKey(key string) bool {
	return sensitiveKeyPattern.MatchString(key)
}

// RedactMap returns a copy of fields with sensitive values replaced. Nested
// maps are redacted recursively.
func RedactMap(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if IsSensitiveKey(k) {
			out[k] = Redacted
			continue
		}
		if nested, ok := v.(map[string]interface{}); ok {
			out[k] = RedactMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// String returns a zap field with the value redacted when the key is sensitive.
func String(key, value string) zap.Field {
	if IsSensitiveKey(key) {
		return zap.String(key, Redacted)
	}
	return zap.String(key, value)
}

// urlPattern finds absolute URLs embedded in free text. Transport errors
// quote the full request URL, query string included.
var urlPattern = regexp.MustCompile(`https?://[^\s"']+`)

// SanitizeURL replaces the values of sensitive query parameters in raw,
// leaving the rest of the URL intact. Unparseable URLs lose their query
// string entirely.
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexByte(raw, '?'); i >= 0 {
			return raw[:i]
		}
		return raw
	}
	q := u.Query()
	changed := false
	for k := range q {
		if IsSensitiveKey(k) {
			q.Set(k, Redacted)
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// SanitizeText redacts sensitive query parameters of every URL embedded in s.
func SanitizeText(s string) string {
	return urlPattern.ReplaceAllStringFunc(s, SanitizeURL)
}

// Error returns a zap field carrying err's message with embedded URLs
// sanitized. Errors from external calls are logged through this so request
// credentials never reach the logs.
func Error(err error) zap.Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.String("error", SanitizeText(err.Error()))
}

// CoarsenCoordinate rounds a single coordinate to 0.1 degree precision.
func CoarsenCoordinate(v float64) float64 {
	return math.Round(v*10) / 10
}

// Coarsen rounds a lat/lon pair to 0.1 degree precision. Third parties only
// ever see coarsened coordinates; any two points within the same 0.1 degree
// cell become indistinguishable.
func Coarsen(lat, lon float64) (float64, float64) {
	return CoarsenCoordinate(lat), CoarsenCoordinate(lon)
}
