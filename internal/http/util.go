package httpx

import (
	"net/http"
	"strconv"
	"strings"
)

// HeaderActor names the principal recorded on payment audit rows.
const HeaderActor = "X-Actor"

// parseIntQuery returns the integer value of a query param or a default.
// It is tolerant of missing/invalid values.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// ParseLimitOffset parses common pagination params and clamps to sane bounds.
func ParseLimitOffset(r *http.Request, defLimit, maxLimit int) (int, int) {
	if maxLimit < 1 {
		maxLimit = 1
	}

	lim := parseIntQuery(r, "limit", defLimit)
	off := parseIntQuery(r, "offset", 0)
	lim = min(max(lim, 1), maxLimit)
	return lim, max(off, 0)
}

// queryPtr returns a pointer to the trimmed query value, or nil when absent.
func queryPtr(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil
	}
	return &v
}

func actor(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(HeaderActor))
}
