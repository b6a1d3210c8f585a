package llmclient

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// parseGroqRateLimitHeaders parses Groq rate-limit response headers.
// Request fields are per day, token fields per minute.
func parseGroqRateLimitHeaders(h http.Header) (RateLimitHeaders, bool) {
	out := RateLimitHeaders{}
	found := false

	ints := []struct {
		key string
		dst *int
	}{
		{"retry-after", &out.RetryAfterSeconds},
		{"x-ratelimit-limit-requests", &out.LimitRequests},
		{"x-ratelimit-limit-tokens", &out.LimitTokens},
		{"x-ratelimit-remaining-requests", &out.RemainingRequests},
		{"x-ratelimit-remaining-tokens", &out.RemainingTokens},
	}
	for _, f := range ints {
		v := strings.TrimSpace(h.Get(f.key))
		if v == "" {
			continue
		}
		if n, err := strconv.Atoi(v); err == nil {
			*f.dst = n
			found = true
		}
	}

	durs := []struct {
		key string
		dst *time.Duration
	}{
		{"x-ratelimit-reset-requests", &out.ResetRequests},
		{"x-ratelimit-reset-tokens", &out.ResetTokens},
	}
	for _, f := range durs {
		v := strings.TrimSpace(h.Get(f.key))
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil {
			*f.dst = d
			found = true
		}
	}
	return out, found
}
