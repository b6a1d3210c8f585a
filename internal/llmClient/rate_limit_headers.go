package llmclient

import (
	"time"
)

// RateLimitHeaders represents normalized provider rate-limit signals.
type RateLimitHeaders struct {
	RetryAfterSeconds int `json:"retry_after_seconds"`

	LimitRequests     int `json:"limit_requests"`
	LimitTokens       int `json:"limit_tokens"`
	RemainingRequests int `json:"remaining_requests"`
	RemainingTokens   int `json:"remaining_tokens"`

	ResetRequests time.Duration `json:"reset_requests"`
	ResetTokens   time.Duration `json:"reset_tokens"`
}

// Exhausted reports whether the provider said no requests or tokens remain.
func (h RateLimitHeaders) Exhausted() bool {
	return (h.LimitRequests > 0 && h.RemainingRequests == 0) ||
		(h.LimitTokens > 0 && h.RemainingTokens == 0)
}

type RateLimitHeaderHandler func(headers RateLimitHeaders)

// RateLimitHeaderAwareClient is an optional interface for clients that expose
// parsed provider rate-limit headers.
type RateLimitHeaderAwareClient interface {
	SetRateLimitHeaderHandler(handler RateLimitHeaderHandler)
	LastRateLimitHeaders() (RateLimitHeaders, bool)
}
