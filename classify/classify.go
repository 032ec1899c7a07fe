// Package classify maps raw backend failure text to a fixed set of
// user-facing categories. The matching is substring based and therefore
// coupled to the upstream service's free-text wording; the table lives here,
// decoupled from any transport, so the mapping stays independently testable.
package classify

import "strings"

// Category is one of the fixed user-facing failure categories.
type Category int

const (
	// Unknown is the fallback for unmatched failure text.
	Unknown Category = iota
	// Auth covers missing or rejected API key configuration.
	Auth
	// RateLimited covers quota exhaustion and throttling.
	RateLimited
	// Blocked covers requests rejected by safety filters.
	Blocked
	// InvalidDashboard covers chart-spec validation failures; the original
	// message is surfaced unchanged.
	InvalidDashboard
	// Internal covers backend-internal failures.
	Internal
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case Auth:
		return "auth"
	case RateLimited:
		return "rate_limited"
	case Blocked:
		return "blocked"
	case InvalidDashboard:
		return "invalid_dashboard"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// rule pairs a set of lower-cased substrings with the category the first
// match resolves to. Order is significant.
type rule struct {
	substrings []string
	category   Category
}

var rules = []rule{
	{[]string{"api key"}, Auth},
	{[]string{"429", "resource has been exhausted"}, RateLimited},
	{[]string{"safety"}, Blocked},
	{[]string{"invalid dashboard configuration"}, InvalidDashboard},
	{[]string{"500", "internal error"}, Internal},
}

// Classify resolves raw failure text to a category. It is total and
// deterministic: matching is case-insensitive, the first matching rule wins,
// and unmatched text falls back to Unknown.
func Classify(msg string) Category {
	lowered := strings.ToLower(msg)
	for _, r := range rules {
		for _, sub := range r.substrings {
			if strings.Contains(lowered, sub) {
				return r.category
			}
		}
	}
	return Unknown
}

// Fixed user-facing messages per category. InvalidDashboard has none; the
// raw message passes through.
const (
	authMessage        = "The AI service API key is not configured. Set the API key in your environment and restart the application."
	rateLimitedMessage = "The AI service is currently busy or the request quota has been exhausted. Please try again in a few moments."
	blockedMessage     = "The request was blocked by the AI service's safety filters. Please modify your request and try again."
	internalMessage    = "The AI service reported an internal error. Please try again."
	unknownMessage     = "An unexpected error occurred. Please try again."
)

// UserMessage returns the fixed user-facing message for a category. For
// InvalidDashboard the raw message is returned unchanged.
func UserMessage(c Category, raw string) string {
	switch c {
	case Auth:
		return authMessage
	case RateLimited:
		return rateLimitedMessage
	case Blocked:
		return blockedMessage
	case InvalidDashboard:
		return raw
	case Internal:
		return internalMessage
	default:
		return unknownMessage
	}
}

// Message is a convenience combining Classify and UserMessage.
func Message(raw string) string {
	return UserMessage(Classify(raw), raw)
}
