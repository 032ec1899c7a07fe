package classify

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		msg  string
		want Category
	}{
		{"API key not found", Auth},
		{"Error: invalid api key provided", Auth},
		{"Request failed: 429 Resource has been exhausted", RateLimited},
		{"The resource has been exhausted, retry later", RateLimited},
		{"Blocked due to SAFETY settings", Blocked},
		{"Invalid dashboard configuration: unknown chart type \"donut\"", InvalidDashboard},
		{"HTTP 500 from upstream", Internal},
		{"unexpected internal error while generating", Internal},
		{"disk on fire", Unknown},
		{"", Unknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.msg); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.msg, got, tc.want)
		}
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// "api key" outranks "429" when both appear.
	if got := Classify("429: api key rejected"); got != Auth {
		t.Errorf("expected the first matching rule to win, got %s", got)
	}
	// "safety" outranks "500".
	if got := Classify("500 safety violation"); got != Blocked {
		t.Errorf("expected the first matching rule to win, got %s", got)
	}
}

func TestUserMessage_InvalidDashboardPassesThrough(t *testing.T) {
	raw := "invalid dashboard configuration: chart \"Sales\" has no data rows"
	if got := Message(raw); got != raw {
		t.Errorf("expected pass-through, got %q", got)
	}
}

func TestUserMessage_FixedMessagesAreStable(t *testing.T) {
	for _, c := range []Category{Auth, RateLimited, Blocked, Internal, Unknown} {
		first := UserMessage(c, "raw a")
		second := UserMessage(c, "raw b")
		if first == "" || first != second {
			t.Errorf("category %s should map to one fixed message", c)
		}
	}
}
