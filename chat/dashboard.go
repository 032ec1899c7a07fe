package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/datachat/core"
)

// DecodeDashboard parses a dashboard response payload into validated chart
// specs. Models occasionally wrap the JSON in markdown code fences despite
// instructions, so fences are stripped before decoding. Every failure is
// reported as an invalid dashboard configuration so the classifier surfaces
// the message verbatim.
func DecodeDashboard(payload string) ([]core.ChartSpec, error) {
	text := stripCodeFence(payload)

	var charts []core.ChartSpec
	if err := json.Unmarshal([]byte(text), &charts); err != nil {
		return nil, fmt.Errorf("invalid dashboard configuration: %w", err)
	}
	if len(charts) == 0 {
		return nil, fmt.Errorf("invalid dashboard configuration: response contains no charts")
	}
	for _, c := range charts {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}

	return charts, nil
}

// stripCodeFence removes a single surrounding markdown code fence (with an
// optional language tag) if present.
func stripCodeFence(s string) string {
	text := strings.TrimSpace(s)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		first := strings.TrimSpace(text[:idx])
		if first == "json" || first == "" {
			text = text[idx+1:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
