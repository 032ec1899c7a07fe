package core

import "fmt"

// ChartType enumerates the renderable chart families.
type ChartType string

const (
	// ChartBar is a vertical bar chart.
	ChartBar ChartType = "bar"
	// ChartLine is a line chart.
	ChartLine ChartType = "line"
	// ChartPie is a pie chart.
	ChartPie ChartType = "pie"
	// ChartScatter is a scatter plot.
	ChartScatter ChartType = "scatter"
)

// ChartSpec is a rendering-agnostic description of a chart produced by a
// dashboard turn. Field names follow the wire format emitted by the
// generative backend.
type ChartSpec struct {
	Type     ChartType `json:"chartType"`
	Title    string    `json:"title,omitempty"`
	Data     []Row     `json:"data"`
	XKey     string    `json:"xAxisKey,omitempty"`
	YKey     string    `json:"yAxisKey,omitempty"`
	Series   []string  `json:"seriesKeys,omitempty"`
	Colors   []string  `json:"colors,omitempty"`
	ValueKey string    `json:"valueKey,omitempty"`
	NameKey  string    `json:"nameKey,omitempty"`
}

// Validate checks the spec is renderable: a known chart type, at least one
// data row, and the keys required by the chart family.
func (c ChartSpec) Validate() error {
	switch c.Type {
	case ChartBar, ChartLine, ChartPie, ChartScatter:
	default:
		return fmt.Errorf("invalid dashboard configuration: unknown chart type %q", c.Type)
	}
	if len(c.Data) == 0 {
		return fmt.Errorf("invalid dashboard configuration: chart %q has no data rows", c.Title)
	}
	if c.Type == ChartPie {
		if c.ValueKey == "" || c.NameKey == "" {
			return fmt.Errorf("invalid dashboard configuration: pie chart %q requires valueKey and nameKey", c.Title)
		}
		return nil
	}
	if c.XKey == "" {
		return fmt.Errorf("invalid dashboard configuration: chart %q requires xAxisKey", c.Title)
	}
	if len(c.Series) == 0 && c.YKey == "" {
		return fmt.Errorf("invalid dashboard configuration: chart %q requires yAxisKey or seriesKeys", c.Title)
	}
	return nil
}
