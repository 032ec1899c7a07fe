package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/datachat/core"
)

func TestMockSession_StreamsFragmentsInOrder(t *testing.T) {
	sess := &MockSession{Fragments: []string{"Hel", "lo", " world"}}

	frags, errCh := sess.QueryStream(context.Background(), "describe", core.TaskInsights)

	var got []string
	for f := range frags {
		got = append(got, f)
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, []string{"Hel", "lo", " world"}, got)
}

func TestMockSession_StreamErrorAfterFragments(t *testing.T) {
	sess := &MockSession{Fragments: []string{"partial"}, StreamErr: assert.AnError}

	frags, errCh := sess.QueryStream(context.Background(), "describe", core.TaskEDA)
	var got []string
	for f := range frags {
		got = append(got, f)
	}

	assert.Equal(t, []string{"partial"}, got)
	assert.Error(t, <-errCh)
}

func TestDecodeDashboard(t *testing.T) {
	payload := `[
		{"chartType":"bar","title":"Sales by month","data":[{"month":"Jan","sales":10}],"xAxisKey":"month","seriesKeys":["sales"]},
		{"chartType":"pie","title":"Share","data":[{"name":"a","value":1}],"valueKey":"value","nameKey":"name"}
	]`

	charts, err := DecodeDashboard(payload)

	require.NoError(t, err)
	require.Len(t, charts, 2)
	assert.Equal(t, core.ChartBar, charts[0].Type)
	assert.Equal(t, core.ChartPie, charts[1].Type)
}

func TestDecodeDashboard_StripsCodeFence(t *testing.T) {
	payload := "```json\n[{\"chartType\":\"line\",\"data\":[{\"x\":1,\"y\":2}],\"xAxisKey\":\"x\",\"yAxisKey\":\"y\"}]\n```"

	charts, err := DecodeDashboard(payload)

	require.NoError(t, err)
	require.Len(t, charts, 1)
	assert.Equal(t, core.ChartLine, charts[0].Type)
}

func TestDecodeDashboard_Failures(t *testing.T) {
	cases := map[string]string{
		"not json":        "here are your charts!",
		"empty array":     "[]",
		"unknown type":    `[{"chartType":"donut","data":[{"x":1}]}]`,
		"missing data":    `[{"chartType":"bar","xAxisKey":"x","yAxisKey":"y"}]`,
		"pie missing key": `[{"chartType":"pie","data":[{"x":1}]}]`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDashboard(payload)
			require.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), "invalid dashboard configuration"), "got %q", err)
		})
	}
}

func TestInstruction_CoversAllTasks(t *testing.T) {
	dashboard := Instruction(core.TaskDashboard)
	assert.Contains(t, dashboard, "JSON array")

	eda := Instruction(core.TaskEDA)
	assert.Contains(t, eda, "exploratory")

	insights := Instruction(core.TaskInsights)
	assert.Contains(t, insights, "insights")

	// Unspecified tasks default to insights.
	assert.Equal(t, insights, Instruction(""))
}

func TestSystemPrompt_EmbedsDataset(t *testing.T) {
	raw := "month,sales\nJan,10\n"
	assert.Contains(t, SystemPrompt(raw), raw)
}
