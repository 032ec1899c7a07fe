package chat

import (
	"fmt"

	"github.com/hupe1980/datachat/core"
)

// SystemPrompt builds the system instruction binding a session to a
// dataset's raw textual content. All provider sessions are seeded with this
// prompt at creation time.
func SystemPrompt(rawContent string) string {
	return fmt.Sprintf(`You are a senior data analyst. The user has uploaded the dataset below.
Answer every question strictly based on this dataset. When values are
ambiguous, say so instead of guessing.

Dataset:
%s`, rawContent)
}

// Instruction returns the task-specific instruction prepended to each query.
// Unknown tasks fall back to the insights instruction.
func Instruction(task core.Task) string {
	switch task {
	case core.TaskDashboard:
		return `Respond ONLY with a JSON array of chart objects, no prose and no code
fences. Each object has: "chartType" (one of "bar", "line", "pie",
"scatter"), "title", "data" (array of row objects), "xAxisKey", "yAxisKey",
"seriesKeys" (array of strings), "colors" (array of CSS colors) and, for pie
charts, "valueKey" and "nameKey".`
	case core.TaskEDA:
		return `Perform an exploratory data analysis of the dataset: describe its shape,
column types, distributions, missing values and notable correlations.
Respond in concise markdown.`
	default:
		return `Summarize the most important insights hidden in the dataset: trends,
outliers and actionable findings. Respond in concise markdown.`
	}
}
