package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

const quickchartBase = "https://quickchart.io/chart"

// ChartTool returns the locally-bound render_chart tool. It produces a chart
// image URL from labels and values; the model embeds the returned Markdown
// image link in its answer and the report layer picks it up from there.
func ChartTool() LocalTool {
	return LocalTool{
		Descriptor: Descriptor{
			Name:        "render_chart",
			Title:       "Render chart",
			Description: "Render a line, bar, or pie chart from numeric data. Returns a Markdown image link to embed in the answer.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":  map[string]any{"type": "string", "description": "Chart title"},
					"type":   map[string]any{"type": "string", "description": "Chart type: line, bar, or pie"},
					"labels": map[string]any{"type": "array", "description": "X-axis labels or pie slice names"},
					"values": map[string]any{"type": "array", "description": "Numeric data points"},
				},
				"required": []any{"type", "values"},
			},
		},
		Run: renderChart,
	}
}

func renderChart(_ context.Context, args map[string]any) (string, error) {
	chartType, _ := args["type"].(string)
	switch chartType {
	case "line", "bar", "pie":
	default:
		return "", fmt.Errorf("render_chart: unsupported chart type %q", chartType)
	}

	values, ok := args["values"].([]any)
	if !ok || len(values) == 0 {
		return "", fmt.Errorf("render_chart: values must be a non-empty array")
	}

	labels, _ := args["labels"].([]any)
	if len(labels) == 0 {
		labels = make([]any, len(values))
		for i := range labels {
			labels[i] = fmt.Sprintf("%d", i+1)
		}
	}

	title, _ := args["title"].(string)
	if title == "" {
		title = "Chart"
	}

	config := map[string]any{
		"type": chartType,
		"data": map[string]any{
			"labels": labels,
			"datasets": []any{
				map[string]any{"label": title, "data": values},
			},
		},
	}

	raw, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("render_chart: marshal config: %w", err)
	}

	chartURL := quickchartBase + "?c=" + url.QueryEscape(string(raw))
	return fmt.Sprintf("![%s](%s)", title, chartURL), nil
}
