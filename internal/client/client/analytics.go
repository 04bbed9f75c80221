package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/edachat/internal/client/models"
)

const (
	defaultTopN          = 10
	defaultGroupBy       = "month_year"
	defaultAnomalyMethod = "comprehensive"
	defaultScatterMethod = "ml"
)

type ChartKind string

const (
	ChartTrend             ChartKind = "trend"
	ChartCategoryBreakdown ChartKind = "category-breakdown"
	ChartHeatmap           ChartKind = "heatmap"
	ChartAnomalyScatter    ChartKind = "anomaly-scatter"
)

// ParseChartKind accepts the endpoint names plus the short aliases
// "category" and "scatter".
func ParseChartKind(s string) (ChartKind, error) {
	switch s {
	case "trend":
		return ChartTrend, nil
	case "category", "category-breakdown":
		return ChartCategoryBreakdown, nil
	case "heatmap":
		return ChartHeatmap, nil
	case "scatter", "anomaly-scatter":
		return ChartAnomalyScatter, nil
	default:
		return "", fmt.Errorf("unknown chart %q", s)
	}
}

// ChartOptions are optional chart parameters. With RoomID set the backend
// also saves the chart into that room's conversation. Method only applies
// to ChartAnomalyScatter.
type ChartOptions struct {
	RoomID string
	Method string
}

func (c *HTTPClient) getRaw(ctx context.Context, path string, q url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, path: path, query: q, out: &raw}); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *HTTPClient) EDASummary(ctx context.Context) (json.RawMessage, error) {
	return c.getRaw(ctx, "/eda", nil)
}

func (c *HTTPClient) Breakdown(ctx context.Context, dimension string, topN int) (json.RawMessage, error) {
	if topN <= 0 {
		topN = defaultTopN
	}
	q := url.Values{"top_n": {strconv.Itoa(topN)}}
	return c.getRaw(ctx, "/eda/breakdown/"+url.PathEscape(dimension), q)
}

func (c *HTTPClient) TimeSeries(ctx context.Context, groupBy string) (json.RawMessage, error) {
	if groupBy == "" {
		groupBy = defaultGroupBy
	}
	return c.getRaw(ctx, "/eda/timeseries", url.Values{"group_by": {groupBy}})
}

// DetectAnomalies runs GET /anomaly/detect with method and any extra query
// parameters.
func (c *HTTPClient) DetectAnomalies(ctx context.Context, method string, params map[string]string) (*models.Analysis, error) {
	if method == "" {
		method = defaultAnomalyMethod
	}
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("method", method)

	var resp models.Analysis
	if err := c.do(ctx, call{method: http.MethodGet, path: "/anomaly/detect", query: q, out: &resp}); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) StatisticalAnomalies(ctx context.Context, threshold float64) (*models.Analysis, error) {
	return c.DetectAnomalies(ctx, "statistical", map[string]string{"threshold": formatFloat(threshold)})
}

func (c *HTTPClient) MLAnomalies(ctx context.Context, contamination float64) (*models.Analysis, error) {
	return c.DetectAnomalies(ctx, "ml", map[string]string{"contamination": formatFloat(contamination)})
}

func (c *HTTPClient) TrendAnomalies(ctx context.Context, thresholdPct float64) (*models.Analysis, error) {
	return c.DetectAnomalies(ctx, "trend", map[string]string{"threshold_pct": formatFloat(thresholdPct)})
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (c *HTTPClient) Chart(ctx context.Context, kind ChartKind, opts ChartOptions) (*models.Chart, error) {
	q := url.Values{}
	if kind == ChartAnomalyScatter {
		method := opts.Method
		if method == "" {
			method = defaultScatterMethod
		}
		q.Set("method", method)
	}
	if opts.RoomID != "" {
		q.Set("room_id", opts.RoomID)
	}

	var resp models.Chart
	if err := c.do(ctx, call{method: http.MethodGet, path: "/charts/" + string(kind), query: q, out: &resp}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health pings the backend. It never refreshes tokens.
func (c *HTTPClient) Health(ctx context.Context) (*models.Health, error) {
	var resp models.Health
	if err := c.do(ctx, call{method: http.MethodGet, path: "/health", out: &resp, auth: authAttach}); err != nil {
		return nil, err
	}
	return &resp, nil
}
