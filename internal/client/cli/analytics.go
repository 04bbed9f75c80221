package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/edachat/internal/client/client"
)

func (a *App) EDA(ctx context.Context) error {
	raw, err := a.api.EDASummary(ctx)
	if err != nil {
		return err
	}
	a.println(prettyJSON(raw))
	return nil
}

func (a *App) Breakdown(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	topN := 0
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return errUsage
		}
		topN = n
	}

	raw, err := a.api.Breakdown(ctx, args[0], topN)
	if err != nil {
		return err
	}
	a.println(prettyJSON(raw))
	return nil
}

func (a *App) TimeSeries(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errUsage
	}
	groupBy := ""
	if len(args) == 1 {
		groupBy = args[0]
	}

	raw, err := a.api.TimeSeries(ctx, groupBy)
	if err != nil {
		return err
	}
	a.println(prettyJSON(raw))
	return nil
}

func (a *App) Anomalies(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errUsage
	}
	method := ""
	if len(args) == 1 {
		method = args[0]
	}

	res, err := a.api.DetectAnomalies(ctx, method, nil)
	if err != nil {
		return err
	}
	a.printf("Status: %s\n", res.Status)
	if res.Message != "" {
		a.println(res.Message)
	}
	if len(res.Data) > 0 {
		a.println(prettyJSON(res.Data))
	}
	return nil
}

// Chart renders a chart on the backend. With a room open the chart is also
// saved into that room's conversation.
func (a *App) Chart(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	kind, err := client.ParseChartKind(args[0])
	if err != nil {
		return err
	}

	opts := client.ChartOptions{RoomID: a.state.Snapshot().CurrentRoomID()}
	if len(args) == 2 {
		opts.Method = args[1]
	}

	chart, err := a.api.Chart(ctx, kind, opts)
	if err != nil {
		return err
	}

	a.printf("Chart %s: %s (%d bytes)\n", kind, chart.Status, len(chart.Data))
	if chart.Message != "" {
		a.println(chart.Message)
	}
	if chart.SavedToChat {
		a.println("Saved to the open room")
	}
	return nil
}

// Health probes the backend and updates the connectivity mode.
func (a *App) Health(ctx context.Context) error {
	h, err := a.api.Health(ctx)
	if err != nil {
		a.setMode(ModeOffline)
		return err
	}
	a.setMode(ModeOnline)

	line := fmt.Sprintf("Backend %s", h.Status)
	if h.Message != "" {
		line += ": " + h.Message
	}
	if h.Uptime != "" {
		line += " (uptime " + h.Uptime + ")"
	}
	a.println(line)
	return nil
}
