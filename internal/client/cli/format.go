package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/edachat/internal/client/models"
	"github.com/dmitrijs2005/edachat/internal/timex"
)

const timeLayout = "2006-01-02 15:04"

func formatTime(t timex.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// formatMessage renders one conversation entry as a single line, with a
// note when the message carries a chart.
func formatMessage(m models.Message) string {
	var who string
	switch m.Type {
	case models.MessageUser:
		who = "you"
	case models.MessageBot:
		who = "bot"
	case models.MessageError:
		who = "error"
	default:
		who = string(m.Type)
	}

	line := fmt.Sprintf("[%s] %s", who, m.Content)
	if !m.Timestamp.IsZero() {
		line = formatTime(m.Timestamp) + " " + line
	}
	if m.HasChart() {
		line += " [chart]"
	}
	return line
}

// prettyJSON indents raw for display and falls back to the raw text.
func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
