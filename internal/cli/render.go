package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/internal/schedule"
)

// Display layouts. Times are shown in the gateway's zone as returned.
const (
	dateTimeLayout = "2006-01-02 15:04"
	dayLayout      = "Mon Jan 2"
)

// palette holds the highlight styles. Without a terminal, or with
// --no-color, every style renders text unchanged.
type palette struct {
	title   lipgloss.Style
	overdue lipgloss.Style
	today   lipgloss.Style
	ok      lipgloss.Style
	muted   lipgloss.Style
}

var (
	colorOverdue = lipgloss.Color("#e53935")
	colorToday   = lipgloss.Color("#FFC107")
	colorOK      = lipgloss.Color("#8BC34A")
	colorMuted   = lipgloss.Color("#8a94a6")
)

func newPalette(w io.Writer, plain bool) palette {
	if plain {
		s := lipgloss.NewStyle()
		return palette{title: s, overdue: s, today: s, ok: s, muted: s}
	}
	r := lipgloss.NewRenderer(w)
	return palette{
		title:   r.NewStyle().Bold(true),
		overdue: r.NewStyle().Foreground(colorOverdue).Bold(true),
		today:   r.NewStyle().Foreground(colorToday),
		ok:      r.NewStyle().Foreground(colorOK),
		muted:   r.NewStyle().Foreground(colorMuted),
	}
}

func (c *CLI) palette() palette {
	return newPalette(c.out, c.noColor)
}

// newTable returns a tabwriter laid out like every list command.
func (c *CLI) newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
}

// bucketLabel styles a reminder's time bucket.
func (p palette) bucketLabel(t, now time.Time) string {
	switch schedule.Classify(t, now) {
	case schedule.BucketOverdue:
		return p.overdue.Render("overdue")
	case schedule.BucketToday:
		return p.today.Render("today")
	default:
		return p.muted.Render("upcoming")
	}
}

func (p palette) dueLabel(s schedule.DueStatus) string {
	switch s {
	case schedule.DueOverdue:
		return p.overdue.Render("overdue")
	case schedule.DueToday:
		return p.today.Render("due today")
	case schedule.DueUpcoming:
		return p.ok.Render("up to date")
	default:
		return p.muted.Render("-")
	}
}

func (p palette) enabledLabel(enabled bool) string {
	if enabled {
		return p.ok.Render("on")
	}
	return p.muted.Render("off")
}

func (p palette) completedLabel(completed bool) string {
	if completed {
		return p.ok.Render("done")
	}
	return "scheduled"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateTimeLayout)
}

// orDash renders empty optional fields.
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// reminderState describes a reminder's completion and snooze state.
func reminderState(r *care.Reminder, now time.Time) string {
	switch {
	case r.Completed:
		return "completed"
	case schedule.IsSnoozed(r, now):
		return "snoozed until " + r.SnoozedUntil.Format(dateTimeLayout)
	default:
		return "active"
	}
}

// levelBar draws a 0..10 tracking level.
func levelBar(v int) string {
	v = min(max(v, care.MinLevel), care.MaxLevel)
	return fmt.Sprintf("%s%s %d/%d",
		strings.Repeat("#", v), strings.Repeat(".", care.MaxLevel-v), v, care.MaxLevel)
}
