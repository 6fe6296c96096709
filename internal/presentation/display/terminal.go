// Package display renders the tally board to a terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-tally/internal/core/model"
	"github.com/penwyp/go-tally/internal/presentation/projection"
	"github.com/penwyp/go-tally/internal/util"
)

// eraseLine clears from the cursor to the end of the line
const eraseLine = "\033[K"

// Frame is everything one redraw needs.
type Frame struct {
	Snapshot     model.Snapshot
	Capacity     int
	State        model.InteractionState
	Alert        string
	AlertVisible bool
	// Watching is set for the read-only live view and names what is watched.
	Watching string
}

type TerminalDisplay struct {
	out               io.Writer
	width             func() int
	inAlternateScreen bool
}

// NewTerminalDisplay writes frames to out. width is asked for the current
// terminal width on every render; nil means a fixed default.
func NewTerminalDisplay(out io.Writer, width func() int) *TerminalDisplay {
	if width == nil {
		width = func() int { return defaultWidth }
	}
	return &TerminalDisplay{out: out, width: width}
}

// EnterAlternateScreen switches to alternate screen buffer
func (td *TerminalDisplay) EnterAlternateScreen() {
	if td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.EnterAltScreen+util.ClearScreen+util.ClearScrollback+util.MoveCursorHome+util.HideCursor)
	td.inAlternateScreen = true
}

// ExitAlternateScreen returns to normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen() {
	if !td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.ClearScreen+util.MoveCursorHome+util.ShowCursor+util.ExitAltScreen)
	td.inAlternateScreen = false
}

// Render redraws the whole board in place.
func (td *TerminalDisplay) Render(frame Frame) {
	lines := td.Lines(frame)

	var b strings.Builder
	b.WriteString(util.MoveCursorHome)
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString(eraseLine)
		b.WriteString("\r\n")
	}
	b.WriteString(util.ClearToEnd)
	fmt.Fprint(td.out, b.String())
}

// Lines returns the frame as screen lines without cursor control.
func (td *TerminalDisplay) Lines(frame Frame) []string {
	width := clampWidth(td.width())
	switch {
	case frame.State.ConfirmDialog != nil:
		return renderConfirmDialog(frame.State.ConfirmDialog, width)
	case frame.State.ShowHelp:
		return renderHelp(width)
	}

	var lines []string
	lines = append(lines, renderHeader(frame, width)...)
	lines = append(lines, "")
	lines = append(lines, renderButtons(frame)...)
	lines = append(lines, "")
	lines = append(lines, renderAggregate(frame.Snapshot.Topics, width)...)
	lines = append(lines, "")
	lines = append(lines, renderSequence(frame.Snapshot, width)...)
	lines = append(lines, "")

	if frame.AlertVisible {
		lines = append(lines, alertText(" ⚠ "+frame.Alert+" ")+faintText("  (d to dismiss)"))
	}
	if p := frame.State.Prompt; p != nil {
		lines = append(lines, fmt.Sprintf("%s %s█", boldText(p.Title+":"), p.Value))
		lines = append(lines, faintText("Enter to add, Esc to cancel"))
	}
	if frame.State.StatusMessage != "" {
		lines = append(lines, "Status: "+frame.State.StatusMessage)
	}
	lines = append(lines, renderFooter(frame, width))
	return lines
}

func renderHeader(frame Frame, width int) []string {
	title := boldText("go-tally")
	if frame.Watching != "" {
		title += faintText(" (watching)")
	}
	events := len(frame.Snapshot.Timeline)
	counter := fmt.Sprintf("Events %d/%d", events, frame.Capacity)
	if frame.Capacity > 0 && events >= frame.Capacity {
		counter += " FULL"
	}
	gap := width - util.GetDisplayWidth("go-tally") - util.GetDisplayWidth(counter)
	if frame.Watching != "" {
		gap -= util.GetDisplayWidth(" (watching)")
	}
	return []string{
		title + strings.Repeat(" ", max(1, gap)) + counter,
		strings.Repeat("═", width),
	}
}

// renderButtons draws one colored button per topic. Topics 1-9 get a
// number key.
func renderButtons(frame Frame) []string {
	topics := frame.Snapshot.Topics
	if len(topics) == 0 {
		return []string{faintText("No topics")}
	}

	lines := make([]string, 0, len(topics))
	for i, t := range topics {
		marker := "  "
		if frame.Watching == "" && i == frame.State.Selected {
			marker = "▶ "
		}
		key := "   "
		if i < 9 {
			key = fmt.Sprintf("[%d]", i+1)
		}
		label := fmt.Sprintf(" %s %s ", key, util.Printable(t.Name))
		lines = append(lines, fmt.Sprintf("%s%s %d", marker, swatch(label, t.Color), t.Count))
	}
	return lines
}

// renderAggregate draws the share of each topic as a horizontal bar.
func renderAggregate(topics []model.Topic, width int) []string {
	view := projection.Aggregate(topics)
	if view.Total() == 0 {
		return []string{boldText("Share"), faintText("No events yet")}
	}

	nameWidth := 0
	for i, label := range view.Labels {
		view.Labels[i] = util.Printable(label)
		nameWidth = max(nameWidth, util.GetDisplayWidth(view.Labels[i]))
	}
	nameWidth = min(nameWidth, width/4)
	barWidth := max(10, width-nameWidth-16)

	lines := []string{boldText("Share")}
	for i := 0; i < view.Len(); i++ {
		share := view.Share(i)
		filled := int(share*float64(barWidth) + 0.5)
		bar := tint(strings.Repeat("█", filled), view.Colors[i]) + faintText(strings.Repeat("░", barWidth-filled))
		name := util.PadString(util.Truncate(view.Labels[i], nameWidth), nameWidth, true)
		lines = append(lines, fmt.Sprintf("%s %s %5d %5.1f%%", name, bar, view.Values[i], share*100))
	}
	return lines
}

// renderSequence draws the latest events that fit, one cell each, oldest on
// the left.
func renderSequence(snap model.Snapshot, width int) []string {
	view := projection.Sequence(snap.Topics, snap.Timeline)
	header := boldText("Sequence")
	if len(view.Segments) == 0 {
		return []string{header, faintText("No events yet")}
	}

	cells := view.Tail(width / 2)
	if hidden := len(view.Segments) - len(cells); hidden > 0 {
		header += faintText(fmt.Sprintf(" (+%d earlier)", hidden))
	}

	var b strings.Builder
	for _, seg := range cells {
		label := util.PadString(util.Truncate(seg.Label, 2), 2, true)
		b.WriteString(swatch(label, seg.Color))
	}
	return []string{header, b.String()}
}

func renderFooter(frame Frame, width int) string {
	if frame.Watching != "" {
		return faintText(util.Truncate("Watching "+frame.Watching+"  q quit", width))
	}
	return faintText(util.Truncate("1-9/space +1  j/k move  a add  c clear  r reset  e export  h help  q quit", width))
}

func renderHelp(width int) []string {
	rule := strings.Repeat("═", width)
	return []string{
		boldText("go-tally - Help"),
		rule,
		"",
		"Keyboard Shortcuts:",
		"",
		"  1-9         - Count one event for topic N",
		"  j/k, ↑/↓    - Move the selection",
		"  space/Enter - Count one event for the selected topic",
		"  a           - Add a topic",
		"  c           - Clear all counts and the sequence",
		"  r           - Reset to the Pass and Fail topics",
		"  e           - Export totals and events as CSV",
		"  d           - Dismiss the alert",
		"  h           - Show this help",
		"  q/Esc/Ctrl+C - Quit the program",
		"",
		rule,
		"Press 'h' to return...",
	}
}

func renderConfirmDialog(dialog *model.ConfirmDialog, width int) []string {
	boxWidth := min(60, width)
	padding := strings.Repeat(" ", (width-boxWidth)/2)
	inner := boxWidth - 2

	lines := []string{
		"", "", "",
		padding + "╔" + strings.Repeat("═", inner) + "╗",
		padding + "║" + util.CenterText(dialog.Title, inner) + "║",
		padding + "╠" + strings.Repeat("═", inner) + "╣",
		padding + "║" + strings.Repeat(" ", inner) + "║",
	}
	for _, line := range wrapText(dialog.Message, inner-2) {
		lines = append(lines, padding+"║ "+util.PadString(line, inner-2, true)+" ║")
	}
	lines = append(lines,
		padding+"║"+strings.Repeat(" ", inner)+"║",
		padding+"║"+util.CenterText("(Y)es / (N)o", inner)+"║",
		padding+"╚"+strings.Repeat("═", inner)+"╝",
	)
	return lines
}

// wrapText wraps text to fit within the specified width
func wrapText(text string, width int) []string {
	if text == "" {
		return []string{}
	}
	if util.GetDisplayWidth(text) <= width {
		return []string{text}
	}

	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		switch {
		case current == "":
			current = word
		case util.GetDisplayWidth(current)+1+util.GetDisplayWidth(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
