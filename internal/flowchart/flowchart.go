// Package flowchart renders a workflow's directed action graph as a
// deterministic ASCII box-and-arrow diagram.
//
// The walk is depth-first and single-pass: every action gets a step number
// on first visit, and a revisit (a cycle or a re-converging branch) renders
// as a back-reference to that step instead of a redraw. Structural problems
// in the input (dangling connection targets, pathological depth) degrade
// to inline placeholders, never to an error: a partially readable diagram
// beats a hard failure on malformed upstream data.
package flowchart

import (
	"fmt"
	"strings"

	"github.com/dkoval/crmscope/internal/hubspot"
)

const (
	// maxDepth is a hard bound on recursion, independent of cycle
	// detection, against malformed or adversarial graphs.
	maxDepth = 50

	wrapWidth      = 28
	minBoxWidth    = 16
	minHeaderWidth = 30
	minColWidth    = 8
	colGap         = 2

	depthPlaceholder   = "(max depth reached)"
	noActionsLabel     = "(no actions)"
	branchEndLabel     = "(end)"
	unknownActionLabel = "Unknown action"
)

// Render draws the full diagram for a flow: a header block (name, status,
// trigger) followed by the rendered action graph. The input is never
// mutated, and for a fixed input the output is byte-identical across runs.
func Render(flow *hubspot.Flow) string {
	header := box(headerLines(flow), minHeaderWidth)

	var body []string
	if flow.StartActionID == "" || len(flow.Actions) == 0 {
		body = []string{noActionsLabel}
	} else {
		w := &walker{
			actions: make(map[string]hubspot.Action, len(flow.Actions)),
			visited: make(map[string]int, len(flow.Actions)),
		}
		for _, a := range flow.Actions {
			w.actions[a.ID] = a
		}
		body = w.render(flow.StartActionID, 1)
	}

	return strings.Join(trimTrailing(stack(header, body)), "\n")
}

func headerLines(flow *hubspot.Flow) []string {
	name := flow.Name
	if name == "" {
		name = "(unnamed workflow)"
	}
	status := "disabled"
	if flow.Enabled {
		status = "enabled"
	}
	lines := []string{name, "Status: " + status}

	switch {
	case flow.EnrollmentCriteria != nil:
		lines = append(lines, triggerLines(flow.EnrollmentCriteria)...)
	case flow.Type != "":
		lines = append(lines, "Trigger: "+flow.Type)
	}
	return lines
}

func triggerLines(ec *hubspot.EnrollmentCriteria) []string {
	var lines []string
	if len(ec.EventFilterBranches) > 0 {
		for _, b := range ec.EventFilterBranches {
			lines = append(lines, "When: "+eventLabel(b.EventTypeID))
		}
	} else {
		for _, b := range ec.ListFilterBranches {
			for _, f := range b.Filters {
				lines = append(lines, "When: "+f.Property+" "+f.Operation)
			}
		}
	}
	reenroll := "off"
	if ec.ShouldReEnroll {
		reenroll = "on"
	}
	return append(lines, "Re-enroll: "+reenroll)
}

// walker carries the mutable traversal state: the action map, the
// first-visit step assignments, and the monotonically increasing counter.
type walker struct {
	actions map[string]hubspot.Action
	visited map[string]int
	step    int
}

func (w *walker) render(id string, depth int) []string {
	if depth > maxDepth {
		return []string{depthPlaceholder}
	}

	action, ok := w.actions[id]
	if !ok {
		return box([]string{unknownActionLabel}, minBoxWidth)
	}

	if step, seen := w.visited[id]; seen {
		return []string{fmt.Sprintf("[→ step %d]", step)}
	}
	w.step++
	w.visited[id] = w.step

	content := []string{fmt.Sprintf("%d. %s", w.visited[id], actionLabel(action))}
	for _, d := range details(action) {
		for _, line := range wrap(d, wrapWidth) {
			content = append(content, "  "+line)
		}
	}

	if isBranch(action) {
		return w.renderBranch(action, content, depth)
	}

	b := box(content, minBoxWidth)
	if action.Next == "" {
		return b
	}
	return stack(b, w.render(action.Next, depth+1))
}

// stack joins an upper block to a lower one with a centered connector.
func stack(upper, lower []string) []string {
	total := maxLineWidth(upper)
	if lw := maxLineWidth(lower); lw > total {
		total = lw
	}
	out := centerBlock(upper, total)
	out = append(out, padCenter("│", total), padCenter("▼", total))
	return append(out, centerBlock(lower, total)...)
}

func (w *walker) renderBranch(action hubspot.Action, content []string, depth int) []string {
	branches := action.Branches
	if action.DefaultNext != "" {
		branches = append(branches[:len(branches):len(branches)], hubspot.Branch{
			Label: "Default",
			Next:  action.DefaultNext,
		})
	}

	headerBox := box(content, minBoxWidth)
	if len(branches) == 0 {
		return headerBox
	}

	n := len(branches)
	labels := make([]string, n)
	subs := make([][]string, n)
	widths := make([]int, n)
	for i, b := range branches {
		labels[i] = "[" + branchLabel(action, b, i, n) + "]"
		if b.Next == "" {
			subs[i] = []string{branchEndLabel}
		} else {
			subs[i] = w.render(b.Next, depth+1)
		}
		widths[i] = minColWidth
		if lw := width(labels[i]); lw > widths[i] {
			widths[i] = lw
		}
		if sw := maxLineWidth(subs[i]); sw > widths[i] {
			widths[i] = sw
		}
	}

	colsWidth := colGap * (n - 1)
	for _, cw := range widths {
		colsWidth += cw
	}

	rows := []string{splitLine(widths, colsWidth)}
	rows = append(rows, columnRow(labels, widths))

	arrows := make([]string, n)
	for i := range arrows {
		arrows[i] = "▼"
	}
	rows = append(rows, columnRow(arrows, widths))

	height := 0
	for _, sub := range subs {
		if len(sub) > height {
			height = len(sub)
		}
	}
	for line := 0; line < height; line++ {
		cells := make([]string, n)
		for i, sub := range subs {
			if line < len(sub) {
				cells[i] = sub[line]
			}
		}
		rows = append(rows, columnRow(cells, widths))
	}

	total := maxLineWidth(headerBox)
	if colsWidth > total {
		total = colsWidth
	}
	out := centerBlock(headerBox, total)
	return append(out, centerBlock(rows, total)...)
}

func branchLabel(action hubspot.Action, b hubspot.Branch, i, n int) string {
	if b.Label != "" {
		return b.Label
	}
	if percentageBranches[action.Type] {
		pct := (100 + n/2) / n // round(100/n)
		return fmt.Sprintf("%d%%", pct)
	}
	return fmt.Sprintf("Branch %d", i+1)
}

// splitLine draws the horizontal fan-out from the parent's center down to
// each branch column's center.
func splitLine(widths []int, total int) string {
	row := make([]rune, total)
	for i := range row {
		row[i] = ' '
	}

	centers := make([]int, len(widths))
	offset := 0
	for i, cw := range widths {
		centers[i] = offset + cw/2
		offset += cw + colGap
	}

	if len(centers) == 1 {
		row[centers[0]] = '│'
		return string(row)
	}

	for p := centers[0]; p <= centers[len(centers)-1]; p++ {
		row[p] = '─'
	}
	for i, c := range centers {
		switch i {
		case 0:
			row[c] = '┌'
		case len(centers) - 1:
			row[c] = '┐'
		default:
			row[c] = '┬'
		}
	}

	// Attach to the parent box's center.
	mid := total / 2
	switch row[mid] {
	case '─':
		row[mid] = '┴'
	case '┬':
		row[mid] = '┼'
	}
	return string(row)
}

// columnRow lays one cell per column, each centered, separated by the gap.
func columnRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = padCenter(cell, widths[i])
	}
	return strings.Join(parts, strings.Repeat(" ", colGap))
}
