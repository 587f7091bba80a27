package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ColumnRole controls how a table column's cells are drawn.
type ColumnRole int

const (
	// RoleText cells are printed as given, left-aligned.
	RoleText ColumnRole = iota
	// RoleSeverity cells hold a severity name and are colored by it.
	RoleSeverity
	// RoleCount cells are right-aligned numbers.
	RoleCount
)

// emptyCell stands in for a missing value.
const emptyCell = "-"

type column struct {
	header string
	role   ColumnRole
}

// Table lays out review rows in aligned columns. Cells are stored raw and
// styled at render time from their column's role, so severity colors and
// the no-color switch apply uniformly.
type Table struct {
	columns []column
	rows    [][]string
}

// NewTable creates a table of text columns with the given headers.
func NewTable(headers ...string) *Table {
	cols := make([]column, len(headers))
	for i, h := range headers {
		cols[i] = column{header: h}
	}
	return &Table{columns: cols}
}

// WithRole assigns role to every column whose header is in headers.
func (t *Table) WithRole(role ColumnRole, headers ...string) *Table {
	for i := range t.columns {
		for _, h := range headers {
			if t.columns[i].header == h {
				t.columns[i].role = role
			}
		}
	}
	return t
}

// AddRow appends a row. Extra values are dropped; missing ones print as "-".
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.columns))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Len is the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

func (t *Table) cell(i int, value string) string {
	if value == "" {
		return StyleMuted.Render(emptyCell)
	}
	if t.columns[i].role == RoleSeverity {
		return SeverityStyle(value).Render(value)
	}
	return value
}

// Render returns the formatted table.
func (t *Table) Render() string {
	if len(t.columns) == 0 {
		return ""
	}

	cells := make([][]string, len(t.rows))
	widths := make([]int, len(t.columns))
	for i, c := range t.columns {
		widths[i] = visualLen(c.header)
	}
	for r, row := range t.rows {
		cells[r] = make([]string, len(row))
		for i, v := range row {
			cells[r][i] = t.cell(i, v)
			if w := visualLen(cells[r][i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	if IsNoColor() {
		headerStyle = lipgloss.NewStyle()
	}

	var sb strings.Builder
	line := func(parts []string) {
		for i, p := range parts {
			if i > 0 {
				sb.WriteString("  ")
			}
			if t.columns[i].role == RoleCount {
				sb.WriteString(padLeft(p, widths[i]))
			} else if i < len(parts)-1 {
				sb.WriteString(pad(p, widths[i]))
			} else {
				sb.WriteString(p)
			}
		}
		sb.WriteString("\n")
	}

	headers := make([]string, len(t.columns))
	rules := make([]string, len(t.columns))
	for i, c := range t.columns {
		headers[i] = headerStyle.Render(c.header)
		rules[i] = StyleMuted.Render(strings.Repeat("─", widths[i]))
	}
	line(headers)
	line(rules)
	for _, row := range cells {
		line(row)
	}
	return sb.String()
}

// String implements fmt.Stringer.
func (t *Table) String() string {
	return t.Render()
}

// visualLen is the printed width of s, ignoring ANSI escapes.
func visualLen(s string) int {
	return lipgloss.Width(s)
}

// pad right-pads a string to the given printed width.
func pad(s string, width int) string {
	n := visualLen(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// padLeft right-aligns a string within the given printed width.
func padLeft(s string, width int) string {
	n := visualLen(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}
