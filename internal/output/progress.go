package output

import (
	"fmt"
	"strings"
)

// TrendArrow returns a styled indicator for a change in a count where
// lower is better, such as findings between two reviews.
func TrendArrow(delta int) string {
	switch {
	case delta == 0:
		return StyleMuted.Render("─")
	case delta > 0:
		return StyleError.Render(fmt.Sprintf("▲ +%d", delta))
	default:
		return StyleSuccess.Render(fmt.Sprintf("▼ %d", delta))
	}
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
