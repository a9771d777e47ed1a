package sharing

import (
	"fmt"
	"strings"

	"github.com/fdg312/meal-planner/internal/exports"
	"github.com/fdg312/meal-planner/internal/shopping"
	"github.com/fdg312/meal-planner/internal/units"
)

// RenderText is the email body: one block per section, one line per item.
func RenderText(from, to string, items []shopping.Item) string {
	list := shopping.Assemble(items)

	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for %s to %s\n", from, to)
	for _, section := range list.Sections {
		fmt.Fprintf(&b, "\n%s\n", section.Name)
		for _, it := range section.Items {
			fmt.Fprintf(&b, "- [ ] %s: %s %s", it.Name, exports.FormatQuantity(it.TotalAmount), it.Unit)
			if it.Notes != "" {
				fmt.Fprintf(&b, " (%s)", it.Notes)
			}
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "\n%d items", list.TotalItems)
	if list.TotalCost > 0 {
		fmt.Fprintf(&b, ", about %.2f", list.TotalCost)
	}
	b.WriteString("\n")
	return b.String()
}

// RenderSMS packs the list into at most maxChars runes. Items that do not
// fit are summarized as "+N more".
func RenderSMS(items []shopping.Item, maxChars int) string {
	list := shopping.Assemble(items)
	flat := list.Items()

	parts := make([]string, 0, len(flat))
	for _, it := range flat {
		parts = append(parts, fmt.Sprintf("%s %s%s", it.Name, exports.FormatQuantity(it.TotalAmount), shortUnit(it.Unit)))
	}

	const header = "Shopping: "
	if maxChars <= 0 {
		return header + strings.Join(parts, ", ")
	}

	out := header
	for i, p := range parts {
		sep := ""
		if i > 0 {
			sep = ", "
		}
		rest := len(parts) - i - 1
		tail := ""
		if rest > 0 {
			tail = fmt.Sprintf(", +%d more", rest)
		}
		if runeLen(out+sep+p+tail) > maxChars {
			more := fmt.Sprintf("+%d more", len(parts)-i)
			if i > 0 {
				more = ", " + more
			}
			if runeLen(out+more) > maxChars {
				return truncateRunes(out, maxChars)
			}
			return out + more
		}
		out += sep + p
	}
	return out
}

func shortUnit(u units.Unit) string {
	if u == "" || u == units.Piece {
		return ""
	}
	return " " + string(u)
}

func runeLen(s string) int {
	return len([]rune(s))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
