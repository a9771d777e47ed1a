package exports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/fdg312/meal-planner/internal/shopping"
)

// Document is what gets rendered into a file.
type Document struct {
	From  string
	To    string
	Items []shopping.Item
}

// Renderer turns a finalized list into file bytes.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the file in the given format.
func (r *Renderer) Render(doc Document, format string) ([]byte, error) {
	switch format {
	case FormatPDF:
		return r.renderPDF(doc)
	case FormatCSV:
		return r.renderCSV(doc)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

var csvHeader = []string{"section", "item", "quantity", "unit", "notes", "estimated_cost", "recipes"}

func (r *Renderer) renderCSV(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	list := shopping.Assemble(doc.Items)
	for _, section := range list.Sections {
		for _, it := range section.Items {
			row := []string{
				string(section.Name),
				it.Name,
				FormatQuantity(it.TotalAmount),
				string(it.Unit),
				it.Notes,
				formatCost(it.EstimatedCost),
				recipeTitles(it.Sources),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderPDF(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Shopping List", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Shopping List")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Meal plan: %s to %s", doc.From, doc.To))
	pdf.Ln(10)

	list := shopping.Assemble(doc.Items)
	for _, section := range list.Sections {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr(string(section.Name)), "B", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		for _, it := range section.Items {
			pdf.CellFormat(8, 6, "[ ]", "", 0, "L", false, 0, "")
			pdf.CellFormat(70, 6, tr(it.Name), "", 0, "L", false, 0, "")
			pdf.CellFormat(35, 6, FormatQuantity(it.TotalAmount)+" "+string(it.Unit), "", 0, "R", false, 0, "")
			pdf.CellFormat(0, 6, tr(truncate(it.Notes, 60)), "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Items: %d", list.TotalItems))
	pdf.Ln(5)
	if list.TotalCost > 0 {
		pdf.Cell(0, 6, fmt.Sprintf("Estimated cost: %s", decimal.NewFromFloat(list.TotalCost).StringFixed(2)))
		pdf.Ln(5)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatQuantity prints an amount with at most two decimals and no
// trailing zeros.
func FormatQuantity(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

func formatCost(c *float64) string {
	if c == nil {
		return ""
	}
	return decimal.NewFromFloat(*c).StringFixed(2)
}

func recipeTitles(sources []shopping.Source) string {
	seen := make(map[string]bool, len(sources))
	titles := make([]string, 0, len(sources))
	for _, src := range sources {
		if src.RecipeTitle == "" || seen[src.RecipeTitle] {
			continue
		}
		seen[src.RecipeTitle] = true
		titles = append(titles, src.RecipeTitle)
	}
	return strings.Join(titles, "; ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
