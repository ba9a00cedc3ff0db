package export

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/fdg312/mealcraft/internal/slots"
	"github.com/fdg312/mealcraft/internal/storage"
	"github.com/fdg312/mealcraft/internal/week"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

//go:embed templates/week.html
var weekHTML string

var weekTemplate = template.Must(template.New("week").Parse(weekHTML))

// Generator renders one week of the meal plan as a printable document.
type Generator struct {
	plans storage.MealPlansStorage
}

func NewGenerator(plans storage.MealPlansStorage) *Generator {
	return &Generator{plans: plans}
}

// ParseFormat accepts pdf, csv or html; empty means pdf.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "":
		return FormatPDF, nil
	case FormatPDF, FormatCSV, FormatHTML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
	}
}

func ContentType(f Format) string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/pdf"
	}
}

// FileName returns meal-plan-YYYY-MM-DD.<ext>.
func FileName(weekStart time.Time, f Format) string {
	return fmt.Sprintf("meal-plan-%s.%s", week.ISODate(weekStart), f)
}

// Week renders the plan of the week starting at weekStart.
func (g *Generator) Week(ctx context.Context, weekStart time.Time, format Format) ([]byte, error) {
	entries, err := g.plans.ListByWeek(ctx, week.ISODate(weekStart))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meal plan: %w", err)
	}

	grid := newGrid(weekStart, entries)

	switch format {
	case FormatPDF:
		return g.generatePDF(grid)
	case FormatCSV:
		return g.generateCSV(grid)
	case FormatHTML:
		return g.generateHTML(grid)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

type dayHeader struct {
	Label string
	Date  string // day of month
	ISO   string
}

type cell struct {
	Day      int
	Slot     string
	Filled   bool
	Recipe   string
	Category string
}

type row struct {
	Slot  slots.Slot
	Emoji string
	Cells [7]cell
}

type grid struct {
	Title string
	Range string
	Days  [7]dayHeader
	Rows  []row
}

func newGrid(weekStart time.Time, entries []storage.MealPlanEntry) grid {
	g := grid{
		Title: "Weekly Meal Plan",
		Range: week.RangeLabel(weekStart),
	}
	for i, label := range slots.Days {
		d := week.DayDate(weekStart, i)
		g.Days[i] = dayHeader{Label: label, Date: strconv.Itoa(d.Day()), ISO: week.ISODate(d)}
	}

	for _, s := range slots.Slots {
		r := row{Slot: s, Emoji: slots.Emoji(s.Category)}
		for day := range r.Cells {
			r.Cells[day] = cell{Day: day, Slot: s.Key}
		}
		g.Rows = append(g.Rows, r)
	}

	// first entry wins, as in the calendar lookup
	for _, e := range entries {
		idx := slots.Index(e.MealSlot)
		if idx >= len(g.Rows) || !slots.IsValidDay(e.DayOfWeek) {
			continue
		}
		c := &g.Rows[idx].Cells[e.DayOfWeek]
		if c.Filled {
			continue
		}
		c.Filled = true
		c.Recipe = e.RecipeName
		c.Category = e.RecipeCategory
	}
	return g
}

// generateCSV writes one line per slot with the recipe name or an empty field.
func (g *Generator) generateCSV(gr grid) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"date", "day", "meal_slot", "recipe_name", "recipe_category"}); err != nil {
		return nil, err
	}
	for day, h := range gr.Days {
		for _, r := range gr.Rows {
			c := r.Cells[day]
			if err := w.Write([]string{h.ISO, h.Label, r.Slot.Key, c.Recipe, c.Category}); err != nil {
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

func (g *Generator) generateHTML(gr grid) ([]byte, error) {
	var buf bytes.Buffer
	if err := weekTemplate.Execute(&buf, gr); err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.Bytes(), nil
}

// generatePDF draws the 7x5 grid on a landscape A4 page.
func (g *Generator) generatePDF(gr grid) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	fontName := "Helvetica"

	pdf.AddPage()
	pdf.SetFont(fontName, "B", 16)
	pdf.Cell(0, 10, gr.Title)
	pdf.Ln(8)

	pdf.SetFont(fontName, "", 12)
	pdf.Cell(0, 8, tr(gr.Range))
	pdf.Ln(12)

	const labelW, colW, rowH = 27.0, 35.0, 14.0

	pdf.SetFont(fontName, "B", 9)
	pdf.CellFormat(labelW, 8, "", "1", 0, "C", false, 0, "")
	for i, h := range gr.Days {
		ln := 0
		if i == len(gr.Days)-1 {
			ln = 1
		}
		pdf.CellFormat(colW, 8, fmt.Sprintf("%s %s", h.Label, h.Date), "1", ln, "C", false, 0, "")
	}

	for _, r := range gr.Rows {
		pdf.SetFont(fontName, "B", 9)
		pdf.CellFormat(labelW, rowH, r.Slot.Label, "1", 0, "C", false, 0, "")

		pdf.SetFont(fontName, "", 8)
		for day, c := range r.Cells {
			ln := 0
			if day == len(r.Cells)-1 {
				ln = 1
			}
			text := ""
			if c.Filled {
				text = tr(truncate(c.Recipe, 22))
			}
			pdf.CellFormat(colW, rowH, text, "1", ln, "C", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
