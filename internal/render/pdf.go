// Package render turns report data into downloadable files.
package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-pdf/fpdf"
	"github.com/traceops/backend/internal/models"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

const (
	pdfMargin   = 32.0
	pdfTopLimit = 8
	stampLayout = "2006-01-02 15:04"
)

type rgb struct{ r, g, b int }

var (
	colorText   = rgb{33, 33, 33}
	colorMuted  = rgb{97, 97, 97}
	colorBorder = rgb{224, 224, 224}
	colorBlue   = rgb{33, 150, 243}
	colorGreen  = rgb{76, 175, 80}
	colorOrange = rgb{255, 152, 0}
	colorRed    = rgb{244, 67, 54}
)

var auditorNotes = []string{
	"This report summarizes operational audit events captured by TRACEOPS.",
	"CSV export can be generated from the same date range for detailed evidence.",
	"Events are tenant-scoped and access is restricted via JWT tenant claims.",
}

// PDFRenderer lays out an audit pack on a single A4 page.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (*PDFRenderer) ContentType() string { return models.ContentTypePDF }

func (*PDFRenderer) Render(d models.AuditPackData) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin+20)
	pdf.SetCreationDate(d.GeneratedAt)
	pdf.SetModificationDate(d.GeneratedAt)
	pdf.SetTitle("Audit Pack Report", true)
	pdf.SetCreator("TRACEOPS", true)
	pdf.AliasNbPages("{nb}")

	tr := pdfText
	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*pdfMargin

	pdf.SetFooterFunc(func() {
		pdf.SetY(pageH - pdfMargin)
		pdf.SetFont("Helvetica", "", 10)
		setText(pdf, colorMuted)
		pdf.CellFormat(0, 12, tr(fmt.Sprintf("TRACEOPS • Audit Pack • Page %d of {nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	// Header: product and tenant on the left, stamps on the right.
	top := pdf.GetY()
	pdf.SetFont("Helvetica", "B", 16)
	setText(pdf, colorText)
	pdf.CellFormat(contentW-220, 20, "TRACEOPS", "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(contentW-220, 28, "Audit Pack Report", "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	setText(pdf, colorMuted)
	pdf.CellFormat(contentW-220, 16, tr(d.TenantName), "", 2, "L", false, 0, "")
	bottom := pdf.GetY()

	pdf.SetXY(pdfMargin+contentW-220, top)
	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, colorText)
	pdf.CellFormat(220, 14, "Generated (UTC): "+d.GeneratedAt.UTC().Format(stampLayout), "", 2, "R", false, 0, "")
	pdf.CellFormat(220, 14, "Range: "+d.From.UTC().Format(stampLayout)+" - "+d.To.UTC().Format(stampLayout), "", 2, "R", false, 0, "")
	setText(pdf, colorMuted)
	pdf.CellFormat(220, 14, "Signed timestamp: Included", "", 2, "R", false, 0, "")

	pdf.SetY(bottom + 12)
	setDraw(pdf, colorBorder)
	pdf.SetLineWidth(1)
	pdf.Line(pdfMargin, pdf.GetY(), pdfMargin+contentW, pdf.GetY())
	pdf.Ln(14)

	// KPI boxes.
	kpis := []struct {
		label string
		value int
		color rgb
	}{
		{"Total events", d.Totals.Events, colorBlue},
		{"Success", d.Totals.Success, colorGreen},
		{"Failed", d.Totals.Failed, colorOrange},
		{"Exports", d.Totals.Exports, colorRed},
	}
	const gap, boxH = 10.0, 60.0
	boxW := (contentW - gap*float64(len(kpis)-1)) / float64(len(kpis))
	y := pdf.GetY()
	for i, k := range kpis {
		x := pdfMargin + float64(i)*(boxW+gap)
		pdf.Rect(x, y, boxW, boxH, "D")
		pdf.SetXY(x+12, y+10)
		pdf.SetFont("Helvetica", "", 10)
		setText(pdf, colorMuted)
		pdf.CellFormat(boxW-24, 14, k.label, "", 2, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 22)
		setText(pdf, k.color)
		pdf.CellFormat(boxW-24, 26, strconv.Itoa(k.value), "", 0, "L", false, 0, "")
	}
	pdf.SetY(y + boxH + 14)

	// Top lists side by side.
	const listGap = 16.0
	listW := (contentW - listGap) / 2
	y = pdf.GetY()
	h1 := topList(pdf, tr, pdfMargin, y, listW, "Top Actions", d.TopActions)
	h2 := topList(pdf, tr, pdfMargin+listW+listGap, y, listW, "Top Actors", d.TopActors)
	pdf.SetY(y + max(h1, h2) + 14)

	// Notes.
	y = pdf.GetY()
	pdf.SetXY(pdfMargin+12, y+12)
	pdf.SetFont("Helvetica", "B", 11)
	setText(pdf, colorText)
	pdf.CellFormat(contentW-24, 16, "Notes for auditors", "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, n := range auditorNotes {
		pdf.CellFormat(contentW-24, 16, tr("• "+n), "", 2, "L", false, 0, "")
	}
	pdf.Rect(pdfMargin, y, contentW, pdf.GetY()-y+12, "D")

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render audit pack: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render audit pack: %w", err)
	}
	return buf.Bytes(), nil
}

// topList draws a bordered key/count table and returns its height.
func topList(pdf *fpdf.Fpdf, tr func(string) string, x, y, w float64, title string, items []models.KeyCount) float64 {
	const pad, rowH = 12.0, 16.0

	pdf.SetXY(x+pad, y+pad)
	pdf.SetFont("Helvetica", "B", 11)
	setText(pdf, colorText)
	pdf.CellFormat(w-2*pad, rowH+4, title, "", 2, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	if len(items) == 0 {
		setText(pdf, colorMuted)
		pdf.CellFormat(w-2*pad, rowH, "No data.", "", 2, "L", false, 0, "")
	}
	for i, it := range items {
		if i == pdfTopLimit {
			break
		}
		pdf.SetX(x + pad)
		setText(pdf, colorText)
		pdf.CellFormat(w-2*pad-50, rowH, tr(it.Key), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(50, rowH, strconv.Itoa(it.Count), "", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}

	h := pdf.GetY() - y + pad
	setDraw(pdf, colorBorder)
	pdf.Rect(x, y, w, h, "D")
	return h
}

// pdfText encodes s as cp1252, the only charset the core fonts cover.
// Accented letters outside it drop their marks (ő becomes o) and anything
// else becomes '?', so Cyrillic or CJK names stay visibly redacted.
func pdfText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		b.WriteByte(baseLetter(r))
	}
	return b.String()
}

func baseLetter(r rune) byte {
	for _, d := range norm.NFD.String(string(r)) {
		if d == r || unicode.Is(unicode.Mn, d) {
			continue
		}
		if c, ok := charmap.Windows1252.EncodeRune(d); ok {
			return c
		}
	}
	return '?'
}

func setText(pdf *fpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }

func setDraw(pdf *fpdf.Fpdf, c rgb) { pdf.SetDrawColor(c.r, c.g, c.b) }
