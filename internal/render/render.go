// Package render lays out a problem set as problems-only and
// solutions-only PDF documents.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/mathmaster/mathmaster/internal/problemset"
)

// ErrNoItems is returned when there is nothing to export.
var ErrNoItems = errors.New("no problems to render")

// ContentType of every artifact.
const ContentType = "application/pdf"

// Mode selects which half of each item a document shows.
type Mode int

const (
	// ModeProblems prints the problems with work space after each.
	ModeProblems Mode = iota

	// ModeSolutions prints the answers and explanations.
	ModeSolutions
)

func (m Mode) String() string {
	if m == ModeSolutions {
		return "solutions"
	}
	return "problems"
}

// Filename is the deterministic artifact name for the mode.
func (m Mode) Filename() string {
	return m.String() + ".pdf"
}

// ParseMode accepts "problems", "solutions" and their file names.
func ParseMode(s string) (Mode, bool) {
	switch strings.TrimSuffix(strings.ToLower(s), ".pdf") {
	case "problems":
		return ModeProblems, true
	case "solutions":
		return ModeSolutions, true
	}
	return 0, false
}

// Artifact is a finished document.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	Pages       int
}

// Renderer builds PDF documents.
type Renderer struct {
	cfg Config
}

// New creates a Renderer. Zero fields of cfg take their defaults.
func New(cfg Config) *Renderer {
	def := DefaultConfig()
	if cfg.PageSize == "" {
		cfg.PageSize = def.PageSize
	}
	if cfg.MarginsMM <= 0 {
		cfg.MarginsMM = def.MarginsMM
	}
	if cfg.FontFamily == "" {
		cfg.FontFamily = def.FontFamily
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = def.FontSize
	}
	if cfg.WorkSpaceMM < 0 {
		cfg.WorkSpaceMM = 0
	}
	return &Renderer{cfg: cfg}
}

// Render builds one document. Item text is never rejected; any failure is
// a document-level error and no artifact is returned.
func (r *Renderer) Render(items []problemset.Item, title string, mode Mode) (*Artifact, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	pdf := fpdf.New("P", "mm", r.cfg.PageSize, "")
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("new document: %w", err)
	}

	l := r.labels(pdf)
	if l.unicode {
		pdf.AddUTF8Font(r.cfg.FontFamily, "", r.cfg.FontPath)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("load font %s: %w", r.cfg.FontPath, err)
		}
	}

	heading := title
	if mode == ModeSolutions {
		heading = title + l.solutionsSuffix
	}

	pdf.SetTitle(heading, true)
	pdf.SetCreator("mathmaster", false)
	pdf.SetMargins(r.cfg.MarginsMM, r.cfg.MarginsMM, r.cfg.MarginsMM)
	pdf.SetAutoPageBreak(true, r.cfg.MarginsMM)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-r.cfg.MarginsMM / 2)
		pdf.SetFont(r.cfg.FontFamily, "", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("%d / {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	lineH := r.cfg.FontSize * 0.5
	pdf.SetFont(r.cfg.FontFamily, "", r.cfg.FontSize+6)
	pdf.MultiCell(0, lineH+3, l.tr(heading), "", "C", false)
	pdf.Ln(lineH)

	_, pageH := pdf.GetPageSize()
	for _, it := range items {
		label, body := l.problem, it.Problem
		if mode == ModeSolutions {
			label, body = l.solution, it.Solution
		}

		pdf.SetFont(r.cfg.FontFamily, "", r.cfg.FontSize+2)
		pdf.CellFormat(0, lineH+2, l.tr(fmt.Sprintf(label, it.ID)), "B", 1, "L", false, 0, "")
		pdf.Ln(1)
		pdf.SetFont(r.cfg.FontFamily, "", r.cfg.FontSize)
		pdf.MultiCell(0, lineH, l.tr(normalizeNewlines(body)), "", "L", false)

		if mode == ModeProblems && r.cfg.WorkSpaceMM > 0 {
			if pdf.GetY()+r.cfg.WorkSpaceMM > pageH-r.cfg.MarginsMM {
				pdf.AddPage()
			} else {
				pdf.Ln(r.cfg.WorkSpaceMM)
			}
		} else {
			pdf.Ln(lineH)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("build %s: %w", mode, err)
	}
	return &Artifact{
		Filename:    mode.Filename(),
		ContentType: ContentType,
		Data:        buf.Bytes(),
		Pages:       pdf.PageNo(),
	}, nil
}

// labels holds the text that depends on whether a Unicode font is loaded.
type labels struct {
	unicode         bool
	problem         string
	solution        string
	solutionsSuffix string
	tr              func(string) string
}

func (r *Renderer) labels(pdf *fpdf.Fpdf) labels {
	if r.cfg.FontPath != "" {
		return labels{
			unicode:         true,
			problem:         "問題 %d",
			solution:        "解答 %d",
			solutionsSuffix: " 解答・解説",
			tr:              func(s string) string { return s },
		}
	}
	// Core fonts only cover cp1252; other runes come out as placeholders.
	return labels{
		problem:         "Problem %d",
		solution:        "Solution %d",
		solutionsSuffix: " - Solutions",
		tr:              pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
