package render

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoJapaneseFont means exported PDFs fall back to a core font and
// Japanese text comes out as placeholders.
var ErrNoJapaneseFont = errors.New("no Japanese font configured")

// Config controls page layout and fonts.
type Config struct {
	// PageSize is an fpdf page size name: A3, A4, A5, Letter or Legal.
	PageSize string

	// MarginsMM is applied to every edge.
	MarginsMM float64

	// FontPath points to a TrueType font with Japanese glyphs. When empty
	// the core FontFamily is used and non-Latin text cannot be shown.
	FontPath string

	// FontFamily names the core font, or the family registered for FontPath.
	FontFamily string

	// FontSize is the body text size in points.
	FontSize float64

	// WorkSpaceMM is the blank space left after each problem in
	// ModeProblems.
	WorkSpaceMM float64
}

// DefaultConfig returns A4 pages with the core Helvetica font.
func DefaultConfig() Config {
	return Config{
		PageSize:    "A4",
		MarginsMM:   20,
		FontFamily:  "Helvetica",
		FontSize:    12,
		WorkSpaceMM: 60,
	}
}

// fontCandidates are probed by ConfigFromEnv when MATHMASTER_PDF_FONT is unset.
var fontCandidates = []string{
	"/usr/share/fonts/opentype/ipafont-gothic/ipag.ttf",
	"/usr/share/fonts/truetype/fonts-japanese-gothic.ttf",
	"/usr/share/fonts/ipa-gothic/ipag.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
}

// ConfigFromEnv overlays MATHMASTER_PDF_FONT and MATHMASTER_PDF_PAGE_SIZE on
// the defaults. Without an explicit font a few well-known Japanese font
// locations are tried.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if size, ok := pageSize(os.Getenv("MATHMASTER_PDF_PAGE_SIZE")); ok {
		cfg.PageSize = size
	}

	cfg.FontPath = os.Getenv("MATHMASTER_PDF_FONT")
	if cfg.FontPath == "" {
		for _, p := range fontCandidates {
			if _, err := os.Stat(p); err == nil {
				cfg.FontPath = p
				break
			}
		}
	}
	if cfg.FontPath != "" {
		cfg.FontFamily = "jp"
	}
	return cfg
}

// CheckFont reports whether cfg can draw Japanese text. It returns an
// error wrapping ErrNoJapaneseFont when no font is set or the font file
// cannot be read.
func (c Config) CheckFont() error {
	if c.FontPath == "" {
		return ErrNoJapaneseFont
	}
	if _, err := os.Stat(c.FontPath); err != nil {
		return fmt.Errorf("%w: %v", ErrNoJapaneseFont, err)
	}
	return nil
}

func pageSize(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a3":
		return "A3", true
	case "a4":
		return "A4", true
	case "a5":
		return "A5", true
	case "letter":
		return "Letter", true
	case "legal":
		return "Legal", true
	}
	return "", false
}
