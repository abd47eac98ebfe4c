package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mathmaster/mathmaster/internal/problemset"
)

func sampleItems(n int) []problemset.Item {
	items := make([]problemset.Item, n)
	for i := range items {
		items[i] = problemset.Item{
			ID:       i + 1,
			Problem:  "Solve 2x+3=7",
			Solution: "2x = 4\nx = 2",
			Status:   problemset.StatusOK,
		}
	}
	return items
}

func TestRender_Problems(t *testing.T) {
	r := New(DefaultConfig())
	art, err := r.Render(sampleItems(2), "Linear equations", ModeProblems)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if art.Filename != "problems.pdf" {
		t.Errorf("Filename = %q", art.Filename)
	}
	if art.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q", art.ContentType)
	}
	if !bytes.HasPrefix(art.Data, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
	if art.Pages < 1 {
		t.Errorf("Pages = %d", art.Pages)
	}
}

func TestRender_Solutions(t *testing.T) {
	r := New(DefaultConfig())
	art, err := r.Render(sampleItems(2), "Linear equations", ModeSolutions)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if art.Filename != "solutions.pdf" {
		t.Errorf("Filename = %q", art.Filename)
	}
}

func TestRender_WorkSpaceOnlyInProblemsMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkSpaceMM = 120
	r := New(cfg)
	items := sampleItems(6)

	problems, err := r.Render(items, "t", ModeProblems)
	if err != nil {
		t.Fatalf("Render problems: %v", err)
	}
	solutions, err := r.Render(items, "t", ModeSolutions)
	if err != nil {
		t.Fatalf("Render solutions: %v", err)
	}
	if problems.Pages <= solutions.Pages {
		t.Errorf("problems pages = %d, solutions pages = %d; work space should add pages",
			problems.Pages, solutions.Pages)
	}
}

func TestRender_NoItems(t *testing.T) {
	art, err := New(DefaultConfig()).Render(nil, "t", ModeProblems)
	if !errors.Is(err, ErrNoItems) || art != nil {
		t.Errorf("Render = %v, %v", art, err)
	}
}

func TestRender_AnyItemContent(t *testing.T) {
	items := []problemset.Item{
		{ID: 1, Problem: "", Solution: ""},
		{ID: 2, Problem: "一次方程式 2x＋3＝7 を解け。\r\n√2 ≒ 1.41", Solution: strings.Repeat("x", 5000)},
	}
	for _, mode := range []Mode{ModeProblems, ModeSolutions} {
		if _, err := New(DefaultConfig()).Render(items, "中学1年生", mode); err != nil {
			t.Errorf("Render(%s): %v", mode, err)
		}
	}
}

func TestRender_MissingFontFailsWholeDocument(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FontPath = filepath.Join(t.TempDir(), "missing.ttf")
	cfg.FontFamily = "jp"

	art, err := New(cfg).Render(sampleItems(1), "t", ModeProblems)
	if err == nil {
		t.Fatal("expected an error")
	}
	if art != nil {
		t.Error("no artifact expected on failure")
	}
}

func TestConfigCheckFont(t *testing.T) {
	if err := DefaultConfig().CheckFont(); !errors.Is(err, ErrNoJapaneseFont) {
		t.Errorf("default config: err = %v, want ErrNoJapaneseFont", err)
	}

	cfg := DefaultConfig()
	cfg.FontPath = filepath.Join(t.TempDir(), "missing.ttf")
	if err := cfg.CheckFont(); !errors.Is(err, ErrNoJapaneseFont) {
		t.Errorf("missing file: err = %v, want ErrNoJapaneseFont", err)
	}

	cfg.FontPath = filepath.Join(t.TempDir(), "font.ttf")
	if err := os.WriteFile(cfg.FontPath, []byte("ttf"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := cfg.CheckFont(); err != nil {
		t.Errorf("existing file: err = %v", err)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"problems", ModeProblems, true},
		{"problems.pdf", ModeProblems, true},
		{"Solutions.PDF", ModeSolutions, true},
		{"answers", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseMode(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v", tt.in, got, ok)
		}
	}
}

func TestConfigFromEnv(t *testing.T) {
	font := filepath.Join(t.TempDir(), "font.ttf")
	t.Setenv("MATHMASTER_PDF_FONT", font)
	t.Setenv("MATHMASTER_PDF_PAGE_SIZE", "letter")

	cfg := ConfigFromEnv()
	if cfg.PageSize != "Letter" || cfg.FontPath != font || cfg.FontFamily != "jp" {
		t.Errorf("cfg = %+v", cfg)
	}

	t.Setenv("MATHMASTER_PDF_PAGE_SIZE", "tabloid")
	if cfg := ConfigFromEnv(); cfg.PageSize != "A4" {
		t.Errorf("PageSize = %q, want default", cfg.PageSize)
	}
}
