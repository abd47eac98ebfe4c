package problemgen

import (
	"errors"
	"testing"

	"github.com/mathmaster/mathmaster/internal/curriculum"
)

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr bool
	}{
		{"valid", func(*Request) {}, false},
		{"loose topic id", func(r *Request) { r.Topic = "Linear Equations" }, false},
		{"topic display name", func(r *Request) { r.Topic = "一次方程式" }, false},
		{"valid subtopic", func(r *Request) { r.Subtopic = "parentheses" }, false},
		{"max count", func(r *Request) { r.Count = MaxCount }, false},
		{"unknown grade", func(r *Request) { r.Grade = "grade12" }, true},
		{"topic of another grade", func(r *Request) { r.Topic = "simultaneous-equations" }, true},
		{"unknown subtopic", func(r *Request) { r.Subtopic = "matrices" }, true},
		{"unknown difficulty", func(r *Request) { r.Difficulty = "easy" }, true},
		{"zero count", func(r *Request) { r.Count = 0 }, true},
		{"too many", func(r *Request) { r.Count = MaxCount + 1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := grade7Request()
			tt.mutate(&req)
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("err = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestParseDifficulty(t *testing.T) {
	for _, d := range Difficulties() {
		if got, ok := ParseDifficulty(string(d)); !ok || got != d {
			t.Errorf("ParseDifficulty(%q) = %q, %v", d, got, ok)
		}
		if got, ok := ParseDifficulty(d.Label()); !ok || got != d {
			t.Errorf("ParseDifficulty(%q) = %q, %v", d.Label(), got, ok)
		}
	}
	if _, ok := ParseDifficulty("hard"); ok {
		t.Error("unexpected match")
	}
	if DifficultyApplied.Label() != "応用" {
		t.Errorf("Label = %q", DifficultyApplied.Label())
	}
}

func TestParseStrategy(t *testing.T) {
	if s, ok := ParseStrategy("planned"); !ok || s != StrategyPlanned {
		t.Errorf("ParseStrategy = %q, %v", s, ok)
	}
	if _, ok := ParseStrategy("batch"); ok {
		t.Error("unexpected match")
	}
}

func TestRequestNode(t *testing.T) {
	req := grade7Request()
	req.Subtopic = "parentheses"
	n := req.Node()
	if n.Grade != curriculum.Grade7 || n.Topic != "linear-equations" || n.Subtopic != "parentheses" {
		t.Errorf("Node = %+v", n)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("MATHMASTER_STRATEGY", "planned")
	t.Setenv("MATHMASTER_TEMPERATURE", "0.3")
	cfg := ConfigFromEnv()
	if cfg.Strategy != StrategyPlanned || cfg.Temperature != 0.3 {
		t.Errorf("cfg = %+v", cfg)
	}

	t.Setenv("MATHMASTER_STRATEGY", "bogus")
	t.Setenv("MATHMASTER_TEMPERATURE", "9")
	cfg = ConfigFromEnv()
	if cfg != DefaultConfig() {
		t.Errorf("invalid values should be ignored, got %+v", cfg)
	}
}

func TestRequestTitle(t *testing.T) {
	req := grade7Request()
	if got := req.Title(); got != "中学1年生 一次方程式 (標準)" {
		t.Errorf("Title = %q", got)
	}
	req.Subtopic = "parentheses"
	if got := req.Title(); got != "中学1年生 一次方程式 / かっこを含む方程式 (標準)" {
		t.Errorf("Title = %q", got)
	}
}
