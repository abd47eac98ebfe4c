package problemgen

import (
	"errors"
	"fmt"

	"github.com/mathmaster/mathmaster/internal/curriculum"
)

// ErrInvalidRequest is returned when a Request fails validation.
var ErrInvalidRequest = errors.New("invalid generation request")

// MaxCount bounds the number of items one batch may request.
const MaxCount = 10

// Difficulty is the requested level of a batch.
type Difficulty string

const (
	DifficultyBasic    Difficulty = "basic"    // 基礎
	DifficultyStandard Difficulty = "standard" // 標準
	DifficultyApplied  Difficulty = "applied"  // 応用
	DifficultyAdvanced Difficulty = "advanced" // 難問
)

var difficultyLabels = map[Difficulty]string{
	DifficultyBasic:    "基礎",
	DifficultyStandard: "標準",
	DifficultyApplied:  "応用",
	DifficultyAdvanced: "難問",
}

// Difficulties lists every difficulty from easiest to hardest.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyBasic, DifficultyStandard, DifficultyApplied, DifficultyAdvanced}
}

// ParseDifficulty accepts either the ID or the Japanese label.
func ParseDifficulty(s string) (Difficulty, bool) {
	for d, label := range difficultyLabels {
		if string(d) == s || label == s {
			return d, true
		}
	}
	return "", false
}

// Label returns the Japanese label shown to users and placed in prompts.
func (d Difficulty) Label() string {
	if l, ok := difficultyLabels[d]; ok {
		return l
	}
	return string(d)
}

// Strategy selects how a batch is generated.
type Strategy string

const (
	// StrategyDirect sends one independent prompt per item.
	StrategyDirect Strategy = "direct"

	// StrategyPlanned first asks for Count distinct themes, then sends one
	// prompt per theme.
	StrategyPlanned Strategy = "planned"
)

// ParseStrategy resolves a strategy name.
func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(s) {
	case StrategyDirect, StrategyPlanned:
		return Strategy(s), true
	}
	return "", false
}

// Request is one user-initiated generation action.
type Request struct {
	Grade      curriculum.Grade
	Topic      string
	Subtopic   string // optional
	Difficulty Difficulty
	Count      int
	Theme      string // optional, applies to every item of a direct batch
}

// Validate checks the request against the catalog and the count bound.
// On success Topic and Subtopic are left untouched; use Resolve for the
// catalog entries.
func (r Request) Validate() error {
	if _, ok := curriculum.GetGrade(r.Grade); !ok {
		return fmt.Errorf("%w: unknown grade %q", ErrInvalidRequest, r.Grade)
	}
	if _, ok := curriculum.LookupTopic(r.Grade, r.Topic); !ok {
		return fmt.Errorf("%w: topic %q is not part of %s", ErrInvalidRequest, r.Topic, r.Grade)
	}
	if r.Subtopic != "" {
		if _, ok := curriculum.LookupSubtopic(r.Grade, r.Topic, r.Subtopic); !ok {
			return fmt.Errorf("%w: sub-topic %q is not part of %s", ErrInvalidRequest, r.Subtopic, r.Topic)
		}
	}
	if _, ok := difficultyLabels[r.Difficulty]; !ok {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidRequest, r.Difficulty)
	}
	if r.Count < 1 || r.Count > MaxCount {
		return fmt.Errorf("%w: count must be between 1 and %d, got %d", ErrInvalidRequest, MaxCount, r.Count)
	}
	return nil
}

// resolved carries the display names a prompt needs.
type resolved struct {
	grade     string
	topic     string
	subtopic  string
	forbidden []string
}

// resolve looks up display names. Unknown entries fall back to the raw
// request strings so prompt building never fails.
func (r Request) resolve() resolved {
	out := resolved{
		grade:     r.Grade.DisplayName(),
		topic:     r.Topic,
		subtopic:  r.Subtopic,
		forbidden: curriculum.Forbidden(r.Grade),
	}
	if t, ok := curriculum.LookupTopic(r.Grade, r.Topic); ok {
		out.topic = t.Name
	}
	if r.Subtopic != "" {
		if s, ok := curriculum.LookupSubtopic(r.Grade, r.Topic, r.Subtopic); ok {
			out.subtopic = s.Name
		}
	}
	return out
}

// Node returns the catalog position of the request.
func (r Request) Node() curriculum.Node {
	return curriculum.Node{Grade: r.Grade, Topic: r.Topic, Subtopic: r.Subtopic}
}

// Title is the document heading for a batch, e.g. "中学1年生 一次方程式 (標準)".
func (r Request) Title() string {
	res := r.resolve()
	title := res.grade + " " + res.topic
	if res.subtopic != "" {
		title += " / " + res.subtopic
	}
	return fmt.Sprintf("%s (%s)", title, r.Difficulty.Label())
}
