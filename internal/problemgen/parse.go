package problemgen

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/mathmaster/mathmaster/internal/problemset"
)

// FailureSentinel replaces the solution of an item whose completion had no
// separator.
const FailureSentinel = "解説の生成に失敗しました。"

// GenerationFailedPrefix starts the problem text of an item whose
// completion call failed.
const GenerationFailedPrefix = "問題の生成に失敗しました: "

// Completion is the parse result of one problem completion: either
// Parsed or Malformed.
type Completion interface {
	completion()
}

// Parsed is a completion that contained the separator.
type Parsed struct {
	Problem  string
	Solution string
}

// Malformed is a completion without the separator. Raw is kept verbatim.
type Malformed struct {
	Raw string
}

func (Parsed) completion()    {}
func (Malformed) completion() {}

var problemLabels = []string{"[問題]", "【問題】", "問題:"}

var solutionLabels = []string{"[解答・解説]", "【解答・解説】", "[解答]", "【解答】", "解答・解説:", "解答:"}

// ParseCompletion splits raw on the first Separator. It never fails: a
// response without the separator comes back as Malformed.
func ParseCompletion(raw string) Completion {
	problem, solution, ok := strings.Cut(raw, Separator)
	if !ok {
		return Malformed{Raw: raw}
	}
	return Parsed{
		Problem:  cleanSection(problem, problemLabels),
		Solution: cleanSection(solution, solutionLabels),
	}
}

// ItemFrom turns a parse result into a problem set item.
func ItemFrom(id int, c Completion) problemset.Item {
	switch c := c.(type) {
	case Parsed:
		return problemset.Item{ID: id, Problem: c.Problem, Solution: c.Solution, Status: problemset.StatusOK}
	case Malformed:
		return problemset.Item{ID: id, Problem: c.Raw, Solution: FailureSentinel, Status: problemset.StatusMalformed}
	}
	panic("problemgen: unknown completion variant")
}

// FailedItem records an upstream failure in place of generated content.
func FailedItem(id int, err error) problemset.Item {
	return problemset.Item{
		ID:       id,
		Problem:  GenerationFailedPrefix + err.Error(),
		Solution: FailureSentinel,
		Status:   problemset.StatusFailed,
	}
}

// cleanSection trims whitespace and drops one leading section label.
// Labels written with full-width ASCII match too; the text itself is kept
// as the model wrote it.
func cleanSection(s string, labels []string) string {
	s = strings.TrimSpace(s)
	for _, l := range labels {
		if rest, ok := cutLabel(s, l); ok {
			return strings.TrimSpace(rest)
		}
	}
	return s
}

// cutLabel removes label from the start of s, comparing the width-folded
// form of each rune of s.
func cutLabel(s, label string) (string, bool) {
	for _, want := range label {
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 || foldRune(r) != want {
			return "", false
		}
		s = s[size:]
	}
	return s, true
}

func foldRune(r rune) rune {
	if f := width.LookupRune(r).Folded(); f != 0 {
		return f
	}
	return r
}
