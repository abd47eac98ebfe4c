package problemgen

import (
	"fmt"
	"strings"

	"github.com/mathmaster/mathmaster/internal/problemset"
)

// Separator divides the problem section from the solution section of a
// completion.
const Separator = "|||SPLIT|||"

// Section labels the completion is asked to use.
const (
	ProblemLabel  = "[問題]"
	SolutionLabel = "[解答・解説]"
)

// SystemPrompt sets the role and the rules shared by every problem and
// plan prompt.
const SystemPrompt = `あなたは日本の中学校・高校で教える数学のプロ講師です。生徒の演習用に数学の問題を作成します。

ルール:
- 指定された学年・単元・難易度に合った問題を作成してください。
- 指定された学年でまだ習っていない内容は使わないでください。
- 数式はLaTeXを使わず、プレーンテキストで書いてください。例: x^2 + 3x + 2 = 0, √2, 3/4, 2×3, 6÷2
- 図形の問題は、図がなくても文章だけで状況がわかる問題(角度や長さの計算など)にしてください。
- 余計な挨拶や前置きは書かないでください。`

// notationRule repeats the notation convention inside user prompts so it
// survives providers that weaken system prompts.
const notationRule = "数式はプレーンテキストで書くこと(LaTeXや$記号は使わない)。"

// BuildProblemPrompt returns the prompt for one problem. theme may be empty.
func BuildProblemPrompt(req Request, theme string) string {
	return buildProblemPrompt(req, theme, nil, 0)
}

func buildProblemPrompt(req Request, theme string, prior []string, maxPrior int) string {
	r := req.resolve()

	var b strings.Builder
	b.WriteString("以下の条件で数学の問題を1問作成してください。\n\n")
	writeTarget(&b, r, req.Difficulty)
	if theme != "" {
		fmt.Fprintf(&b, "テーマ: %s\n", theme)
	}

	writeForbidden(&b, r)

	if p := buildPrior(prior, maxPrior); p != "" {
		b.WriteString("\nこのセットで既に作成した問題(似た問題にしないこと):\n")
		b.WriteString(p)
		b.WriteString("\n")
	}

	b.WriteString("\n【重要ルール】\n")
	fmt.Fprintf(&b, "1. %s\n", notationRule)
	b.WriteString("2. 出力は次の形式のみとし、区切り記号はそのまま1回だけ書くこと。\n\n")
	fmt.Fprintf(&b, "%s\n(ここに問題文)\n\n%s\n\n%s\n(ここに答えと、途中式を含めた丁寧な解説)\n",
		ProblemLabel, Separator, SolutionLabel)

	return b.String()
}

// BuildPlanPrompt returns the prompt asking for Count distinct themes as a
// JSON array of strings. A non-empty Theme steers every planned theme.
func BuildPlanPrompt(req Request) string {
	r := req.resolve()

	var b strings.Builder
	fmt.Fprintf(&b, "以下の条件で作る数学の問題%d問について、互いに異なる出題テーマを考えてください。\n\n", req.Count)
	writeTarget(&b, r, req.Difficulty)
	if theme := strings.TrimSpace(req.Theme); theme != "" {
		fmt.Fprintf(&b, "全体のテーマ: %s\n", theme)
	}
	writeForbidden(&b, r)

	b.WriteString("\n【出力形式】\n")
	fmt.Fprintf(&b, "- ちょうど%d個のテーマを、JSONの文字列配列だけで出力すること。\n", req.Count)
	if strings.TrimSpace(req.Theme) != "" {
		b.WriteString("- どのテーマも全体のテーマに沿った場面や題材にすること。\n")
	}
	b.WriteString("- 各テーマは30文字以内の短い説明にすること。\n")
	b.WriteString("- 説明文やコードブロック以外の文章は書かないこと。\n")
	b.WriteString(`例: ["移項を使う基本問題", "かっこを含む方程式", "買い物の代金を求める文章題"]` + "\n")

	return b.String()
}

// FollowUpSystemPrompt frames answers to students' questions.
const FollowUpSystemPrompt = `あなたは生徒の質問に答える数学の先生です。問題と解説を踏まえて、わかりやすく丁寧に答えてください。` + notationRule

// BuildFollowUpPrompt returns the prompt for a follow-up question about
// the current problem set.
func BuildFollowUpPrompt(items []problemset.Item, question string) string {
	var b strings.Builder
	b.WriteString("先ほどの問題:\n")
	for _, it := range items {
		fmt.Fprintf(&b, "\n問題%d:\n%s\n\n解説%d:\n%s\n", it.ID, it.Problem, it.ID, it.Solution)
	}
	fmt.Fprintf(&b, "\n生徒からの質問:\n%s\n\nこれに対して、わかりやすく答えてください。%s\n", question, notationRule)
	return b.String()
}

func writeTarget(b *strings.Builder, r resolved, d Difficulty) {
	fmt.Fprintf(b, "対象: %s\n", r.grade)
	fmt.Fprintf(b, "単元: %s\n", r.topic)
	if r.subtopic != "" {
		fmt.Fprintf(b, "小単元: %s\n", r.subtopic)
	}
	fmt.Fprintf(b, "難易度: %s\n", d.Label())
}

func writeForbidden(b *strings.Builder, r resolved) {
	if len(r.forbidden) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%sでは未習のため、次の内容は使わないこと:\n", r.grade)
	for _, f := range r.forbidden {
		fmt.Fprintf(b, "- %s\n", f)
	}
}
