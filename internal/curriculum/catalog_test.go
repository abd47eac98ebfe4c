package curriculum

import (
	"slices"
	"testing"
)

func TestGrades_Order(t *testing.T) {
	got := Grades()
	want := []Grade{Grade7, Grade8, Grade9, HS1}
	if len(got) != len(want) {
		t.Fatalf("got %d grades, want %d", len(got), len(want))
	}
	for i, g := range got {
		if g.ID != want[i] {
			t.Errorf("grade[%d] = %q, want %q", i, g.ID, want[i])
		}
	}
}

func TestTopics_PerGrade(t *testing.T) {
	tests := []struct {
		grade Grade
		want  []string
	}{
		{Grade7, []string{"正負の数", "文字式", "一次方程式", "比例・反比例", "平面図形(計算のみ)"}},
		{Grade8, []string{"式の計算", "連立方程式", "一次関数", "図形の性質(角度)", "確率"}},
		{Grade9, []string{"多項式・因数分解", "平方根", "二次方程式", "二次関数", "三平方の定理"}},
		{HS1, []string{"数と式", "集合と論証", "二次関数", "図形と計量(三角比)", "データの分析"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.grade), func(t *testing.T) {
			var names []string
			for _, topic := range Topics(tt.grade) {
				names = append(names, topic.Name)
			}
			if !slices.Equal(names, tt.want) {
				t.Errorf("topics = %v, want %v", names, tt.want)
			}
		})
	}
}

func TestTopics_UnknownGrade(t *testing.T) {
	got := Topics("grade12")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSubtopics(t *testing.T) {
	subs := Subtopics(Grade7, "linear-equations")
	if len(subs) != 4 {
		t.Fatalf("got %d sub-topics, want 4", len(subs))
	}
	if subs[0].Name != "基本の解き方" {
		t.Errorf("first sub-topic = %q", subs[0].Name)
	}

	// Lookup by display name works too.
	if got := Subtopics(Grade7, "一次方程式"); len(got) != 4 {
		t.Errorf("lookup by name returned %d sub-topics", len(got))
	}

	if got := Subtopics(HS1, "sets-logic"); len(got) != 0 {
		t.Errorf("expected no sub-topics for sets-logic, got %v", got)
	}
	if got := Subtopics(Grade7, "no-such-topic"); got == nil || len(got) != 0 {
		t.Errorf("expected empty slice for unknown topic, got %#v", got)
	}
	if got := Subtopics("nope", "linear-equations"); len(got) != 0 {
		t.Errorf("expected empty slice for unknown grade, got %v", got)
	}
}

func TestTopicScopedToGrade(t *testing.T) {
	if _, ok := LookupTopic(Grade7, "pythagorean-theorem"); ok {
		t.Error("pythagorean-theorem must not be valid for grade7")
	}
	if _, ok := LookupTopic(Grade9, "pythagorean-theorem"); !ok {
		t.Error("pythagorean-theorem must be valid for grade9")
	}
	if _, ok := LookupSubtopic(Grade7, "linear-equations", "elimination"); ok {
		t.Error("elimination belongs to simultaneous-equations, not linear-equations")
	}
}

func TestForbidden_Grade7(t *testing.T) {
	forbidden := Forbidden(Grade7)
	for _, want := range []string{"三平方の定理", "相似", "平方根", "円周角の定理"} {
		if !slices.Contains(forbidden, want) {
			t.Errorf("grade7 forbidden list missing %q", want)
		}
	}
}

func TestCatalogImmutable(t *testing.T) {
	topics := Topics(Grade7)
	topics[0].Name = "changed"
	topics[0].Subtopics[0].Name = "changed"

	again := Topics(Grade7)
	if again[0].Name == "changed" || again[0].Subtopics[0].Name == "changed" {
		t.Fatal("catalog mutated through returned slice")
	}

	f := Forbidden(Grade7)
	f[0] = "changed"
	if Forbidden(Grade7)[0] == "changed" {
		t.Fatal("forbidden list mutated through returned slice")
	}
}

func TestParseGrade(t *testing.T) {
	if g, ok := ParseGrade("中学2年生"); !ok || g != Grade8 {
		t.Errorf("ParseGrade(中学2年生) = %q, %v", g, ok)
	}
	if g, ok := ParseGrade("hs1"); !ok || g != HS1 {
		t.Errorf("ParseGrade(hs1) = %q, %v", g, ok)
	}
	if _, ok := ParseGrade("grade1"); ok {
		t.Error("expected unknown grade")
	}
	if Grade9.DisplayName() != "中学3年生" {
		t.Errorf("DisplayName = %q", Grade9.DisplayName())
	}
}

func TestParseCatalog_RejectsDuplicates(t *testing.T) {
	data := []byte(`
grades:
  - id: g
    name: G
    topics:
      - { id: a, name: A }
      - { id: a, name: B }
`)
	if _, err := parseCatalog(data); err == nil {
		t.Fatal("expected duplicate topic error")
	}
}

func TestLookupTopic_LooseID(t *testing.T) {
	for _, in := range []string{"linear-equations", "linear equations", "Linear_Equations", "一次方程式"} {
		topic, ok := LookupTopic(Grade7, in)
		if !ok || topic.ID != "linear-equations" {
			t.Errorf("LookupTopic(%q) = %v, %v", in, topic.ID, ok)
		}
	}
	if _, ok := LookupSubtopic(Grade7, "linear equations", "basic solving"); !ok {
		t.Error("expected loose sub-topic lookup to match")
	}
}
