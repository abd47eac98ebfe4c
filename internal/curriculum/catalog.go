package curriculum

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// document mirrors the layout of catalog.yaml.
type document struct {
	Grades []GradeInfo `yaml:"grades"`
}

// catalog holds the taxonomy with precomputed indices.
type catalog struct {
	grades  []GradeInfo
	byGrade map[Grade]*GradeInfo
}

// c is the package-level catalog singleton, built by init().
var c *catalog

func init() {
	cat, err := parseCatalog(catalogYAML)
	if err != nil {
		panic(fmt.Sprintf("curriculum: %v", err))
	}
	c = cat
}

// parseCatalog decodes a catalog document and checks that IDs are unique
// within their parent.
func parseCatalog(data []byte) (*catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	cat := &catalog{
		grades:  doc.Grades,
		byGrade: make(map[Grade]*GradeInfo, len(doc.Grades)),
	}
	for i := range cat.grades {
		g := &cat.grades[i]
		if _, dup := cat.byGrade[g.ID]; dup {
			return nil, fmt.Errorf("duplicate grade %q", g.ID)
		}
		cat.byGrade[g.ID] = g

		seen := make(map[string]bool, len(g.Topics))
		for _, t := range g.Topics {
			if t.ID == "" || t.Name == "" {
				return nil, fmt.Errorf("grade %q: topic with empty id or name", g.ID)
			}
			if seen[t.ID] {
				return nil, fmt.Errorf("grade %q: duplicate topic %q", g.ID, t.ID)
			}
			seen[t.ID] = true

			subSeen := make(map[string]bool, len(t.Subtopics))
			for _, s := range t.Subtopics {
				if subSeen[s.ID] {
					return nil, fmt.Errorf("topic %q: duplicate sub-topic %q", t.ID, s.ID)
				}
				subSeen[s.ID] = true
			}
		}
	}
	return cat, nil
}

// Grades returns every grade in display order.
func Grades() []GradeInfo {
	out := make([]GradeInfo, len(c.grades))
	for i, g := range c.grades {
		out[i] = g.clone()
	}
	return out
}

// GetGrade returns the grade with the given ID.
func GetGrade(id Grade) (GradeInfo, bool) {
	g, ok := c.byGrade[id]
	if !ok {
		return GradeInfo{}, false
	}
	return g.clone(), true
}

// Topics returns the ordered topics valid for grade. Unknown grades yield
// an empty slice.
func Topics(grade Grade) []Topic {
	g, ok := c.byGrade[grade]
	if !ok {
		return []Topic{}
	}
	out := make([]Topic, len(g.Topics))
	for i, t := range g.Topics {
		out[i] = t.clone()
	}
	return out
}

// Subtopics returns the ordered sub-topics of topic within grade. An empty
// slice means no sub-topic restriction (or an unknown grade/topic).
func Subtopics(grade Grade, topic string) []Subtopic {
	t, ok := LookupTopic(grade, topic)
	if !ok {
		return []Subtopic{}
	}
	return t.Subtopics
}

// LookupTopic finds a topic of grade by ID or display name.
func LookupTopic(grade Grade, topic string) (Topic, bool) {
	g, ok := c.byGrade[grade]
	if !ok {
		return Topic{}, false
	}
	key := normalizeID(topic)
	for _, t := range g.Topics {
		if t.ID == key || t.Name == topic {
			return t.clone(), true
		}
	}
	return Topic{}, false
}

// LookupSubtopic finds a sub-topic by ID or display name.
func LookupSubtopic(grade Grade, topic, subtopic string) (Subtopic, bool) {
	t, ok := LookupTopic(grade, topic)
	if !ok {
		return Subtopic{}, false
	}
	key := normalizeID(subtopic)
	for _, s := range t.Subtopics {
		if s.ID == key || s.Name == subtopic {
			return s, true
		}
	}
	return Subtopic{}, false
}

// normalizeID lets "Linear equations" and "linear_equations" match the
// ID "linear-equations".
func normalizeID(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(s)
}

// Forbidden returns the prior-knowledge items problems for grade must not
// rely on.
func Forbidden(grade Grade) []string {
	g, ok := c.byGrade[grade]
	if !ok {
		return []string{}
	}
	return append([]string{}, g.Forbidden...)
}
