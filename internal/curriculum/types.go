package curriculum

// Grade identifies a school year covered by the catalog.
type Grade string

const (
	Grade7 Grade = "grade7" // 中学1年生
	Grade8 Grade = "grade8" // 中学2年生
	Grade9 Grade = "grade9" // 中学3年生
	HS1    Grade = "hs1"    // 高校数学I・A
)

// ParseGrade resolves a grade ID or its display name.
func ParseGrade(s string) (Grade, bool) {
	for _, g := range c.grades {
		if string(g.ID) == s || g.Name == s {
			return g.ID, true
		}
	}
	return "", false
}

// DisplayName returns the Japanese name of the grade, or the raw ID when
// the grade is unknown.
func (g Grade) DisplayName() string {
	if info, ok := c.byGrade[g]; ok {
		return info.Name
	}
	return string(g)
}

// GradeInfo is one grade of the taxonomy.
type GradeInfo struct {
	ID        Grade    `yaml:"id"`
	Name      string   `yaml:"name"`
	Forbidden []string `yaml:"forbidden"`
	Topics    []Topic  `yaml:"topics"`
}

// Topic is a unit within a grade.
type Topic struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Subtopics []Subtopic `yaml:"subtopics"`
}

// Subtopic narrows a topic.
type Subtopic struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Node is a position in the taxonomy. Subtopic is empty when the request
// is not restricted to one.
type Node struct {
	Grade    Grade
	Topic    string
	Subtopic string
}

func (g GradeInfo) clone() GradeInfo {
	out := g
	out.Forbidden = append([]string{}, g.Forbidden...)
	out.Topics = make([]Topic, len(g.Topics))
	for i, t := range g.Topics {
		out.Topics[i] = t.clone()
	}
	return out
}

func (t Topic) clone() Topic {
	out := t
	out.Subtopics = append([]Subtopic{}, t.Subtopics...)
	return out
}
