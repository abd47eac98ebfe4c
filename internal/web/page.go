package web

import (
	"html/template"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mathmaster/mathmaster/internal/curriculum"
	"github.com/mathmaster/mathmaster/internal/problemgen"
	"github.com/mathmaster/mathmaster/internal/problemset"
	"github.com/mathmaster/mathmaster/internal/session"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	session.View
	Error        string
	Grades       []option
	Topics       []option
	Subtopics    []option
	Difficulties []option
	Counts       []option
	Theme        string
}

var templateFuncs = template.FuncMap{
	"statusLabel": func(s problemset.Status) string {
		switch s {
		case problemset.StatusMalformed:
			return "形式エラー"
		case problemset.StatusFailed:
			return "生成失敗"
		}
		return ""
	},
}

func (s *Server) renderIndex(c *gin.Context, status int, sess *session.Session, errMsg string) {
	view := sess.Snapshot()

	req := problemgen.Request{
		Grade:      curriculum.Grade7,
		Difficulty: problemgen.DifficultyStandard,
		Count:      3,
	}
	if view.Request != nil {
		req = *view.Request
	}

	data := pageData{View: view, Error: errMsg, Theme: req.Theme}
	for _, g := range curriculum.Grades() {
		data.Grades = append(data.Grades, option{string(g.ID), g.Name, g.ID == req.Grade})
	}
	topics := curriculum.Topics(req.Grade)
	if req.Topic == "" && len(topics) > 0 {
		req.Topic = topics[0].ID
	}
	selected, _ := curriculum.LookupTopic(req.Grade, req.Topic)
	for _, t := range topics {
		data.Topics = append(data.Topics, option{t.ID, t.Name, t.ID == selected.ID})
	}
	for _, st := range selected.Subtopics {
		data.Subtopics = append(data.Subtopics, option{st.ID, st.Name, st.ID == req.Subtopic})
	}
	for _, d := range problemgen.Difficulties() {
		data.Difficulties = append(data.Difficulties, option{string(d), d.Label(), d == req.Difficulty})
	}
	for n := 1; n <= problemgen.MaxCount; n++ {
		v := strconv.Itoa(n)
		data.Counts = append(data.Counts, option{v, v, n == req.Count})
	}

	c.HTML(status, "index.tmpl", data)
}
