package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mathmaster/mathmaster/internal/curriculum"
	"github.com/mathmaster/mathmaster/internal/problemgen"
	"github.com/mathmaster/mathmaster/internal/problemset"
	"github.com/mathmaster/mathmaster/internal/render"
	"github.com/mathmaster/mathmaster/internal/session"
)

type generateForm struct {
	Grade      string `form:"grade" binding:"required"`
	Topic      string `form:"topic" binding:"required"`
	Subtopic   string `form:"subtopic"`
	Difficulty string `form:"difficulty" binding:"required"`
	Count      int    `form:"count" binding:"required,min=1,max=10"`
	Theme      string `form:"theme"`
}

func (f generateForm) request() problemgen.Request {
	grade, ok := curriculum.ParseGrade(f.Grade)
	if !ok {
		grade = curriculum.Grade(f.Grade)
	}
	difficulty, ok := problemgen.ParseDifficulty(f.Difficulty)
	if !ok {
		difficulty = problemgen.Difficulty(f.Difficulty)
	}
	return problemgen.Request{
		Grade:      grade,
		Topic:      f.Topic,
		Subtopic:   f.Subtopic,
		Difficulty: difficulty,
		Count:      f.Count,
		Theme:      strings.TrimSpace(f.Theme),
	}
}

type updateForm struct {
	Field string `form:"field" binding:"required"`
	Text  string `form:"text"`
}

// GET /
func (s *Server) index(c *gin.Context) {
	s.renderIndex(c, http.StatusOK, currentSession(c), "")
}

// POST /generate
func (s *Server) generate(c *gin.Context) {
	sess := currentSession(c)

	var form generateForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderIndex(c, http.StatusBadRequest, sess, "入力内容を確認してください: "+err.Error())
		return
	}
	req := form.request()

	sum, err := sess.Generate(c.Request.Context(), s.deps.Generator, req, nil)
	if errors.Is(err, session.ErrBusy) {
		s.renderIndex(c, http.StatusConflict, sess, "前の問題セットを作成中です。完了までお待ちください。")
		return
	}
	if err != nil {
		s.renderIndex(c, http.StatusBadRequest, sess, err.Error())
		return
	}
	s.recordBatch(c, sum, req)

	if sum.Failed > 0 {
		sess.Notify(fmt.Sprintf("%d問の生成に失敗しました。", sum.Failed))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// POST /items/:id
func (s *Server) updateItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "no such problem")
		return
	}

	var form updateForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "invalid form: %v", err)
		return
	}
	field, err := problemset.ParseField(form.Field)
	if err != nil {
		c.String(http.StatusBadRequest, "%v", err)
		return
	}

	sess := currentSession(c)
	text := strings.ReplaceAll(form.Text, "\r\n", "\n")
	if err := sess.Edit(id, field, text); err != nil {
		if errors.Is(err, problemset.ErrItemNotFound) {
			c.String(http.StatusNotFound, "%v", err)
			return
		}
		c.String(http.StatusBadRequest, "%v", err)
		return
	}

	if wantsJSON(c) {
		for _, it := range sess.Items() {
			if it.ID == id {
				c.JSON(http.StatusOK, it)
				return
			}
		}
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/#item-%d", id))
}

// GET /export/:kind
func (s *Server) export(c *gin.Context) {
	mode, ok := render.ParseMode(c.Param("kind"))
	if !ok {
		c.String(http.StatusNotFound, "unknown document %q", c.Param("kind"))
		return
	}

	art, err := currentSession(c).Export(s.deps.Renderer, mode)
	switch {
	case errors.Is(err, render.ErrNoItems):
		c.HTML(http.StatusConflict, "unavailable.tmpl", gin.H{
			"Message": "まだ問題がありません。先に問題を作成してください。",
		})
		return
	case err != nil:
		s.deps.Log.Error("export failed", "mode", mode.String(), "error", err)
		c.HTML(http.StatusServiceUnavailable, "unavailable.tmpl", gin.H{
			"Message": "PDFを作成できませんでした。問題はそのまま残っています。",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, art.Filename))
	c.Data(http.StatusOK, art.ContentType, art.Data)
}

// POST /ask
func (s *Server) ask(c *gin.Context) {
	sess := currentSession(c)
	_, err := sess.Ask(c.Request.Context(), s.deps.Generator, c.PostForm("question"))
	switch {
	case errors.Is(err, problemgen.ErrNothingToAsk):
		sess.Notify("問題を作成してから質問を入力してください。")
	case err != nil:
		s.deps.Log.Warn("follow-up failed", "session", sess.ID, "error", err)
		sess.Notify("回答を取得できませんでした: " + err.Error())
	}
	c.Redirect(http.StatusSeeOther, "/#ask")
}

// GET /api/items
func (s *Server) apiItems(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Status())
}

type catalogGrade struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Topics []catalogTopic `json:"topics"`
}

type catalogTopic struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Subtopics []catalogEntry `json:"subtopics"`
}

type catalogEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GET /api/catalog
func (s *Server) apiCatalog(c *gin.Context) {
	grades := curriculum.Grades()
	out := make([]catalogGrade, 0, len(grades))
	for _, g := range grades {
		cg := catalogGrade{ID: string(g.ID), Name: g.Name, Topics: []catalogTopic{}}
		for _, t := range g.Topics {
			ct := catalogTopic{ID: t.ID, Name: t.Name, Subtopics: []catalogEntry{}}
			for _, st := range t.Subtopics {
				ct.Subtopics = append(ct.Subtopics, catalogEntry{ID: st.ID, Name: st.Name})
			}
			cg.Topics = append(cg.Topics, ct)
		}
		out = append(out, cg)
	}

	difficulties := make([]catalogEntry, 0, 4)
	for _, d := range problemgen.Difficulties() {
		difficulties = append(difficulties, catalogEntry{ID: string(d), Name: d.Label()})
	}
	c.JSON(http.StatusOK, gin.H{"grades": out, "difficulties": difficulties})
}

func (s *Server) recordBatch(c *gin.Context, sum *problemgen.Summary, req problemgen.Request) {
	if s.deps.Events == nil {
		return
	}
	if err := s.deps.Events.AppendBatchEvent(c.Request.Context(), sum.Event("web", req)); err != nil {
		s.deps.Log.Warn("failed to record batch", "batch", sum.BatchID, "error", err)
	}
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), gin.MIMEJSON)
}
