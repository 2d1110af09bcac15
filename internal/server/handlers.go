package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"counsellor/internal/catalog"
	"counsellor/internal/counsellor"
	"counsellor/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fail maps domain errors to status codes. Unknown errors are 500s.
func (s *Server) fail(c *gin.Context, err error) {
	status, detail := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, counsellor.ErrProfileMissing):
		status, detail = http.StatusNotFound, "Please complete onboarding first"
	case errors.Is(err, store.ErrNotFound):
		status, detail = http.StatusNotFound, "Not found"
	case errors.Is(err, counsellor.ErrNotShortlisted):
		status, detail = http.StatusBadRequest, err.Error()
	case errors.Is(err, counsellor.ErrAlreadyLocked), errors.Is(err, counsellor.ErrShortlistLocked):
		status, detail = http.StatusConflict, err.Error()
	case errors.Is(err, counsellor.ErrNotLocked):
		status, detail = http.StatusNotFound, err.Error()
	default:
		s.logger.Error("handler error",
			zap.String("req", c.GetString(keyRequestID)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func badRequest(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": detail})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

type universityRequest struct {
	UniversityID int64 `json:"university_id" binding:"required,gt=0"`
}

// Onboarding

func (s *Server) getProfile(c *gin.Context) {
	p, err := session(c).GetProfile(c.Request.Context(), owner(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) saveProfile(c *gin.Context) {
	var p store.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err.Error())
		return
	}
	p.UserID = owner(c)

	ctx, sess := c.Request.Context(), session(c)
	if err := sess.UpsertProfile(ctx, &p); err != nil {
		s.fail(c, err)
		return
	}
	if err := counsellor.SyncTasksWithProfile(ctx, sess, &p); err != nil {
		s.fail(c, err)
		return
	}
	saved, err := sess.GetProfile(ctx, p.UserID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (s *Server) dashboardStage(c *gin.Context) {
	ctx, sess, id := c.Request.Context(), session(c), owner(c)

	_, err := sess.GetProfile(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.fail(c, err)
		return
	}
	hasProfile := err == nil

	snap, err := counsellor.Project(ctx, sess, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, counsellor.Dashboard(hasProfile, snap.Stage))
}

// Universities

type universityView struct {
	store.University
	Chance      string `json:"chance"`
	Shortlisted bool   `json:"is_shortlisted"`
	Locked      bool   `json:"is_locked"`
}

func (s *Server) listUniversities(c *gin.Context) {
	ctx, sess, id := c.Request.Context(), session(c), owner(c)

	unis, err := sess.ListUniversities(ctx, strings.TrimSpace(c.Query("country")))
	if err != nil {
		s.fail(c, err)
		return
	}
	profile, err := sess.GetProfile(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.fail(c, err)
		return
	}
	shortlisted, err := idSet(sess.ShortlistedIDs(ctx, id))
	if err != nil {
		s.fail(c, err)
		return
	}
	locked, err := idSet(sess.LockedIDs(ctx, id))
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]universityView, 0, len(unis))
	for _, u := range unis {
		out = append(out, universityView{
			University:  u,
			Chance:      catalog.Chance(u, profile),
			Shortlisted: shortlisted[u.ID],
			Locked:      locked[u.ID],
		})
	}
	c.JSON(http.StatusOK, out)
}

func idSet(ids []int64, err error) (map[int64]bool, error) {
	if err != nil {
		return nil, err
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *Server) toggleShortlist(c *gin.Context) {
	var req universityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	added, err := counsellor.ToggleShortlist(c.Request.Context(), session(c), owner(c), req.UniversityID)
	if err != nil {
		s.fail(c, err)
		return
	}
	msg := "Removed from shortlist"
	if added {
		msg = "Added to shortlist"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "shortlisted": added})
}

func (s *Server) removeShortlist(c *gin.Context) {
	uni, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := counsellor.RemoveShortlist(c.Request.Context(), session(c), owner(c), uni); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from shortlist"})
}

func (s *Server) listShortlisted(c *gin.Context) {
	ctx, sess := c.Request.Context(), session(c)
	ids, err := sess.ShortlistedIDs(ctx, owner(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.writeUniversities(c, sess, ids)
}

func (s *Server) lockUniversity(c *gin.Context) {
	var req universityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := counsellor.ManualLock(c.Request.Context(), session(c), owner(c), req.UniversityID); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "University locked", "university_id": req.UniversityID})
}

func (s *Server) unlockUniversity(c *gin.Context) {
	uni, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := counsellor.Unlock(c.Request.Context(), session(c), owner(c), uni); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "University unlocked"})
}

func (s *Server) listLocked(c *gin.Context) {
	ctx, sess := c.Request.Context(), session(c)
	ids, err := sess.LockedIDs(ctx, owner(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.writeUniversities(c, sess, ids)
}

func (s *Server) writeUniversities(c *gin.Context, sess *store.Session, ids []int64) {
	unis, err := sess.UniversitiesByIDs(c.Request.Context(), ids)
	if err != nil {
		s.fail(c, err)
		return
	}
	if unis == nil {
		unis = []store.University{}
	}
	c.JSON(http.StatusOK, unis)
}

// Todos

type todoRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	UniversityID *int64 `json:"university_id"`
}

type todoPatch struct {
	Completed *bool `json:"completed" binding:"required"`
}

func (s *Server) listTodos(c *gin.Context) {
	todos, err := session(c).ListTodos(c.Request.Context(), owner(c), true)
	if err != nil {
		s.fail(c, err)
		return
	}
	if todos == nil {
		todos = []store.Todo{}
	}
	c.JSON(http.StatusOK, todos)
}

func (s *Server) createTodo(c *gin.Context) {
	var req todoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	todo, err := session(c).CreateTodo(c.Request.Context(), owner(c), store.NewTodo{
		Title:        req.Title,
		Description:  req.Description,
		UniversityID: req.UniversityID,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

func (s *Server) updateTodo(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req todoPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	todo, err := session(c).SetTodoCompleted(c.Request.Context(), owner(c), id, *req.Completed)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// Application documents

type documentPatch struct {
	Completed *bool `json:"is_completed" binding:"required"`
}

func (s *Server) listDocuments(c *gin.Context) {
	uni, ok := pathID(c, "university_id")
	if !ok {
		return
	}
	docs, err := counsellor.EnsureDocuments(c.Request.Context(), session(c), owner(c), uni)
	if errors.Is(err, counsellor.ErrNotLocked) {
		badRequest(c, "University must be locked to view application documents")
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (s *Server) updateDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req documentPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	doc, err := session(c).SetDocumentCompleted(c.Request.Context(), owner(c), id, *req.Completed)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Counsellor chat

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := s.deps.Engine.Respond(c.Request.Context(), session(c), owner(c), req.Message)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
