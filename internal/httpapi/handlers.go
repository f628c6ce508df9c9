package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/pathwise/internal/auth"
	"github.com/abhisek/pathwise/internal/pathgen"
	"github.com/abhisek/pathwise/internal/store"
)

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	DisplayName string `json:"displayName"`
}

type registerResponse struct {
	User  auth.User `json:"user"`
	Token string    `json:"token"`
}

type goalRequest struct {
	Goal string `json:"goal" binding:"required"`
}

type roadmapRequest struct {
	Goal    string           `json:"goal" binding:"required"`
	Answers []pathgen.Answer `json:"answers"`
}

type completionRequest struct {
	Score     *int `json:"score" binding:"required"`
	TimeSpent *int `json:"timeSpent" binding:"required"`
}

type roadmapView struct {
	ID        string          `json:"id"`
	Goal      string          `json:"goal"`
	Answers   json.RawMessage `json:"answers"`
	Weeks     json.RawMessage `json:"weeks"`
	CreatedAt time.Time       `json:"createdAt"`
}

func viewRoadmap(r *store.Roadmap) roadmapView {
	return roadmapView{ID: r.ID, Goal: r.Goal, Answers: r.Answers, Weeks: r.Weeks, CreatedAt: r.CreatedAt}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abort(c, http.StatusBadRequest, "invalid_input", "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) isAdminEmail(email string) bool {
	email = strings.TrimSpace(email)
	for _, e := range s.opts.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := s.svc.Register(c.Request.Context(), req.Email, req.DisplayName, s.isAdminEmail(req.Email))
	if err != nil {
		s.writeError(c, err)
		return
	}

	token, err := s.issuer.Issue(p.ID, p.IsAdmin)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, registerResponse{
		User:  auth.User{ID: p.ID, Email: p.Email, DisplayName: p.DisplayName, IsAdmin: p.IsAdmin},
		Token: token,
	})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) questions(c *gin.Context) {
	var req goalRequest
	if !bindJSON(c, &req) {
		return
	}
	qs, err := s.svc.StartOnboarding(c.Request.Context(), currentUser(c).ID, req.Goal)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, qs)
}

func (s *Server) createRoadmap(c *gin.Context) {
	var req roadmapRequest
	if !bindJSON(c, &req) {
		return
	}
	rm, err := s.svc.CreateRoadmap(c.Request.Context(), currentUser(c).ID, req.Goal, req.Answers)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewRoadmap(rm))
}

func (s *Server) listRoadmaps(c *gin.Context) {
	rows, err := s.svc.ListRoadmaps(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]roadmapView, len(rows))
	for i := range rows {
		out[i] = viewRoadmap(&rows[i])
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getRoadmap(c *gin.Context) {
	rm, err := s.svc.Roadmap(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewRoadmap(rm))
}

func (s *Server) deleteRoadmap(c *gin.Context) {
	if err := s.svc.DeleteRoadmap(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) progress(c *gin.Context) {
	p, err := s.svc.Progress(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) lessonContent(c *gin.Context) {
	lc, err := s.svc.LessonContent(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lc)
}

func (s *Server) completeLesson(c *gin.Context) {
	var req completionRequest
	if !bindJSON(c, &req) {
		return
	}
	snap, err := s.svc.CompleteLesson(c.Request.Context(), currentUser(c).ID, c.Param("id"), *req.Score, *req.TimeSpent)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) adminOverview(c *gin.Context) {
	out, err := s.svc.AdminOverview(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
