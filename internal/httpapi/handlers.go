package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/drillz/internal/engine"
)

const defaultLeaderboardLimit = 10

func intParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid "+name))
		return 0, false
	}
	return id, true
}

func (s *Server) listCourses(c *gin.Context) {
	courses, err := s.eng.ListCourses(c.Request.Context())
	if err != nil {
		s.respondEngineError(c, err)
		return
	}
	respondOK(c, gin.H{"courses": courses})
}

func (s *Server) me(c *gin.Context) {
	out := gin.H{"userId": userID(c)}
	courseID, err := s.eng.ActiveCourse(c.Request.Context(), userID(c))
	switch {
	case errors.Is(err, engine.ErrNoCourse):
	case err != nil:
		s.respondEngineError(c, err)
		return
	default:
		out["activeCourseId"] = courseID
	}
	respondOK(c, out)
}

func (s *Server) selectCourse(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	ov, err := s.eng.SelectCourse(c.Request.Context(), userID(c), id)
	if err != nil {
		s.respondEngineError(c, err)
		return
	}
	respondOK(c, ov)
}

func (s *Server) overview(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	ov, err := s.eng.Overview(c.Request.Context(), userID(c), id)
	if err != nil {
		s.respondEngineError(c, err)
		return
	}
	respondOK(c, ov)
}

func (s *Server) drillList(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	units, err := s.eng.DrillList(c.Request.Context(), userID(c), id)
	if err != nil {
		s.respondEngineError(c, err)
		return
	}
	respondOK(c, gin.H{"units": units})
}

func (s *Server) refill(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	p, err := s.eng.Refill(c.Request.Context(), userID(c), id)
	if err != nil {
		s.respondEngineError(c, err)
		return
	}
	respondOK(c, p)
}

func (s *Server) reset(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := s.eng.Reset(c.Request.Context(), userID(c), id); err != nil {
		s.respondEngineError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) leaderboard(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	limit := defaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			respondError(c, http.StatusBadRequest, "bad_request", errors.New("limit must be between 1 and 100"))
			return
		}
		limit = n
	}
	st, err := s.eng.Leaderboard(c.Request.Context(), userID(c), id, limit)
	if err != nil {
		s.respondEngineError(c, err)
		return
	}
	respondOK(c, st)
}

func (s *Server) stats(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	st, err := s.eng.Stats(c.Request.Context(), userID(c), id)
	if err != nil {
		s.respondEngineError(c, err)
		return
	}
	respondOK(c, st)
}

func (s *Server) startDrill(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	play, err := s.eng.StartDrill(c.Request.Context(), userID(c), id)
	if err != nil {
		s.respondEngineError(c, err)
		return
	}
	status := http.StatusCreated
	if play.Resumed || play.Empty {
		status = http.StatusOK
	}
	c.JSON(status, play)
}

type answerRequest struct {
	QuestionID int    `json:"questionId" binding:"required"`
	OptionID   *int   `json:"optionId"`
	Text       string `json:"text"`
}

func (s *Server) submitAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.OptionID == nil && req.Text == "" {
		respondError(c, http.StatusBadRequest, "bad_request", errors.New("optionId or text is required"))
		return
	}
	res, err := s.eng.SubmitAnswer(c.Request.Context(), userID(c), engine.Submission{
		AttemptID:  c.Param("id"),
		QuestionID: req.QuestionID,
		OptionID:   req.OptionID,
		Text:       req.Text,
	})
	if err != nil {
		s.respondEngineError(c, err)
		return
	}
	respondOK(c, res)
}

// clockRequest carries the client-measured time spent in the attempt.
type clockRequest struct {
	ElapsedMs int64 `json:"elapsedMs"`
}

func bindElapsed(c *gin.Context) (time.Duration, bool) {
	var req clockRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "bad_request", err)
			return 0, false
		}
	}
	if req.ElapsedMs < 0 {
		respondError(c, http.StatusBadRequest, "bad_request", errors.New("elapsedMs must not be negative"))
		return 0, false
	}
	return time.Duration(req.ElapsedMs) * time.Millisecond, true
}

func (s *Server) advance(c *gin.Context) {
	elapsed, ok := bindElapsed(c)
	if !ok {
		return
	}
	res, err := s.eng.Advance(c.Request.Context(), userID(c), c.Param("id"), elapsed)
	if err != nil {
		s.respondEngineError(c, err)
		return
	}
	respondOK(c, res)
}

func (s *Server) expire(c *gin.Context) {
	elapsed, ok := bindElapsed(c)
	if !ok {
		return
	}
	sum, err := s.eng.Expire(c.Request.Context(), userID(c), c.Param("id"), elapsed)
	if err != nil {
		s.respondEngineError(c, err)
		return
	}
	respondOK(c, sum)
}

func (s *Server) abandon(c *gin.Context) {
	if err := s.eng.Abandon(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		s.respondEngineError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
