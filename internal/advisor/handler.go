package advisor

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pathfinder-backend/internal/shared/apperr"
	"pathfinder-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the advisor service.
type Handler struct {
	Svc *Service
	// GenerateLimit guards the generation route; nil disables it.
	GenerateLimit gin.HandlerFunc
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, generateLimit gin.HandlerFunc) *Handler {
	return &Handler{Svc: svc, GenerateLimit: generateLimit}
}

// RegisterRoutes attaches advisor routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	generate := []gin.HandlerFunc{h.generate}
	if h.GenerateLimit != nil {
		generate = append([]gin.HandlerFunc{h.GenerateLimit}, generate...)
	}

	rg.POST("/advisor/sessions", h.createSession)
	rg.GET("/advisor/sessions/:id", h.getSession)
	rg.PUT("/advisor/sessions/:id/profile", h.updateProfile)
	rg.POST("/advisor/sessions/:id/generate", generate...)
	rg.POST("/advisor/sessions/:id/reset", h.reset)
	rg.POST("/advisor/sessions/:id/roadmaps", h.saveRoadmap)
	rg.GET("/advisor/sessions/:id/roadmaps", h.listRoadmaps)
	rg.POST("/advisor/sessions/:id/mentor-requests", h.mentorRequest)
	rg.GET("/advisor/roadmaps/:roadmapId", h.getRoadmap)
}

func (h *Handler) createSession(c *gin.Context) {
	sess, err := h.Svc.NewSession(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, toSessionResponse(sess.View()))
}

func (h *Handler) getSession(c *gin.Context) {
	sess, ok := h.loadSession(c)
	if !ok {
		return
	}
	respond.OK(c, toSessionResponse(sess.View()))
}

func (h *Handler) updateProfile(c *gin.Context) {
	sess, ok := h.loadSession(c)
	if !ok {
		return
	}
	var req Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if err := h.Svc.UpdateProfile(sess, req); err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toSessionResponse(sess.View()))
}

func (h *Handler) generate(c *gin.Context) {
	sess, ok := h.loadSession(c)
	if !ok {
		return
	}
	if _, err := h.Svc.Generate(c.Request.Context(), sess); err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toSessionResponse(sess.View()))
}

func (h *Handler) reset(c *gin.Context) {
	sess, ok := h.loadSession(c)
	if !ok {
		return
	}
	h.Svc.Reset(sess)
	respond.OK(c, toSessionResponse(sess.View()))
}

func (h *Handler) saveRoadmap(c *gin.Context) {
	sess, ok := h.loadSession(c)
	if !ok {
		return
	}
	saved, err := h.Svc.SaveRoadmap(c.Request.Context(), sess)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, toSavedRoadmapResponse(saved))
}

// listRoadmaps reads by session id alone; saved roadmaps outlive the live session.
func (h *Handler) listRoadmaps(c *gin.Context) {
	saved, err := h.Svc.ListRoadmaps(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]RoadmapSummary, 0, len(saved))
	for _, r := range saved {
		items = append(items, toRoadmapSummary(r))
	}
	respond.OK(c, gin.H{"roadmaps": items})
}

func (h *Handler) getRoadmap(c *gin.Context) {
	saved, err := h.Svc.GetRoadmap(c.Request.Context(), c.Param("roadmapId"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toSavedRoadmapResponse(saved))
}

func (h *Handler) mentorRequest(c *gin.Context) {
	sess, ok := h.loadSession(c)
	if !ok {
		return
	}
	var req MentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	msg, err := h.Svc.RequestMentor(c.Request.Context(), sess, req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Accepted(c, mentorResponse{
		RequestID:  msg.RequestID,
		Kind:       msg.Type,
		Course:     msg.Course,
		EnqueuedAt: msg.EnqueuedAt,
	})
}

func (h *Handler) loadSession(c *gin.Context) (*Session, bool) {
	sess, err := h.Svc.Sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return sess, true
}

func writeError(c *gin.Context, err error) {
	var verr *apperr.ValidationError
	switch {
	case errors.Is(err, context.Canceled):
		respond.Error(c, respond.StatusClientClosedRequest, "request_cancelled", "request cancelled", nil)
	case errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusGatewayTimeout, "timeout", "request timed out", nil)
	case errors.As(err, &verr):
		respond.Error(c, http.StatusBadRequest, "validation_error", verr.Message, gin.H{"field": verr.Field})
	case errors.Is(err, ErrSessionNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "advisor session not found", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "roadmap not found", nil)
	case errors.Is(err, ErrBusy):
		respond.Error(c, http.StatusConflict, "generation_in_progress", err.Error(), nil)
	case errors.Is(err, ErrReset):
		respond.Error(c, http.StatusConflict, "session_reset", err.Error(), nil)
	case errors.Is(err, ErrNotReady):
		respond.Error(c, http.StatusConflict, "not_ready", err.Error(), nil)
	case apperr.IsUpstreamContent(err):
		respond.Error(c, http.StatusBadGateway, "upstream_format", failureMessage(err), nil)
	case apperr.IsTransport(err):
		respond.Error(c, http.StatusBadGateway, "upstream_unavailable", genericFailure, nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "advisor request failed", nil)
	}
}
