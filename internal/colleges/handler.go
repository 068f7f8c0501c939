package colleges

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pathfinder-backend/internal/shared/apperr"
	"pathfinder-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the search controller.
type Handler struct {
	Ctrl *Controller
}

// NewHandler constructs a Handler.
func NewHandler(ctrl *Controller) *Handler {
	return &Handler{Ctrl: ctrl}
}

// RegisterRoutes attaches college routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/colleges/states", h.states)
	rg.GET("/colleges/states/:state/districts", h.districts)
	rg.POST("/colleges/sessions", h.createSession)
	rg.GET("/colleges/sessions/:id", h.getSession)
	rg.PUT("/colleges/sessions/:id/state", h.selectState)
	rg.POST("/colleges/sessions/:id/search", h.search)
	rg.POST("/colleges/sessions/:id/page", h.changePage)
	rg.POST("/colleges/sessions/:id/locate", h.locate)
}

func (h *Handler) states(c *gin.Context) {
	states, degraded := h.Ctrl.ResolveStates(c.Request.Context())
	respond.OK(c, gin.H{"states": states, "degraded": degraded})
}

func (h *Handler) districts(c *gin.Context) {
	state := strings.TrimSpace(c.Param("state"))
	if state == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "state is required", nil)
		return
	}
	districts, degraded := h.Ctrl.ResolveDistricts(c.Request.Context(), state)
	respond.OK(c, gin.H{"state": state, "districts": districts, "degraded": degraded})
}

func (h *Handler) createSession(c *gin.Context) {
	sess, err := h.Ctrl.NewSession(c.Request.Context())
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

func (h *Handler) selectState(c *gin.Context) {
	sess, ok := h.loadSession(c)
	if !ok {
		return
	}
	var req selectStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if err := h.Ctrl.SelectState(c.Request.Context(), sess, req.State); err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toSessionResponse(sess.View()))
}

func (h *Handler) search(c *gin.Context) {
	sess, ok := h.loadSession(c)
	if !ok {
		return
	}
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	_, err := h.Ctrl.Search(c.Request.Context(), sess, SearchRequest{
		State: req.State,
		City:  req.City,
		Query: req.Query,
		Page:  req.Page,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toSessionResponse(sess.View()))
}

func (h *Handler) changePage(c *gin.Context) {
	sess, ok := h.loadSession(c)
	if !ok {
		return
	}
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if _, _, err := h.Ctrl.ChangePage(c.Request.Context(), sess, req.Page); err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toSessionResponse(sess.View()))
}

func (h *Handler) locate(c *gin.Context) {
	sess, ok := h.loadSession(c)
	if !ok {
		return
	}
	var fix LocationFix
	if err := c.ShouldBindJSON(&fix); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	res, err := h.Ctrl.UseCurrentLocation(c.Request.Context(), sess, fix)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, locateResponse{
		State:   res.Locality.State,
		City:    res.Locality.City,
		Notice:  res.Notice,
		Session: toSessionResponse(sess.View()),
	})
}

func (h *Handler) loadSession(c *gin.Context) (*Session, bool) {
	sess, err := h.Ctrl.Sessions.Get(c.Request.Context(), c.Param("id"))
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
		msg := verr.Message
		if verr.Field == "state,city" {
			msg = validationMessage
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", msg, gin.H{"field": verr.Field})
	case errors.Is(err, ErrSessionNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "search session not found", nil)
	case errors.Is(err, ErrSuperseded):
		respond.Error(c, http.StatusConflict, "superseded", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "search failed", nil)
	}
}
