package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"order-timeline-service/internal/client"
	"order-timeline-service/internal/dto"
	"order-timeline-service/internal/model"
	"order-timeline-service/internal/service"
	"order-timeline-service/internal/store"
)

type TimelineController struct {
	Service *service.TimelineService
}

func NewTimelineController(s *service.TimelineService) *TimelineController {
	return &TimelineController{Service: s}
}

// Pulls the caller identity the auth middleware stashed in the context.
func callerFrom(c *gin.Context) (token, userID string, isAdmin bool) {
	return c.GetString("token"), c.GetString("userID"), c.GetBool("isAdmin")
}

// Business errors map to HTTP statuses here; everything else is passed
// through as a generic message for the UI to toast.
func writeError(c *gin.Context, err error) {
	var be *client.BackendError
	switch {
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrUnknownStatus):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "you cannot act on another user's order"})
	case errors.As(err, &be):
		status := http.StatusBadGateway
		if be.StatusCode == http.StatusNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": be.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// GET /orders/:orderId/timeline
func (ctl *TimelineController) GetTimeline(c *gin.Context) {
	token, userID, isAdmin := callerFrom(c)
	orderID := c.Param("orderId")

	o, t, err := ctl.Service.GetTimeline(c.Request.Context(), token, userID, isAdmin, orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTimelineResponse(o, t))
}

// GET /orders/:orderId/transitions
func (ctl *TimelineController) GetTransitions(c *gin.Context) {
	token, userID, isAdmin := callerFrom(c)
	orderID := c.Param("orderId")

	current, next, err := ctl.Service.ValidNext(c.Request.Context(), token, userID, isAdmin, orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransitionsResponse(current, next))
}

// PATCH /orders/:orderId/status
func (ctl *TimelineController) UpdateStatus(c *gin.Context) {
	token, userID, isAdmin := callerFrom(c)
	orderID := c.Param("orderId")

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, ok := model.ParseAny(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + req.Status})
		return
	}

	o, t, err := ctl.Service.Transition(c.Request.Context(), token, userID, isAdmin, orderID, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTimelineResponse(o, t))
}

// PUT /orders/:orderId/products/:productId/rating-draft
func (ctl *TimelineController) SaveRatingDraft(c *gin.Context) {
	var req dto.RatingDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d := store.RatingDraft{Stars: req.Stars, Comment: req.Comment}
	if err := ctl.Service.SaveDraft(c.Request.Context(), c.Param("orderId"), c.Param("productId"), d); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "draft saved"})
}

// GET /orders/:orderId/products/:productId/rating-draft
func (ctl *TimelineController) GetRatingDraft(c *gin.Context) {
	d, ok, err := ctl.Service.GetDraft(c.Request.Context(), c.Param("orderId"), c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no draft"})
		return
	}
	c.JSON(http.StatusOK, d)
}

// DELETE /orders/:orderId/products/:productId/rating-draft
func (ctl *TimelineController) DeleteRatingDraft(c *gin.Context) {
	if err := ctl.Service.DeleteDraft(c.Request.Context(), c.Param("orderId"), c.Param("productId")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "draft deleted"})
}
