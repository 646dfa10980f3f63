// dto.go
package dto

import (
	"time"

	"order-timeline-service/internal/model"
)

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type RatingDraftRequest struct {
	Stars   int    `json:"stars" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// StatusEntryDTO is one timeline row as the UI renders it: the display
// label, the stable code, and the display category.
type StatusEntryDTO struct {
	Status    string    `json:"status"`
	Code      string    `json:"code"`
	Category  string    `json:"category"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type TimelineResponse struct {
	OrderID  string           `json:"orderId"`
	UserID   string           `json:"userId"`
	Status   string           `json:"status"`
	Timeline []StatusEntryDTO `json:"timeline"`
}

type TransitionsResponse struct {
	Status            string   `json:"status"`
	ValidNextStatuses []string `json:"validNextStatuses"`
}

func NewTimelineResponse(o *model.Order, t model.Timeline) TimelineResponse {
	entries := make([]StatusEntryDTO, 0, len(t))
	for _, e := range t {
		entries = append(entries, StatusEntryDTO{
			Status:    e.Status.Label(),
			Code:      e.Status.String(),
			Category:  string(model.CategoryOf(e.Status)),
			UpdatedAt: e.UpdatedAt,
		})
	}
	return TimelineResponse{
		OrderID:  o.ID,
		UserID:   o.UserID,
		Status:   o.Status.Label(),
		Timeline: entries,
	}
}

func NewTransitionsResponse(current model.Status, next []model.Status) TransitionsResponse {
	labels := make([]string, 0, len(next))
	for _, s := range next {
		labels = append(labels, s.Label())
	}
	return TransitionsResponse{
		Status:            current.Label(),
		ValidNextStatuses: labels,
	}
}
