package rabbit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"order-timeline-service/internal/model"
	"order-timeline-service/internal/service"
)

// StatusUpdateConsumer merges backend-pushed status changes into the
// stored timelines, so a user's next page load sees history the backend
// recorded while they were away.
type StatusUpdateConsumer struct {
	Service *service.TimelineService
	Log     *zap.Logger
}

func NewStatusUpdateConsumer(s *service.TimelineService, log *zap.Logger) *StatusUpdateConsumer {
	return &StatusUpdateConsumer{Service: s, Log: log}
}

// StatusUpdatedMessage is the envelope published by the orders backend.
// History may be absent; the current status alone is enough to merge.
type StatusUpdatedMessage struct {
	CorrelationID string `json:"correlation_id"`
	Exchange      string `json:"exchange"`
	RoutingKey    string `json:"routing_key"`
	Message       struct {
		OrderID   string         `json:"orderId"`
		UserID    string         `json:"userId"`
		Status    string         `json:"status"`
		UpdatedAt time.Time      `json:"updatedAt"`
		History   model.Timeline `json:"history"`
	} `json:"message"`
}

func (c *StatusUpdateConsumer) Handle(msg []byte) error {
	var event StatusUpdatedMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		c.Log.Warn("dropping malformed status update", zap.Error(err))
		return err
	}

	m := event.Message
	if m.OrderID == "" || m.UserID == "" {
		c.Log.Warn("dropping status update without order/user id",
			zap.String("correlationId", event.CorrelationID))
		return nil
	}

	entries := m.History
	if s, ok := model.ParseAny(m.Status); ok {
		at := m.UpdatedAt
		if at.IsZero() {
			at = time.Now()
		}
		entries = append(entries, model.StatusEntry{Status: s, UpdatedAt: at})
	}

	if _, err := c.Service.ApplyRemoteUpdate(context.Background(), m.UserID, m.OrderID, entries); err != nil {
		c.Log.Error("applying remote status update",
			zap.String("orderId", m.OrderID), zap.Error(err))
		return err
	}

	c.Log.Info("merged remote status update",
		zap.String("orderId", m.OrderID), zap.String("status", m.Status))
	return nil
}
