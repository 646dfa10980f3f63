package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"order-timeline-service/internal/model"
	"order-timeline-service/internal/store"
	"order-timeline-service/internal/timeline"
)

// OrdersBackend is the slice of the orders client the service needs;
// tests swap in a fake.
type OrdersBackend interface {
	GetOrder(ctx context.Context, orderID, token string) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.Status, token string) (*model.Order, error)
}

// Business errors consumed by the controller.
var (
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownStatus     = errors.New("unknown order status")
)

// TimelineService orchestrates status transitions: it validates the
// requested move against the transition table, asks the orders backend
// to persist it, and only then rewrites the stored timeline. A rejected
// or failed backend call therefore never corrupts stored history.
type TimelineService struct {
	orders    OrdersBackend
	timelines *store.TimelineStore
	drafts    *store.DraftStore
	log       *zap.Logger
	now       func() time.Time
}

func NewTimelineService(orders OrdersBackend, timelines *store.TimelineStore, drafts *store.DraftStore, log *zap.Logger) *TimelineService {
	return &TimelineService{
		orders:    orders,
		timelines: timelines,
		drafts:    drafts,
		log:       log,
		now:       time.Now,
	}
}

// loadStored treats store trouble as an empty history: the reconstructor
// resynthesizes and the next successful write repairs the record.
func (s *TimelineService) loadStored(ctx context.Context, userID, orderID string) model.Timeline {
	stored, ok, err := s.timelines.Load(ctx, userID, orderID)
	if err != nil {
		s.log.Warn("timeline load failed, treating as absent",
			zap.String("orderId", orderID), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	return stored
}

func (s *TimelineService) persist(ctx context.Context, userID, orderID string, t model.Timeline) {
	if err := s.timelines.Save(ctx, userID, orderID, t); err != nil {
		// Persistence of the rendered history is best effort; the next
		// read rebuilds it from the order if this write is lost.
		s.log.Warn("timeline save failed",
			zap.String("orderId", orderID), zap.Error(err))
	}
}

func checkAccess(o *model.Order, userID string, isAdmin bool) error {
	if !isAdmin && o.UserID != userID {
		return ErrForbidden
	}
	return nil
}

// GetTimeline fetches the order, reconstructs its timeline from stored
// history, merges any history the backend itself supplied, persists the
// result and returns it alongside the order.
func (s *TimelineService) GetTimeline(ctx context.Context, token, userID string, isAdmin bool, orderID string) (*model.Order, model.Timeline, error) {
	o, err := s.orders.GetOrder(ctx, orderID, token)
	if err != nil {
		return nil, nil, err
	}
	if err := checkAccess(o, userID, isAdmin); err != nil {
		return nil, nil, err
	}

	stored := s.loadStored(ctx, o.UserID, orderID)
	result, changed := timeline.Reconstruct(o, stored)
	if len(o.StatusUpdates) > 0 {
		result = timeline.Merge(result, o.StatusUpdates)
		changed = true
	}
	if changed {
		s.persist(ctx, o.UserID, orderID, result)
	}
	return o, result, nil
}

// ValidNext returns the order's current status and the statuses it may
// move to, for the UI to enable or disable its actions.
func (s *TimelineService) ValidNext(ctx context.Context, token, userID string, isAdmin bool, orderID string) (model.Status, []model.Status, error) {
	o, err := s.orders.GetOrder(ctx, orderID, token)
	if err != nil {
		return "", nil, err
	}
	if err := checkAccess(o, userID, isAdmin); err != nil {
		return "", nil, err
	}
	return o.Status, model.ValidNextStatuses(o.Status), nil
}

// Transition moves the order to newStatus. An invalid move fails before
// any status-changing call reaches the backend. On success the stored
// timeline is rewritten via the synthesis rules and returned.
func (s *TimelineService) Transition(ctx context.Context, token, userID string, isAdmin bool, orderID string, newStatus model.Status) (*model.Order, model.Timeline, error) {
	if !newStatus.Known() {
		return nil, nil, ErrUnknownStatus
	}

	o, err := s.orders.GetOrder(ctx, orderID, token)
	if err != nil {
		return nil, nil, err
	}
	if err := checkAccess(o, userID, isAdmin); err != nil {
		return nil, nil, err
	}
	if !model.CanTransition(o.Status, newStatus) {
		return nil, nil, ErrInvalidTransition
	}

	echo, err := s.orders.UpdateStatus(ctx, orderID, newStatus, token)
	if err != nil {
		return nil, nil, err
	}
	if echo != nil && echo.ID != "" {
		o = echo
	}
	o.Status = newStatus
	if echo == nil || echo.UpdatedAt.IsZero() {
		o.UpdatedAt = s.now()
	}

	stored := s.loadStored(ctx, o.UserID, orderID)
	updated := timeline.ApplyTransition(o, stored)
	s.persist(ctx, o.UserID, orderID, updated)
	return o, updated, nil
}

// ApplyRemoteUpdate merges backend-pushed history into the stored
// timeline without touching the network. Used by the event consumer.
func (s *TimelineService) ApplyRemoteUpdate(ctx context.Context, userID, orderID string, entries model.Timeline) (model.Timeline, error) {
	entries = entries.Clone().Compact()
	if len(entries) == 0 {
		stored := s.loadStored(ctx, userID, orderID)
		return stored, nil
	}
	stored := s.loadStored(ctx, userID, orderID)
	merged := timeline.Merge(stored, entries)
	if err := s.timelines.Save(ctx, userID, orderID, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Rating draft passthroughs. Drafts share the KV surface but are
// otherwise unrelated to timelines.

func (s *TimelineService) SaveDraft(ctx context.Context, orderID, productID string, d store.RatingDraft) error {
	return s.drafts.Save(ctx, orderID, productID, d)
}

func (s *TimelineService) GetDraft(ctx context.Context, orderID, productID string) (store.RatingDraft, bool, error) {
	return s.drafts.Load(ctx, orderID, productID)
}

func (s *TimelineService) DeleteDraft(ctx context.Context, orderID, productID string) error {
	return s.drafts.Delete(ctx, orderID, productID)
}
