package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"order-timeline-service/internal/client"
	"order-timeline-service/internal/model"
	"order-timeline-service/internal/store"
)

var (
	createdAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	updatedAt = time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	nowAt     = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
)

// fakeBackend stands in for the orders service and counts calls, so
// tests can assert that invalid transitions never reach the network.
type fakeBackend struct {
	order       *model.Order
	echo        *model.Order
	getErr      error
	updateErr   error
	getCalls    int
	updateCalls int
}

func (f *fakeBackend) GetOrder(_ context.Context, _, _ string) (*model.Order, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	o := *f.order
	return &o, nil
}

func (f *fakeBackend) UpdateStatus(_ context.Context, _ string, _ model.Status, _ string) (*model.Order, error) {
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.echo, nil
}

func testOrder(status model.Status) *model.Order {
	return &model.Order{
		ID:        "o1",
		UserID:    "u1",
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

func newTestService(backend *fakeBackend) (*TimelineService, *store.TimelineStore) {
	kv := store.NewMemoryKV()
	timelines := store.NewTimelineStore(kv)
	drafts := store.NewDraftStore(kv)
	svc := NewTimelineService(backend, timelines, drafts, zap.NewNop())
	svc.now = func() time.Time { return nowAt }
	return svc, timelines
}

func TestTransitionInvalidMoveMakesNoStatusCall(t *testing.T) {
	backend := &fakeBackend{order: testOrder(model.StatusCompleted)}
	svc, timelines := newTestService(backend)

	_, _, err := svc.Transition(context.Background(), "tok", "u1", false, "o1", model.StatusShipping)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if backend.updateCalls != 0 {
		t.Fatalf("status-changing calls = %d, want 0", backend.updateCalls)
	}
	if _, ok, _ := timelines.Load(context.Background(), "u1", "o1"); ok {
		t.Fatal("timeline must stay untouched after an invalid transition")
	}
}

func TestTransitionUnknownStatusRejectedBeforeAnyCall(t *testing.T) {
	backend := &fakeBackend{order: testOrder(model.StatusProcessing)}
	svc, _ := newTestService(backend)

	_, _, err := svc.Transition(context.Background(), "tok", "u1", false, "o1", model.Status("bogus"))
	if !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("err = %v, want ErrUnknownStatus", err)
	}
	if backend.getCalls != 0 || backend.updateCalls != 0 {
		t.Fatalf("backend calls = %d/%d, want none", backend.getCalls, backend.updateCalls)
	}
}

func TestTransitionForbiddenForOtherUsersOrder(t *testing.T) {
	backend := &fakeBackend{order: testOrder(model.StatusProcessing)}
	svc, _ := newTestService(backend)

	_, _, err := svc.Transition(context.Background(), "tok", "u2", false, "o1", model.StatusShipping)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if backend.updateCalls != 0 {
		t.Fatalf("status-changing calls = %d, want 0", backend.updateCalls)
	}
}

func TestTransitionAdminMayActOnAnyOrder(t *testing.T) {
	backend := &fakeBackend{order: testOrder(model.StatusProcessing)}
	svc, _ := newTestService(backend)

	if _, _, err := svc.Transition(context.Background(), "tok", "seller", true, "o1", model.StatusShipping); err != nil {
		t.Fatalf("admin transition: %v", err)
	}
	if backend.updateCalls != 1 {
		t.Fatalf("status-changing calls = %d, want 1", backend.updateCalls)
	}
}

func TestTransitionAppendsSortsAndPersists(t *testing.T) {
	backend := &fakeBackend{order: testOrder(model.StatusProcessing)}
	svc, timelines := newTestService(backend)
	ctx := context.Background()

	seed := model.Timeline{
		{Status: model.StatusCreated, UpdatedAt: createdAt},
		{Status: model.StatusProcessing, UpdatedAt: updatedAt},
	}
	if err := timelines.Save(ctx, "u1", "o1", seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	o, tl, err := svc.Transition(ctx, "tok", "u1", false, "o1", model.StatusShipping)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if o.Status != model.StatusShipping {
		t.Errorf("order status = %s, want shipping", o.Status)
	}
	// Backend sent no echo, so the shipping entry carries client time.
	if len(tl) != 3 || tl[2].Status != model.StatusShipping || !tl[2].UpdatedAt.Equal(nowAt) {
		t.Fatalf("timeline = %v", tl)
	}

	persisted, ok, _ := timelines.Load(ctx, "u1", "o1")
	if !ok || len(persisted) != 3 {
		t.Fatalf("persisted = %v, %v", persisted, ok)
	}
}

func TestTransitionBackendRejectionLeavesTimelineAlone(t *testing.T) {
	backend := &fakeBackend{
		order:     testOrder(model.StatusProcessing),
		updateErr: &client.BackendError{StatusCode: 409, Message: "already shipped"},
	}
	svc, timelines := newTestService(backend)
	ctx := context.Background()

	seed := model.Timeline{{Status: model.StatusCreated, UpdatedAt: createdAt}}
	if err := timelines.Save(ctx, "u1", "o1", seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, _, err := svc.Transition(ctx, "tok", "u1", false, "o1", model.StatusShipping)
	var be *client.BackendError
	if !errors.As(err, &be) || be.StatusCode != 409 {
		t.Fatalf("err = %v, want BackendError 409", err)
	}

	persisted, ok, _ := timelines.Load(ctx, "u1", "o1")
	if !ok || len(persisted) != 1 || persisted[0].Status != model.StatusCreated {
		t.Fatalf("timeline changed after a rejected transition: %v", persisted)
	}
}

func TestTransitionFromCompletedOrderRejected(t *testing.T) {
	backend := &fakeBackend{order: testOrder(model.StatusCompleted)}
	svc, _ := newTestService(backend)
	ctx := context.Background()

	// Completed is terminal: every requested move fails before the
	// status-changing call, return/refund cycles included.
	for _, next := range []model.Status{model.StatusReturnRequested, model.StatusRefundPending, model.StatusShipping} {
		if _, _, err := svc.Transition(ctx, "tok", "u1", false, "o1", next); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("completed → %s: err = %v, want ErrInvalidTransition", next, err)
		}
	}
	if backend.updateCalls != 0 {
		t.Fatalf("status-changing calls = %d, want 0", backend.updateCalls)
	}
}

func TestTransitionIntoRefundCycleStartsFresh(t *testing.T) {
	backend := &fakeBackend{order: testOrder(model.StatusReturnAccepted)}
	svc, timelines := newTestService(backend)
	ctx := context.Background()

	seed := model.Timeline{
		{Status: model.StatusReturnRequested, UpdatedAt: createdAt},
		{Status: model.StatusReturnAccepted, UpdatedAt: updatedAt},
	}
	if err := timelines.Save(ctx, "u1", "o1", seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, tl, err := svc.Transition(ctx, "tok", "u1", false, "o1", model.StatusRefundPending)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if len(tl) != 1 || tl[0].Status != model.StatusRefundPending {
		t.Fatalf("timeline = %v, want a single refund_pending entry", tl)
	}
}

func TestGetTimelineStartsFreshCycleAfterCompletedJourney(t *testing.T) {
	// The backend opened a return on a completed order; the next read
	// must show the fresh cycle, not the old journey's history.
	backend := &fakeBackend{order: testOrder(model.StatusReturnRequested)}
	svc, timelines := newTestService(backend)
	ctx := context.Background()

	seed := model.Timeline{
		{Status: model.StatusCreated, UpdatedAt: createdAt},
		{Status: model.StatusCompleted, UpdatedAt: updatedAt},
	}
	if err := timelines.Save(ctx, "u1", "o1", seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, tl, err := svc.GetTimeline(ctx, "tok", "u1", false, "o1")
	if err != nil {
		t.Fatalf("get timeline: %v", err)
	}
	if len(tl) != 1 || tl[0].Status != model.StatusReturnRequested {
		t.Fatalf("timeline = %v, want a single return_requested entry", tl)
	}
}

func TestGetTimelineSynthesizesAndPersists(t *testing.T) {
	backend := &fakeBackend{order: testOrder(model.StatusCompleted)}
	svc, timelines := newTestService(backend)
	ctx := context.Background()

	_, tl, err := svc.GetTimeline(ctx, "tok", "u1", false, "o1")
	if err != nil {
		t.Fatalf("get timeline: %v", err)
	}
	if len(tl) != 4 || tl[0].Status != model.StatusCreated || tl[3].Status != model.StatusCompleted {
		t.Fatalf("timeline = %v, want the 4-entry COD journey", tl)
	}

	// The synthesized history is written through, so a second read is
	// stable without re-synthesis.
	persisted, ok, _ := timelines.Load(ctx, "u1", "o1")
	if !ok || len(persisted) != 4 {
		t.Fatalf("persisted = %v, %v", persisted, ok)
	}
}

func TestGetTimelineMergesBackendHistory(t *testing.T) {
	o := testOrder(model.StatusProcessing)
	o.StatusUpdates = model.Timeline{
		{Status: model.StatusProcessing, UpdatedAt: updatedAt.Add(time.Hour)},
	}
	backend := &fakeBackend{order: o}
	svc, timelines := newTestService(backend)
	ctx := context.Background()

	seed := model.Timeline{
		{Status: model.StatusCreated, UpdatedAt: createdAt},
		{Status: model.StatusProcessing, UpdatedAt: createdAt.Add(time.Hour)},
	}
	if err := timelines.Save(ctx, "u1", "o1", seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, tl, err := svc.GetTimeline(ctx, "tok", "u1", false, "o1")
	if err != nil {
		t.Fatalf("get timeline: %v", err)
	}
	if len(tl) != 2 {
		t.Fatalf("timeline = %v, want 2 entries", tl)
	}
	// Backend history wins on the shared label.
	if !tl[1].UpdatedAt.Equal(updatedAt.Add(time.Hour)) {
		t.Errorf("processing entry time = %s, want backend's", tl[1].UpdatedAt)
	}
}

func TestApplyRemoteUpdateMergesAndIsIdempotent(t *testing.T) {
	backend := &fakeBackend{order: testOrder(model.StatusProcessing)}
	svc, timelines := newTestService(backend)
	ctx := context.Background()

	seed := model.Timeline{{Status: model.StatusCreated, UpdatedAt: createdAt}}
	if err := timelines.Save(ctx, "u1", "o1", seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	remote := model.Timeline{{Status: model.StatusProcessing, UpdatedAt: updatedAt}}
	first, err := svc.ApplyRemoteUpdate(ctx, "u1", "o1", remote)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	second, err := svc.ApplyRemoteUpdate(ctx, "u1", "o1", remote)
	if err != nil {
		t.Fatalf("apply again: %v", err)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("merged lengths = %d, %d, want 2, 2", len(first), len(second))
	}
	if backend.getCalls != 0 || backend.updateCalls != 0 {
		t.Fatalf("remote updates must not touch the network, calls = %d/%d", backend.getCalls, backend.updateCalls)
	}
}

func TestValidNextForTerminalOrderIsEmpty(t *testing.T) {
	backend := &fakeBackend{order: testOrder(model.StatusCancelled)}
	svc, _ := newTestService(backend)

	current, next, err := svc.ValidNext(context.Background(), "tok", "u1", false, "o1")
	if err != nil {
		t.Fatalf("valid next: %v", err)
	}
	if current != model.StatusCancelled || len(next) != 0 {
		t.Fatalf("got %s, %v; want cancelled with no moves", current, next)
	}
}
