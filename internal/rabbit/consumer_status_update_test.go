package rabbit

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"order-timeline-service/internal/model"
	"order-timeline-service/internal/service"
	"order-timeline-service/internal/store"
)

func newConsumer(t *testing.T) (*StatusUpdateConsumer, *store.TimelineStore) {
	t.Helper()
	kv := store.NewMemoryKV()
	timelines := store.NewTimelineStore(kv)
	// The consumer path never calls the orders backend.
	svc := service.NewTimelineService(nil, timelines, store.NewDraftStore(kv), zap.NewNop())
	return NewStatusUpdateConsumer(svc, zap.NewNop()), timelines
}

func TestHandleMergesRemoteHistory(t *testing.T) {
	consumer, timelines := newConsumer(t)
	ctx := context.Background()

	seed := model.Timeline{{Status: model.StatusCreated, UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}}
	if err := timelines.Save(ctx, "u1", "o1", seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	msg := []byte(`{
		"correlation_id": "c1",
		"message": {
			"orderId": "o1",
			"userId": "u1",
			"status": "Đang xử lý",
			"updatedAt": "2024-01-02T00:00:00Z"
		}
	}`)
	if err := consumer.Handle(msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, ok, _ := timelines.Load(ctx, "u1", "o1")
	if !ok || len(got) != 2 {
		t.Fatalf("stored = %v, %v, want 2 entries", got, ok)
	}
	if got[1].Status != model.StatusProcessing {
		t.Errorf("second entry = %s, want processing", got[1].Status)
	}

	// Redelivery merges to the same result.
	if err := consumer.Handle(msg); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	again, _, _ := timelines.Load(ctx, "u1", "o1")
	if len(again) != 2 {
		t.Fatalf("redelivery changed the timeline: %v", again)
	}
}

func TestHandleDropsMalformedAndAnonymousMessages(t *testing.T) {
	consumer, timelines := newConsumer(t)

	if err := consumer.Handle([]byte(`{not json`)); err == nil {
		t.Error("malformed payload should report an error")
	}
	// No ids: logged and dropped without failing the consume loop.
	if err := consumer.Handle([]byte(`{"message":{"status":"Đang xử lý"}}`)); err != nil {
		t.Errorf("anonymous message should be dropped silently, got %v", err)
	}

	if _, ok, _ := timelines.Load(context.Background(), "u1", "o1"); ok {
		t.Error("nothing should have been stored")
	}
}
