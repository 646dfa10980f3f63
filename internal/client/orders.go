// Package client talks to the external orders backend. All order state
// lives there; this service only reads it and requests status changes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"order-timeline-service/internal/model"
)

// BackendError is a non-2xx answer from the orders backend. The message
// is surfaced to the user as-is when present.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("orders backend rejected the request (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("orders backend rejected the request (%d)", e.StatusCode)
}

type OrdersClient struct {
	baseURL string
	client  *http.Client
}

func NewOrdersClient(baseURL string) *OrdersClient {
	return &OrdersClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Wire shapes. The backend payload is loosely shaped, so decoding is
// tolerant: unknown statuses are carried through raw, missing item names
// get the storefront placeholder.
type orderPayload struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userId"`
	Status        string         `json:"status"`
	Items         []itemPayload  `json:"item"`
	StatusUpdates model.Timeline `json:"statusUpdates"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type itemPayload struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

func (p *orderPayload) toModel() *model.Order {
	status, ok := model.ParseAny(p.Status)
	if !ok {
		// Keep the raw value; an unknown status simply has no allowed
		// transitions, which is how the UI is meant to degrade.
		status = model.Status(p.Status)
	}
	o := &model.Order{
		ID:            p.ID,
		UserID:        p.UserID,
		Status:        status,
		StatusUpdates: p.StatusUpdates.Compact(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}
	for _, it := range p.Items {
		name := it.Name
		if name == "" {
			name = model.DefaultProductName
		}
		o.Items = append(o.Items, model.OrderItem{
			ProductID: it.ProductID,
			Name:      name,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return o
}

// GetOrder fetches one order, including the backend's status history
// when it supplies one.
func (c *OrdersClient) GetOrder(ctx context.Context, orderID, token string) (*model.Order, error) {
	url := fmt.Sprintf("%s/api/orders/%s?id=%s", c.baseURL, orderID, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("orders request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, backendError(resp)
	}

	var p orderPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding order: %w", err)
	}
	return p.toModel(), nil
}

// UpdateStatus asks the backend to move the order to the given status.
// On success it returns the echoed order when the backend sends one,
// otherwise nil; callers fall back to client-side time in that case.
func (c *OrdersClient) UpdateStatus(ctx context.Context, orderID string, status model.Status, token string) (*model.Order, error) {
	body, err := json.Marshal(map[string]string{"status": status.Label()})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/orders/%s/status", c.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("orders request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, backendError(resp)
	}

	var p orderPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		// No echo is fine; the status change already happened.
		return nil, nil
	}
	return p.toModel(), nil
}

func backendError(resp *http.Response) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		msg = payload.Error
		if msg == "" {
			msg = payload.Message
		}
	}
	return &BackendError{StatusCode: resp.StatusCode, Message: msg}
}
