package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"storefront-backend/internal/domain"
)

// NotificationHandler consumes order.created events and sends the
// confirmation email. The customer's address is resolved through the
// storefront API.
type NotificationHandler struct {
	emailServiceURL string
	apiServiceURL   string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewNotificationHandler(emailServiceURL, apiServiceURL string, client *http.Client, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		emailServiceURL: emailServiceURL,
		apiServiceURL:   apiServiceURL,
		httpClient:      client,
		logger:          logger,
	}
}

func (h *NotificationHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	h.logger.Info("processing order created event", "order_id", event.OrderID, "user_id", event.UserID)

	email, err := h.lookupEmail(ctx, event.UserID)
	if err != nil {
		h.logger.Error("failed to look up customer email", "error", err, "user_id", event.UserID)
		return fmt.Errorf("look up customer email: %w", err)
	}

	if err := h.sendConfirmationEmail(ctx, email, event); err != nil {
		h.logger.Error("failed to send confirmation email", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send confirmation email: %w", err)
	}

	h.logger.Info("order confirmation sent", "order_id", event.OrderID)
	return nil
}

func (h *NotificationHandler) lookupEmail(ctx context.Context, userID string) (string, error) {
	url := fmt.Sprintf("%s/users/%s", h.apiServiceURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("storefront api returned status %d for user %s", resp.StatusCode, userID)
	}

	var user struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", err
	}
	return user.Email, nil
}

func (h *NotificationHandler) sendConfirmationEmail(ctx context.Context, to string, event domain.OrderCreatedEvent) error {
	body := map[string]string{
		"to":      to,
		"subject": "Order Confirmation: " + event.OrderID,
		"body": fmt.Sprintf("Your order %s has been received. %d items, total $%d.%02d.",
			event.OrderID, len(event.Items), event.TotalCents/100, event.TotalCents%100),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}
