package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"storefront-backend/internal/domain"
)

// Processor is the narrow contract with the external card processor: one
// synchronous charge call, no retries.
type Processor interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

type ChargeRequest struct {
	AmountCents  int64  `json:"amount_cents"`
	Currency     string `json:"currency"`
	CardToken    string `json:"card_token"`
	ReceiptEmail string `json:"receipt_email"`
	Description  string `json:"description"`
}

type ChargeResult struct {
	TransactionRef string `json:"transaction_ref"`
	CardLast4      string `json:"card_last4"`
}

// ProcessorClient talks to the processor's HTTP API.
type ProcessorClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewProcessorClient(baseURL string, client *http.Client) *ProcessorClient {
	return &ProcessorClient{baseURL: baseURL, httpClient: client}
}

func (c *ProcessorClient) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charges", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrChargeFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var body map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if msg := body["error"]; msg != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrChargeFailed, msg)
		}
		return nil, fmt.Errorf("%w: processor returned status %d", domain.ErrChargeFailed, resp.StatusCode)
	}

	var result ChargeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: malformed processor response: %v", domain.ErrChargeFailed, err)
	}

	return &result, nil
}
