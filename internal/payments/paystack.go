package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"ticketflow/internal/shared/config"
)

const ProviderPaystack = "paystack"

const paystackBaseURL = "https://api.paystack.co"

// PaystackProvider drives payments through the Paystack transaction API.
// Paystack has no official Go SDK, so this is a thin client over its REST
// endpoints.
type PaystackProvider struct {
	secretKey   string
	callbackURL string
	client      *http.Client
	baseURL     string
}

func NewPaystackProvider(cfg config.PaystackConfig) *PaystackProvider {
	return &PaystackProvider{
		secretKey:   cfg.SecretKey,
		callbackURL: cfg.CallbackURL,
		client:      &http.Client{Timeout: 30 * time.Second},
		baseURL:     paystackBaseURL,
	}
}

func (p *PaystackProvider) Name() string { return ProviderPaystack }

type paystackInitRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type paystackInitResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status         string `json:"status"`
		Reference      string `json:"reference"`
		Amount         int64  `json:"amount"`
		Currency       string `json:"currency"`
		GatewayMessage string `json:"gateway_response"`
	} `json:"data"`
}

type paystackWebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Status         string `json:"status"`
		Reference      string `json:"reference"`
		GatewayMessage string `json:"gateway_response"`
	} `json:"data"`
}

func (p *PaystackProvider) Initiate(ctx context.Context, params InitiateParams) (*IntentRef, error) {
	reference := newPaystackReference(params.OrderID)

	body := paystackInitRequest{
		Email:       params.CustomerEmail,
		Amount:      params.AmountCents,
		Currency:    strings.ToUpper(params.Currency),
		Reference:   reference,
		CallbackURL: p.callbackURL,
		Metadata:    map[string]string{"order_id": params.OrderID.String()},
	}

	var resp paystackInitResponse
	if err := p.post(ctx, "/transaction/initialize", body, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("transaction initialization failed: %s", resp.Message)
	}

	return &IntentRef{
		Provider:         ProviderPaystack,
		IntentID:         resp.Data.Reference,
		Reference:        resp.Data.Reference,
		AuthorizationURL: resp.Data.AuthorizationURL,
	}, nil
}

func (p *PaystackProvider) Verify(ctx context.Context, intentID string) (*VerificationResult, error) {
	var resp paystackVerifyResponse
	if err := p.get(ctx, "/transaction/verify/"+intentID, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("transaction verification failed: %s", resp.Message)
	}

	result := &VerificationResult{
		Status:    mapPaystackStatus(resp.Data.Status),
		Reference: resp.Data.Reference,
	}
	if result.Status == StatusFailed {
		result.FailureReason = resp.Data.GatewayMessage
	}
	return result, nil
}

// ParseWebhook verifies the x-paystack-signature header (HMAC-SHA512 of the
// raw body keyed with the secret key) and extracts charge outcomes.
func (p *PaystackProvider) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if !p.verifySignature(payload, signature) {
		return nil, fmt.Errorf("webhook signature verification failed")
	}

	var event paystackWebhookPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to decode webhook payload: %w", err)
	}

	switch event.Event {
	case "charge.success":
		return &WebhookEvent{IntentID: event.Data.Reference, Status: StatusSucceeded}, nil
	case "charge.failed":
		return &WebhookEvent{
			IntentID: event.Data.Reference,
			Status:   StatusFailed,
			Reason:   event.Data.GatewayMessage,
		}, nil
	default:
		return nil, nil
	}
}

func (p *PaystackProvider) verifySignature(payload []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(p.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

func (p *PaystackProvider) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return p.do(req, out)
}

func (p *PaystackProvider) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Accept", "application/json")

	return p.do(req, out)
}

func (p *PaystackProvider) do(req *http.Request, out interface{}) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("paystack request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read paystack response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("paystack API error (status %d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("paystack API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode paystack response: %w", err)
	}
	return nil
}

func mapPaystackStatus(status string) Status {
	switch status {
	case "success":
		return StatusSucceeded
	case "failed", "abandoned":
		return StatusFailed
	default:
		return StatusPending
	}
}

// newPaystackReference builds a unique transaction reference that stays
// traceable to the order.
func newPaystackReference(orderID uuid.UUID) string {
	return fmt.Sprintf("TF-%s-%s", orderID.String()[:8], uuid.NewString()[:8])
}
