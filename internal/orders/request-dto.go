package orders

type CreateOrderRequest struct {
	SessionID string `json:"session_id" binding:"required,uuid" validate:"required,uuid"`

	// IdempotencyKey can also arrive via the Idempotency-Key header,
	// which takes precedence. Validated after the header merge, which
	// bypasses binding.
	IdempotencyKey string `json:"idempotency_key" binding:"omitempty,max=128" validate:"omitempty,max=128"`
}

type InitiatePaymentRequest struct {
	// Provider may be omitted when exactly one provider is configured.
	Provider string `json:"provider" binding:"omitempty,oneof=stripe paystack"`
}

type ConfirmOrderRequest struct {
	// IntentID pins the confirmation to a specific payment attempt. When
	// omitted, the newest initiated attempt is verified.
	IntentID string `json:"intent_id" binding:"omitempty,max=255"`
}

type OrderListQuery struct {
	Page  int `form:"page,default=1" binding:"omitempty,min=1"`
	Limit int `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
}
