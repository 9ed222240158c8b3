package promotions

type ValidatePromoRequest struct {
	Code          string   `json:"code" binding:"required"`
	EventID       string   `json:"event_id" binding:"required,uuid"`
	TicketTypeIDs []string `json:"ticket_type_ids" binding:"omitempty,dive,uuid"`
	OrderAmount   int64    `json:"order_amount" binding:"required,min=1"`
}
