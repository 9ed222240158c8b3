package checkout

type StartSessionRequest struct {
	EventID    string         `json:"event_id" binding:"required,uuid"`
	Selections map[string]int `json:"selections" binding:"required"`
}

type UpdateSelectionsRequest struct {
	Selections map[string]int `json:"selections" binding:"required"`
}

type ApplyPromoRequest struct {
	Code string `json:"code" binding:"required"`
}
