package checkout

import "time"

// SessionView is the API shape of a checkout session: the stored state plus
// the computed amounts and how long the hold has left.
type SessionView struct {
	ID               string         `json:"id"`
	EventID          string         `json:"event_id"`
	Selections       map[string]int `json:"selections"`
	PromoCode        string         `json:"promo_code,omitempty"`
	Currency         string         `json:"currency"`
	Amounts          Amounts        `json:"amounts"`
	ExpiresAt        time.Time      `json:"expires_at"`
	RemainingSeconds int            `json:"remaining_seconds"`
}

func toSessionView(session *Session, amounts Amounts, currency string, now time.Time) *SessionView {
	selections := make(map[string]int, len(session.Selections))
	for id, qty := range session.Selections {
		selections[id.String()] = qty
	}

	return &SessionView{
		ID:               session.ID.String(),
		EventID:          session.EventID.String(),
		Selections:       selections,
		PromoCode:        session.PromoCode,
		Currency:         currency,
		Amounts:          amounts,
		ExpiresAt:        session.ExpiresAt,
		RemainingSeconds: int(session.RemainingTTL(now).Seconds()),
	}
}
