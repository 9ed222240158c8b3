package promotions

// ValidationResult is the shape the checkout flow consumes: valid plus a
// positive discount means the code can be applied to the current cart.
type ValidationResult struct {
	Valid          bool   `json:"valid"`
	Code           string `json:"code"`
	DiscountAmount int64  `json:"discount_amount"`
	Message        string `json:"message,omitempty"`
}
