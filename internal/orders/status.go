package orders

// Status is the order lifecycle state. Paid is terminal; cancelled orders
// never transition back.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// PaymentStatus tracks a single payment attempt against an order.
type PaymentStatus string

const (
	PaymentStatusInitiated PaymentStatus = "initiated"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// ConfirmOutcome is the tagged result of applying a successful provider
// confirmation. A redundant confirmation is reported, not treated as an
// error.
type ConfirmOutcome string

const (
	OutcomeNewlyPaid   ConfirmOutcome = "newly_paid"
	OutcomeAlreadyPaid ConfirmOutcome = "already_paid"
	OutcomeRejected    ConfirmOutcome = "rejected"
)
