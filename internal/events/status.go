package events

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
)

func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusCancelled:
		return true
	}
	return false
}

func (s EventStatus) String() string {
	return string(s)
}

type TicketTypeStatus string

const (
	TicketTypeStatusActive   TicketTypeStatus = "active"
	TicketTypeStatusInactive TicketTypeStatus = "inactive"
)

func (s TicketTypeStatus) String() string {
	return string(s)
}
