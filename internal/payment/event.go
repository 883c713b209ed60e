package payment

// Event is a gateway webhook notification. Only the fields this service
// consumes are decoded; the raw body is what gets signature-verified.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	Object SessionObject `json:"object"`
}

type SessionObject struct {
	ID          string            `json:"id"`
	AmountTotal int64             `json:"amount_total"`
	Metadata    map[string]string `json:"metadata"`
}

// EventCheckoutCompleted is the only event kind that triggers reconciliation.
const EventCheckoutCompleted = "checkout.session.completed"
