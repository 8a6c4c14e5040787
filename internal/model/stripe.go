package model

import "encoding/json"

// Gateway event kinds this service reacts to. Anything else is
// acknowledged and ignored.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentSucceeded  = "payment_intent.succeeded"
	EventPaymentFailed     = "payment_intent.payment_failed"
)

type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CheckoutSession is the gateway's view of a completed hosted-checkout
// session. Metadata carries everything needed to rebuild the order
// without touching the live cart.
type CheckoutSession struct {
	ID              string          `json:"id"`
	AmountTotal     int64           `json:"amount_total"` // minor currency units
	Currency        string          `json:"currency"`
	PaymentIntent   string          `json:"payment_intent"`
	CustomerEmail   string          `json:"customer_email"`
	Metadata        SessionMetadata `json:"metadata"`
	ShippingDetails json.RawMessage `json:"shipping_details"`
}

type SessionMetadata struct {
	UserID string `json:"userId"`
	// JSON-serialized []CartRef; gateway metadata values are strings.
	Items string `json:"items"`
}

type CartRef struct {
	ID       string `json:"id"`
	Quantity int32  `json:"quantity"`
}

type PaymentIntent struct {
	ID string `json:"id"`
}
