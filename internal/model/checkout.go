package model

// CheckoutRequest is the body of POST /api/checkout_sessions
type CheckoutRequest struct {
	Lang string `json:"lang,omitempty"`
}

// CheckoutResponse carries the payment provider session id
type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
}

// CheckoutError is the error envelope of the checkout endpoint
type CheckoutError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
