package types

// SuccessEnvelope wraps every successful payload as {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the body of an error envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every failure as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
