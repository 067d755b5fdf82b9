package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type CreatedEnvelope struct {
	Data    any  `json:"data"`
	Created bool `json:"created"`
}

type MutationEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ListEnvelope struct {
	Data  any `json:"data"`
	Count int `json:"count"`
}

type ErrorEnvelope struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}
