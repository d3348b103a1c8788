package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterVoterRequest struct {
	Account string `json:"account"`
}

type RegisterVoterResponse struct {
	Account           string `json:"account"`
	RegisteredAtBlock uint64 `json:"registered_at_block"`
}

type VoterResponse struct {
	Account           string `json:"account"`
	Registered        bool   `json:"registered"`
	RegisteredAtBlock uint64 `json:"registered_at_block,omitempty"`
}
