package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ProposeRequest struct {
	Description string `json:"description"`
}

type ProposeResponse struct {
	ProposalID uint64 `json:"proposal_id"`
	StartBlock uint64 `json:"start_block"`
}

type VoteRequest struct {
	Direction string `json:"direction"`
	Votes     uint64 `json:"votes"`
}

type VoteResponse struct {
	ProposalID     uint64 `json:"proposal_id"`
	Cancelled      bool   `json:"cancelled"`
	RequiredTokens uint64 `json:"required_tokens"`
	Ayes           uint64 `json:"ayes"`
	Nays           uint64 `json:"nays"`
}

type CloseResponse struct {
	ProposalID uint64 `json:"proposal_id"`
	Outcome    string `json:"outcome"`
	Ayes       uint64 `json:"ayes"`
	Nays       uint64 `json:"nays"`
}

type ClaimResponse struct {
	ProposalID uint64 `json:"proposal_id"`
	Released   bool   `json:"released"`
}

type ProposalResponse struct {
	ProposalID  uint64 `json:"proposal_id"`
	Description string `json:"description"`
	StartBlock  uint64 `json:"start_block"`
	Ayes        uint64 `json:"ayes"`
	Nays        uint64 `json:"nays"`
	Closed      bool   `json:"closed"`
	Outcome     string `json:"outcome"`
}

type ProposalListResponse struct {
	Items []ProposalResponse `json:"items"`
}

type AccountVoteItem struct {
	ProposalID     uint64 `json:"proposal_id"`
	Direction      string `json:"direction"`
	Votes          uint64 `json:"votes"`
	RequiredTokens uint64 `json:"required_tokens"`
}

type AccountVotesResponse struct {
	Account      string            `json:"account"`
	FrozenTokens uint64            `json:"frozen_tokens"`
	Items        []AccountVoteItem `json:"items"`
}
