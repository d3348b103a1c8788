package entities

// VoteRecord is one account's active vote on one proposal. An account's
// voting history holds at most one record per proposal id, ordered by the
// block in which each vote was first cast (insertion order, not id order).
type VoteRecord struct {
	ProposalID ProposalID
	Direction  Direction
	Votes      Balance
}
