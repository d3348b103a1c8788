package entities

// Balance is the token amount domain shared by tallies, quadratic costs, and
// freeze amounts. Tallies live in the same domain as balances because each
// tally accumulates raw vote counts whose squares are frozen as tokens.
type Balance uint64

// BlockNumber is the monotonically non-decreasing counter supplied by the
// host block source.
type BlockNumber uint64

// ProposalID is assigned sequentially starting at zero. Allocation never
// wraps; the store fails when the maximum is reached.
type ProposalID uint64

type Direction string

const (
	DirectionAye Direction = "aye"
	DirectionNay Direction = "nay"
)

func (d Direction) Valid() bool {
	return d == DirectionAye || d == DirectionNay
}

// Outcome is reported when a proposal closes and never mutates tallies.
type Outcome string

const (
	OutcomeAye Outcome = "aye"
	OutcomeNay Outcome = "nay"
	OutcomeTie Outcome = "tie"
)

// Proposal is the unit of governance. Description stores the content hash of
// the submitted text, not the text itself. Closed is a one-way transition.
type Proposal struct {
	ProposalID  ProposalID
	Description string
	StartBlock  BlockNumber
	Ayes        Balance
	Nays        Balance
	Closed      bool
}

// Outcome compares the tallies. Strictly greater ayes wins, strictly greater
// nays loses, equality is a tie.
func (p Proposal) Outcome() Outcome {
	switch {
	case p.Ayes > p.Nays:
		return OutcomeAye
	case p.Ayes < p.Nays:
		return OutcomeNay
	default:
		return OutcomeTie
	}
}
