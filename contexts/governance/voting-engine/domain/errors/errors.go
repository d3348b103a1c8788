package errors

import "errors"

var (
	ErrInvalidVoteInput    = errors.New("invalid vote input")
	ErrNotRegistered       = errors.New("account is not a registered voter")
	ErrProposalNotFound    = errors.New("proposal not found")
	ErrVoteAlreadyEnded    = errors.New("vote has already ended")
	ErrVotingPeriodNotOver = errors.New("voting period is not over")
	ErrInsufficientFunds   = errors.New("insufficient funds to cast that many votes")
	ErrTooManyVotes        = errors.New("too many active votes for this account")
	ErrNoVotes             = errors.New("no votes found for this account")
	ErrOverflow            = errors.New("arithmetic overflow")
	ErrUnderflow           = errors.New("arithmetic underflow")
)
