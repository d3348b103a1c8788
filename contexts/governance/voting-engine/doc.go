// Package votingengine implements quadratic-cost voting inside the
// governance context.
//
// The module owns the proposal pool and its lifecycle, the per-account
// bounded vote ledger, and the freeze accounting that keeps an account's
// reserved tokens equal to the maximum single-proposal quadratic cost among
// its active votes. Business rules live in application/domain layers and
// infrastructure stays behind ports and adapters. The host chain's balance
// ledger and block source are collaborators reached through ports, never
// owned here.
package votingengine
