package entities

// Voter is one allow-list entry. RegisteredAtBlock records the block height
// at which the account was admitted.
type Voter struct {
	Account           string
	RegisteredAtBlock uint64
}
