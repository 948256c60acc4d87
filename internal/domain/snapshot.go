package domain

import (
	"fmt"
	"time"
)

// SnapshotVersion is the current persisted-snapshot schema version. Bump it
// whenever the shape of Snapshot changes incompatibly.
const SnapshotVersion = 1

// Snapshot is the full persisted state of the ledger: every market (with its
// bets), the per-user bet index, claimable rewards, and sonic scores.
type Snapshot struct {
	Version  int               `json:"version"`
	Markets  []Market          `json:"markets"`
	UserBets map[string][]Bet  `json:"userBets"`
	Rewards  []ClaimableReward `json:"rewards"`
	Scores   map[string]int    `json:"scores"`
	SavedAt  time.Time         `json:"savedAt"`
}

// Validate rejects snapshots written by an unknown schema version so legacy
// or malformed blobs fail loudly instead of producing zero-valued fields.
func (s *Snapshot) Validate() error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrSnapshotSchema, s.Version, SnapshotVersion)
	}
	return nil
}
