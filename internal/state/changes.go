package state

import "github.com/theirongolddev/subtrack/internal/model"

// HasPendingChanges reports whether current differs from the last synced
// snapshot. An empty current list never counts as a change, so clearing the
// local list cannot push an empty list over the remote copy. Comparison is
// order-sensitive and ignores ids.
func HasPendingChanges(current []model.Subscription, lastSynced []model.Record) bool {
	if len(current) == 0 {
		return false
	}
	if len(current) != len(lastSynced) {
		return true
	}
	for i := range current {
		if !current[i].Record.Equal(lastSynced[i]) {
			return true
		}
	}
	return false
}
