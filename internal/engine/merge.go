package engine

import (
	"time"

	"github.com/treatclock/treatclock/internal/model"
)

// merge derives one authoritative timer from the local and remote copies.
// Both valid: the later deadline wins (treated as freshest); on a tie the
// remote copy is kept. Exactly one valid: it wins. Neither: no timer.
// Stale or inactive copies never win.
func merge(local, remote *model.TreatmentTimer, now time.Time) *model.TreatmentTimer {
	localValid := local.IsEffective(now)
	remoteValid := remote.IsEffective(now)

	switch {
	case localValid && remoteValid:
		if local.EndTime.After(remote.EndTime) {
			return local
		}
		return remote
	case localValid:
		return local
	case remoteValid:
		return remote
	default:
		return nil
	}
}
