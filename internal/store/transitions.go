package store

import "bayline/queue-service/internal/models"

// transitionMap lists, per target status, the statuses a record may move
// from. Done and cancelled are terminal; nothing returns to waiting.
var transitionMap = map[string][]string{
	models.StatusAccepted:  {models.StatusWaiting},
	models.StatusInService: {models.StatusWaiting, models.StatusAccepted},
	models.StatusDone:      {models.StatusInService},
	models.StatusCancelled: {models.StatusWaiting, models.StatusAccepted, models.StatusInService},
}

func CanTransition(fromStatus, toStatus string) bool {
	allowed, ok := transitionMap[toStatus]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}
