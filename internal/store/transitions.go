package store

import "randevulu/internal/models"

const (
	ActionApprove  = "approve"
	ActionReject   = "reject"
	ActionCancel   = "cancel"
	ActionComplete = "complete"
)

var transitionMap = map[string][]string{
	ActionApprove:  {models.StatusPending},
	ActionReject:   {models.StatusPending},
	ActionCancel:   {models.StatusPending, models.StatusConfirmed},
	ActionComplete: {models.StatusConfirmed},
}

var transitionTarget = map[string]string{
	ActionApprove:  models.StatusConfirmed,
	ActionReject:   models.StatusCancelled,
	ActionCancel:   models.StatusCancelled,
	ActionComplete: models.StatusCompleted,
}

// TransitionSources lists the statuses action may start from. The postgres
// store uses it as the compare-and-swap guard.
func TransitionSources(action string) []string {
	return transitionMap[action]
}

func TransitionTarget(action string) (string, bool) {
	status, ok := transitionTarget[action]
	return status, ok
}
