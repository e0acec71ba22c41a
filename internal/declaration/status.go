package declaration

import (
	"fmt"

	"github.com/qmuntal/stateless"
	"vatdesk/pkg/models"
)

type trigger string

const (
	triggerSubmit   trigger = "submit"
	triggerComplete trigger = "complete"
	triggerDelete   trigger = "delete"
)

var triggerFor = map[models.DeclarationStatus]trigger{
	models.DeclarationSubmitted: triggerSubmit,
	models.DeclarationCompleted: triggerComplete,
	models.DeclarationDeleted:   triggerDelete,
}

// draft -> submitted -> completed, draft -> deleted. Nothing leads back to draft.
func newStatusMachine(status models.DeclarationStatus) *stateless.StateMachine {
	if status == "" {
		status = models.DeclarationDraft
	}
	machine := stateless.NewStateMachine(status)

	machine.Configure(models.DeclarationDraft).
		Permit(triggerSubmit, models.DeclarationSubmitted).
		Permit(triggerDelete, models.DeclarationDeleted)

	machine.Configure(models.DeclarationSubmitted).
		Permit(triggerComplete, models.DeclarationCompleted)

	machine.Configure(models.DeclarationCompleted)
	machine.Configure(models.DeclarationDeleted)

	return machine
}

// Transition moves decl to target. Setting the current status again is a no-op.
func Transition(decl *models.TaxDeclaration, target models.DeclarationStatus) error {
	const op = "Transition"

	from := decl.Status
	if from == "" {
		from = models.DeclarationDraft
	}
	if from == target {
		return nil
	}

	trig, ok := triggerFor[target]
	if !ok {
		return &DeclarationError{Op: op, Err: ErrInvalidTransition, DeclarationID: decl.ID,
			Details: fmt.Sprintf("unknown target status %q", target)}
	}

	machine := newStatusMachine(from)
	if err := machine.Fire(trig); err != nil {
		return &DeclarationError{Op: op, Err: ErrInvalidTransition, DeclarationID: decl.ID,
			Details: fmt.Sprintf("%s -> %s: %v", from, target, err)}
	}

	decl.Status = machine.MustState().(models.DeclarationStatus)
	return nil
}

// AllowedTransitions lists the statuses reachable in one step from status.
func AllowedTransitions(status models.DeclarationStatus) []models.DeclarationStatus {
	triggers, err := newStatusMachine(status).PermittedTriggers()
	if err != nil {
		return nil
	}
	var out []models.DeclarationStatus
	for _, target := range []models.DeclarationStatus{
		models.DeclarationSubmitted, models.DeclarationCompleted, models.DeclarationDeleted,
	} {
		for _, t := range triggers {
			if t == triggerFor[target] {
				out = append(out, target)
			}
		}
	}
	return out
}

// IsLocked reports whether the declaration's figures may no longer change.
func IsLocked(decl *models.TaxDeclaration) bool {
	return decl.Status != "" && decl.Status != models.DeclarationDraft
}
