package declaration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vatdesk/pkg/models"
)

func TestTransitionLifecycle(t *testing.T) {
	decl := &models.TaxDeclaration{ID: "d-1", Status: models.DeclarationDraft}

	require.NoError(t, Transition(decl, models.DeclarationSubmitted))
	assert.Equal(t, models.DeclarationSubmitted, decl.Status)
	assert.True(t, IsLocked(decl))

	require.NoError(t, Transition(decl, models.DeclarationCompleted))
	assert.Equal(t, models.DeclarationCompleted, decl.Status)
}

func TestTransitionRejectsUnlawfulMoves(t *testing.T) {
	tests := []struct {
		from, to models.DeclarationStatus
	}{
		{models.DeclarationDraft, models.DeclarationCompleted},
		{models.DeclarationSubmitted, models.DeclarationDraft},
		{models.DeclarationSubmitted, models.DeclarationDeleted},
		{models.DeclarationCompleted, models.DeclarationDraft},
		{models.DeclarationCompleted, models.DeclarationSubmitted},
		{models.DeclarationDeleted, models.DeclarationSubmitted},
		{models.DeclarationDraft, "archived"},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			decl := &models.TaxDeclaration{Status: tt.from}
			err := Transition(decl, tt.to)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.from, decl.Status)
		})
	}
}

func TestTransitionSameStatusIsNoop(t *testing.T) {
	decl := &models.TaxDeclaration{Status: models.DeclarationCompleted}
	assert.NoError(t, Transition(decl, models.DeclarationCompleted))
}

func TestTransitionFromEmptyStatusActsAsDraft(t *testing.T) {
	decl := &models.TaxDeclaration{}
	require.NoError(t, Transition(decl, models.DeclarationDeleted))
	assert.Equal(t, models.DeclarationDeleted, decl.Status)
}

func TestAllowedTransitions(t *testing.T) {
	assert.ElementsMatch(t,
		[]models.DeclarationStatus{models.DeclarationSubmitted, models.DeclarationDeleted},
		AllowedTransitions(models.DeclarationDraft))
	assert.Equal(t, []models.DeclarationStatus{models.DeclarationCompleted}, AllowedTransitions(models.DeclarationSubmitted))
	assert.Empty(t, AllowedTransitions(models.DeclarationCompleted))
	assert.Empty(t, AllowedTransitions(models.DeclarationDeleted))
}
