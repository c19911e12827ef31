package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from AttemptStatus
		to   AttemptStatus
		role Role
		want bool
	}{
		{"student submits in-progress", StatusInProgress, StatusSubmitted, RoleStudent, true},
		{"student force-closes in-progress", StatusInProgress, StatusCompleted, RoleStudent, true},
		{"student cannot evaluate", StatusInProgress, StatusEvaluated, RoleStudent, false},
		{"student cannot reopen submitted", StatusSubmitted, StatusInProgress, RoleStudent, false},
		{"student cannot touch submitted", StatusSubmitted, StatusCompleted, RoleStudent, false},
		{"student cannot touch evaluated", StatusEvaluated, StatusCompleted, RoleStudent, false},

		{"teacher evaluates submitted", StatusSubmitted, StatusEvaluated, RoleTeacher, true},
		{"teacher evaluates completed", StatusCompleted, StatusEvaluated, RoleTeacher, true},
		{"teacher evaluates in-progress", StatusInProgress, StatusEvaluated, RoleTeacher, true},
		{"teacher force-closes in-progress", StatusInProgress, StatusCompleted, RoleTeacher, true},
		{"teacher cannot reopen submitted", StatusSubmitted, StatusInProgress, RoleTeacher, false},
		{"teacher cannot undo evaluation", StatusEvaluated, StatusSubmitted, RoleTeacher, false},

		{"admin evaluates submitted", StatusSubmitted, StatusEvaluated, RoleAdmin, true},
		{"admin evaluates completed", StatusCompleted, StatusEvaluated, RoleAdmin, true},
		{"admin cannot reopen evaluated", StatusEvaluated, StatusInProgress, RoleAdmin, false},

		{"no self transition", StatusInProgress, StatusInProgress, RoleAdmin, false},
		{"no self transition for student", StatusSubmitted, StatusSubmitted, RoleStudent, false},
		{"unknown role denied", StatusInProgress, StatusSubmitted, Role("guest"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to, tt.role))
		})
	}
}

func TestWritable(t *testing.T) {
	assert.True(t, StatusInProgress.Writable())
	assert.False(t, StatusSubmitted.Writable())
	assert.False(t, StatusEvaluated.Writable())
	assert.False(t, StatusCompleted.Writable())
}
