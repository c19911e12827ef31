package model

// Role of an authenticated actor, resolved from the bearer token.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// AttemptStatus is the lifecycle state of an exam attempt.
type AttemptStatus string

const (
	StatusInProgress AttemptStatus = "IN_PROGRESS"
	StatusSubmitted  AttemptStatus = "SUBMITTED"
	StatusEvaluated  AttemptStatus = "EVALUATED"
	// StatusCompleted is the force-close terminal state, reachable from
	// IN_PROGRESS outside the normal submit path.
	StatusCompleted AttemptStatus = "COMPLETED"
)

// CanTransition reports whether an actor with the given role may move an
// attempt from one status to another. Every mutating operation consults this
// before touching the row.
func CanTransition(from, to AttemptStatus, role Role) bool {
	if from == to {
		return false
	}
	switch role {
	case RoleStudent:
		// Students only close out their own in-progress attempt.
		return from == StatusInProgress && (to == StatusSubmitted || to == StatusCompleted)
	case RoleTeacher, RoleAdmin:
		switch from {
		case StatusInProgress:
			return to == StatusCompleted || to == StatusEvaluated
		case StatusSubmitted, StatusCompleted:
			return to == StatusEvaluated
		}
	}
	return false
}

// Writable reports whether a student may still create or revise answers on an
// attempt in this status. SUBMITTED, EVALUATED and COMPLETED all lock the
// answer sheet.
func (s AttemptStatus) Writable() bool {
	return s == StatusInProgress
}
