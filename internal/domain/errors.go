package domain

import "fmt"

// Error types for consistent error handling across the API.

// ErrNotFound indicates a referenced resource does not exist.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized indicates missing/invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrForbidden indicates the user is authenticated but lacks the role or
// store scope for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrConflict indicates a unique constraint violation (duplicate email or CPF).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrValidation indicates a malformed or missing request field.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrGoalNotReached is the recoverable redemption precondition failure:
// the client has fewer visits than the store's goal. No state changes.
type ErrGoalNotReached struct {
	VisitsCount   int64
	GoalThreshold int
}

func (e *ErrGoalNotReached) Error() string {
	return fmt.Sprintf("Cliente ainda não atingiu a meta: %d/%d visitas", e.VisitsCount, e.GoalThreshold)
}
