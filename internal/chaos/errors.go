package chaos

import "fmt"

// EmptyTableError is returned when a transform is asked to perturb a table
// without rows or without columns.
type EmptyTableError struct {
	Rows int
	Cols int
}

func (e *EmptyTableError) Error() string {
	return fmt.Sprintf("empty table: %d rows, %d columns", e.Rows, e.Cols)
}

// InvalidParameterError reports a chaos parameter outside its domain.
type InvalidParameterError struct {
	Param  string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Param, e.Value, e.Reason)
}
