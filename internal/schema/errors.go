package schema

import "fmt"

// InvalidSchemaError reports a generation request that cannot be served: an
// unknown or malformed template, or a non-positive row count.
type InvalidSchemaError struct {
	Schema string
	Reason string
}

func (e *InvalidSchemaError) Error() string {
	if e.Schema == "" {
		return fmt.Sprintf("invalid schema: %s", e.Reason)
	}
	return fmt.Sprintf("invalid schema %q: %s", e.Schema, e.Reason)
}
