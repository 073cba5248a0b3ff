package repoconfig

import "fmt"

// ValueConvertError is returned when a configuration property's textual
// value cannot be converted to its declared type.
type ValueConvertError struct {
	Property string
	Value    string
	Reason   string
}

func (e *ValueConvertError) Error() string {
	return fmt.Sprintf("repoconfig: cannot convert property %q value %q: %s", e.Property, e.Value, e.Reason)
}
