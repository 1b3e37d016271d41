package geometry

import "fmt"

// ConfigurationError reports invalid page geometry constants.
// It is fatal at startup and is never corrected silently.
type ConfigurationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("geometry: invalid %s (%gmm): %s", e.Field, e.Value, e.Reason)
}
