package constraints

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type UID interface {
	~int64 | ~string
}

var ErrInvalidUID = errors.New("invalid id")

// ParseUID parses a path value into an id. Numeric ids must be positive.
func ParseUID[U UID](s string) (U, error) {
	var zero U
	s = strings.TrimSpace(s)
	if s == "" {
		return zero, ErrInvalidUID
	}
	switch p := any(&zero).(type) {
	case *string:
		*p = s
	case *int64:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v <= 0 {
			return zero, fmt.Errorf("%w: %q", ErrInvalidUID, s)
		}
		*p = v
	default:
		return zero, fmt.Errorf("unsupported id type %T", zero)
	}
	return zero, nil
}
