package gate

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig marks configuration errors detected before any
// network activity. Callers wrap it with detail via fmt.Errorf("%w").
var ErrInvalidConfig = errors.New("invalid gate configuration")

// TimeoutError reports that the configured timeout elapsed before the
// named target became reachable.
type TimeoutError struct {
	Target  Target
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %s at %s",
		e.Elapsed.Round(time.Millisecond), e.Target.Name, e.Target.Addr())
}
