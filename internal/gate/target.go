package gate

import (
	"net"
	"strconv"
	"time"
)

// Target is one host:port pair the gate must confirm is reachable
// before handing off to the entry command. Immutable once constructed.
type Target struct {
	Name string
	Host string
	Port int
}

// Addr returns the dialable host:port address.
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// Outcome is the terminal state of polling for one target.
type Outcome int

const (
	// OutcomePending means polling has not concluded. It appears in
	// results only when the wait was cancelled externally.
	OutcomePending Outcome = iota
	// OutcomeReady means a connection attempt succeeded.
	OutcomeReady
	// OutcomeTimedOut means the configured timeout elapsed first.
	OutcomeTimedOut
)

// String returns the outcome name for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeReady:
		return "ready"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return "pending"
	}
}

// Result records how polling concluded for one target.
type Result struct {
	Target   Target
	Outcome  Outcome
	Attempts int
	Elapsed  time.Duration
}
