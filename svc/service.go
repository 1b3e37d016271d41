package svc

type Service interface {
	Start() error // bootstrapping error only
	Stop()
	// Done - shutdown error channel
	// Since consumed by conf.Core only, Do Not Close the channel in a method
	Done() <-chan error
	Name() string
}

// State of a service. Transitions only go forward: READY -> RUNNING -> STOPPED.
type State int32

const (
	StateREADY State = iota
	StateRUNNING
	StateSTOPPED
)

func (s State) String() string {
	switch s {
	case StateREADY:
		return "ready"
	case StateRUNNING:
		return "running"
	case StateSTOPPED:
		return "stopped"
	}
	return "unknown"
}
