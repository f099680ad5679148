package monitor

// State is a phase of a monitoring run
type State int

const (
	StateWaitingForPageLoad State = iota
	StateWaitingForUserStart
	StateMonitoring
	StateStopped
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateWaitingForPageLoad:
		return "WAITING_FOR_PAGE_LOAD"
	case StateWaitingForUserStart:
		return "WAITING_FOR_USER_START"
	case StateMonitoring:
		return "MONITORING"
	case StateStopped:
		return "STOPPED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}
