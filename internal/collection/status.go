package collection

// Status is the lifecycle state of a cache entry or slot.
type Status uint8

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

var statusNames = [...]string{
	StatusIdle:    "idle",
	StatusLoading: "loading",
	StatusReady:   "ready",
	StatusError:   "error",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}
