package app

// State is a step of the per-file pipeline. Processing moves strictly
// forward and stops at the first error.
type State int

const (
	StateRawInput State = iota
	StateFramed
	StateChunked
	StateEncoded
	StateRendered
	StateFailed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateRawInput:
		return "RawInput"
	case StateFramed:
		return "Framed"
	case StateChunked:
		return "Chunked"
	case StateEncoded:
		return "Encoded"
	case StateRendered:
		return "Rendered"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Observer is notified as files move through the pipeline.
// Calls are made synchronously from the rendering goroutine.
type Observer interface {
	OnStateChange(file string, previous, current State)
	OnCodeRendered(file string, sequence, total int)
}
