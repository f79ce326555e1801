// internal/session/connectivity.go
package session

// Connectivity is the key check status shown next to the API key field
type Connectivity int

const (
	Disconnected Connectivity = iota
	Checking
	Connected
	Failed
)

func (c Connectivity) String() string {
	switch c {
	case Disconnected:
		return "disconnected"
	case Checking:
		return "checking"
	case Connected:
		return "connected"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// LabelInvalidFormat is shown when the key fails the local shape check
const LabelInvalidFormat = "Invalid format"

// ConnectivityState is a status plus the label to display for it
type ConnectivityState struct {
	Status Connectivity
	Label  string
}

// Text returns the status line wording
func (s ConnectivityState) Text() string {
	switch s.Status {
	case Connected:
		return "Connected"
	case Checking:
		return "Checking..."
	case Failed:
		if s.Label != "" {
			return s.Label
		}
		return "Error"
	default:
		return "Not connected"
	}
}
