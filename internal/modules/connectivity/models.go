// Package connectivity tracks whether the traffic light controller is reachable
// and drives the footer indicator and the offline retry poll.
package connectivity

// State is the connectivity state of the controller
type State string

const (
	StateUnknown State = "unknown"
	StateOnline  State = "online"
	StateOffline State = "offline"
)

// Indicator is the footer status text
type Indicator struct {
	Text    string `json:"text"`
	Visible bool   `json:"visible"`
}

// Snapshot is the monitor state at one point in time
type Snapshot struct {
	State     State     `json:"state"`
	Indicator Indicator `json:"indicator"`
	Retrying  bool      `json:"retrying"`
}
