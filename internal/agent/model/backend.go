package model

// Phase is the controller's position in the mode state machine.
type Phase string

const (
	PhaseRuleBased        Phase = "rule_based"
	PhaseBackendRequested Phase = "backend_requested"
	PhaseBackendReady     Phase = "backend_ready"
	PhaseBackendFailed    Phase = "backend_failed"
)

// BackendState is owned by the controller loop.
//   - Ready flips to true only after a probe found the configured model.
//   - Pending is true exactly while one generate call is in flight.
//   - Model is the advertised id the probe matched; empty unless Ready.
type BackendState struct {
	Ready   bool
	Pending bool
	Model   string
}

// Snapshot is a read-only copy of controller state for the presentation layer.
type Snapshot struct {
	Phase      Phase
	UseBackend bool
	Probing    bool
	Backend    BackendState
	Queued     int
	Model      string
}
