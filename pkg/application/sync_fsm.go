package application

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Sync run phases. These must remain untyped string constants for
// statekit.StateID compatibility.
const (
	PhaseIdle               = "idle"
	PhaseLoadingCredentials = "loading_credentials"
	PhaseQuerying           = "querying"
	PhaseFetchingDetails    = "fetching_details"
	PhaseCaching            = "caching"
	PhaseEvicting           = "evicting"
	PhaseWritingMetadata    = "writing_metadata"
	PhaseFailed             = "failed"
)

// Events that drive a sync run between phases.
const (
	eventStart             = "start"
	eventCredentialsOK     = "credentials_ok"
	eventCredentialsFailed = "credentials_failed"
	eventFetch             = "fetch"
	eventCache             = "cache"
	eventNextCategory      = "next_category"
	eventEvict             = "evict"
	eventWrite             = "write"
	eventDone              = "done"
	eventReset             = "reset"
)

type syncContext struct {
	Mode SyncMode
}

// SyncStateMachine tracks which phase a sync run is in and rejects phase
// jumps the orchestrator is not allowed to make. A credential failure moves
// straight to failed before any network call; eviction is reachable only
// after caching or querying, so quick runs can never pass through it.
type SyncStateMachine struct {
	interpreter *statekit.Interpreter[syncContext]
}

func NewSyncStateMachine(mode SyncMode) (*SyncStateMachine, error) {
	builder := statekit.NewMachine[syncContext]("sync-run").
		WithInitial(statekit.StateID(PhaseIdle)).
		WithContext(syncContext{Mode: mode})

	builder.State(PhaseIdle).
		On(eventStart).Target(PhaseLoadingCredentials).
		Done()

	builder.State(PhaseLoadingCredentials).
		On(eventCredentialsOK).Target(PhaseQuerying).
		On(eventCredentialsFailed).Target(PhaseFailed).
		Done()

	// A category whose query fails stays in querying for the next category,
	// so evict and write must be reachable from here as well.
	builder.State(PhaseQuerying).
		On(eventFetch).Target(PhaseFetchingDetails).
		On(eventEvict).Target(PhaseEvicting).
		On(eventWrite).Target(PhaseWritingMetadata).
		Done()

	builder.State(PhaseFetchingDetails).
		On(eventCache).Target(PhaseCaching).
		Done()

	builder.State(PhaseCaching).
		On(eventNextCategory).Target(PhaseQuerying).
		On(eventEvict).Target(PhaseEvicting).
		On(eventWrite).Target(PhaseWritingMetadata).
		Done()

	builder.State(PhaseEvicting).
		On(eventWrite).Target(PhaseWritingMetadata).
		Done()

	builder.State(PhaseWritingMetadata).
		On(eventDone).Target(PhaseIdle).
		Done()

	builder.State(PhaseFailed).
		On(eventReset).Target(PhaseIdle).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build sync state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &SyncStateMachine{interpreter: interpreter}, nil
}

// Transition attempts to advance the run with the given event.
func (m *SyncStateMachine) Transition(event string) error {
	before := m.Phase()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := m.Phase()

	if before != after {
		return nil
	}
	return fmt.Errorf("event %q is not allowed in sync phase %q", event, before)
}

// Phase returns the current phase of the run.
func (m *SyncStateMachine) Phase() string {
	return string(m.interpreter.State().Value)
}
