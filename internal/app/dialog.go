package app

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// The booking dialog is an explicit state machine. The sign-in prompt and
// booking sheet are dialog states, not independent booleans.

// FlowState is the state of one booking dialog.
type FlowState string

const (
	StateClosed       FlowState = "closed"
	StateSignInPrompt FlowState = "sign_in_prompt"
	StateSlotPicker   FlowState = "slot_picker"
	StateConfirming   FlowState = "confirming"
)

// FlowAction is a user action driving the dialog.
type FlowAction string

const (
	ActionOpen    FlowAction = "open"
	ActionSignIn  FlowAction = "sign_in"
	ActionSelect  FlowAction = "select"
	ActionConfirm FlowAction = "confirm"
	ActionClose   FlowAction = "close"
)

// transitions maps (state, action) to the next state. Opening resolves to
// SignInPrompt or SlotPicker depending on session presence, handled in Apply.
var transitions = map[FlowState]map[FlowAction]FlowState{
	StateClosed: {
		ActionOpen: StateSlotPicker,
	},
	StateSignInPrompt: {
		ActionSignIn: StateSlotPicker,
		ActionClose:  StateClosed,
	},
	StateSlotPicker: {
		ActionSelect: StateConfirming,
		ActionClose:  StateClosed,
	},
	StateConfirming: {
		ActionConfirm: StateClosed,
		ActionSelect:  StateConfirming, // re-pick another slot
		ActionClose:   StateClosed,
	},
}

// CanTransition reports whether action is valid in state.
func CanTransition(state FlowState, action FlowAction) bool {
	next, ok := transitions[state]
	if !ok {
		return false
	}
	_, ok = next[action]
	return ok
}

// Apply computes the next state for (state, action, sessionPresent).
func Apply(state FlowState, action FlowAction, sessionPresent bool) (FlowState, error) {
	next, ok := transitions[state]
	if !ok {
		return state, fmt.Errorf("unknown state %q", state)
	}
	to, ok := next[action]
	if !ok {
		return state, fmt.Errorf("action %q not allowed in state %q", action, state)
	}
	if action == ActionOpen && !sessionPresent {
		return StateSignInPrompt, nil
	}
	if action == ActionSignIn && !sessionPresent {
		return state, fmt.Errorf("action %q requires a session", action)
	}
	if action == ActionSelect && !sessionPresent {
		return state, fmt.Errorf("action %q requires a session", action)
	}
	return to, nil
}

// Flow is one dialog session.
type Flow struct {
	ID        string    `json:"id"`
	State     FlowState `json:"state"`
	ServiceID string    `json:"service_id"`
	Day       time.Time `json:"day,omitempty"`
	Slot      string    `json:"slot,omitempty"`
	UpdatedAt time.Time `json:"-"`
}

// FlowStore keeps dialog sessions in memory with expiry.
type FlowStore struct {
	mu      sync.Mutex
	flows   map[string]*Flow
	timeout time.Duration
}

func NewFlowStore(timeout time.Duration) *FlowStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &FlowStore{
		flows:   make(map[string]*Flow),
		timeout: timeout,
	}
}

func (fs *FlowStore) Put(f *Flow) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f.UpdatedAt = time.Now()
	fs.flows[f.ID] = f
}

func (fs *FlowStore) Get(id string) *Flow {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f, ok := fs.flows[id]
	if !ok {
		return nil
	}
	if time.Since(f.UpdatedAt) > fs.timeout {
		delete(fs.flows, id)
		return nil
	}
	return f
}

func (fs *FlowStore) Delete(id string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.flows, id)
}

// Cleanup removes expired flows and returns how many were dropped. Get only
// prunes the flow it is asked for, so abandoned flows need this sweep.
func (fs *FlowStore) Cleanup() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	removed := 0
	for id, f := range fs.flows {
		if time.Since(f.UpdatedAt) > fs.timeout {
			delete(fs.flows, id)
			removed++
		}
	}
	return removed
}

// StartCleanup sweeps expired flows every interval until ctx is done.
func (fs *FlowStore) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fs.Cleanup()
			}
		}
	}()
}
