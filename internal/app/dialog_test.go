package app

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestFlowTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    FlowState
		action  FlowAction
		session bool
		want    FlowState
		wantErr bool
	}{
		{"open with session goes to slot picker", StateClosed, ActionOpen, true, StateSlotPicker, false},
		{"open without session goes to sign-in prompt", StateClosed, ActionOpen, false, StateSignInPrompt, false},
		{"sign in resolves prompt", StateSignInPrompt, ActionSignIn, true, StateSlotPicker, false},
		{"select moves to confirming", StateSlotPicker, ActionSelect, true, StateConfirming, false},
		{"re-select stays confirming", StateConfirming, ActionSelect, true, StateConfirming, false},
		{"confirm closes", StateConfirming, ActionConfirm, true, StateClosed, false},
		{"close from prompt", StateSignInPrompt, ActionClose, false, StateClosed, false},
		{"close from picker", StateSlotPicker, ActionClose, true, StateClosed, false},
		// invalid
		{"confirm from closed", StateClosed, ActionConfirm, true, StateClosed, true},
		{"select from closed", StateClosed, ActionSelect, true, StateClosed, true},
		{"select without session", StateSlotPicker, ActionSelect, false, StateSlotPicker, true},
		{"sign in without session", StateSignInPrompt, ActionSignIn, false, StateSignInPrompt, true},
		{"confirm from prompt", StateSignInPrompt, ActionConfirm, true, StateSignInPrompt, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.from, tt.action, tt.session)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Apply(%s, %s): expected error, got state %s", tt.from, tt.action, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply(%s, %s): %v", tt.from, tt.action, err)
			}
			if got != tt.want {
				t.Errorf("Apply(%s, %s) = %s, want %s", tt.from, tt.action, got, tt.want)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	if !CanTransition(StateSlotPicker, ActionSelect) {
		t.Error("select should be allowed in slot picker")
	}
	if CanTransition(StateClosed, ActionConfirm) {
		t.Error("confirm should not be allowed in closed")
	}
}

func TestFlowStoreExpiry(t *testing.T) {
	store := NewFlowStore(10 * time.Millisecond)

	flow := &Flow{ID: "f1", State: StateSlotPicker}
	store.Put(flow)

	if got := store.Get("f1"); got == nil {
		t.Fatal("expected to retrieve flow")
	}
	if got := store.Get("missing"); got != nil {
		t.Fatal("expected nil for unknown flow")
	}

	time.Sleep(20 * time.Millisecond)
	if got := store.Get("f1"); got != nil {
		t.Error("expected expired flow to be dropped")
	}
}

func TestFlowStoreCleanup(t *testing.T) {
	store := NewFlowStore(10 * time.Millisecond)

	// abandoned flows that nobody Gets again
	for i := 0; i < 100; i++ {
		store.Put(&Flow{ID: fmt.Sprintf("f%d", i), State: StateSignInPrompt})
	}
	time.Sleep(20 * time.Millisecond)
	store.Put(&Flow{ID: "fresh", State: StateSlotPicker})

	removed := store.Cleanup()
	if removed != 100 {
		t.Errorf("expected 100 expired flows removed, got %d", removed)
	}

	store.mu.Lock()
	remaining := len(store.flows)
	store.mu.Unlock()
	if remaining != 1 {
		t.Errorf("expected only the fresh flow resident, got %d", remaining)
	}
	if store.Get("fresh") == nil {
		t.Error("fresh flow should survive cleanup")
	}
}

func TestFlowStoreStartCleanup(t *testing.T) {
	store := NewFlowStore(5 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.StartCleanup(ctx, 10*time.Millisecond)

	store.Put(&Flow{ID: "f1", State: StateSignInPrompt})

	deadline := time.After(time.Second)
	for {
		store.mu.Lock()
		n := len(store.flows)
		store.mu.Unlock()
		if n == 0 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("expected background sweep to evict expired flow, %d still resident", n)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestFlowStoreDelete(t *testing.T) {
	store := NewFlowStore(time.Minute)
	store.Put(&Flow{ID: "f2", State: StateConfirming})
	store.Delete("f2")
	if store.Get("f2") != nil {
		t.Error("expected deleted flow to be gone")
	}
}
