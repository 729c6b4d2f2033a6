package lifecycle

import (
	"testing"

	"tourbook/pkg/model"
)

func TestValidTransitions(t *testing.T) {
	valid := []struct {
		from, to model.BookingStatus
	}{
		{model.StatusDraft, model.StatusPending},
		{model.StatusPending, model.StatusConfirmed},
		{model.StatusPending, model.StatusCancelled},
		{model.StatusConfirmed, model.StatusCompleted},
		{model.StatusConfirmed, model.StatusCancelled},
	}
	for _, tc := range valid {
		if err := ValidateTransition(tc.from, tc.to); err != nil {
			t.Errorf("expected %s -> %s to be allowed, got %v", tc.from, tc.to, err)
		}
	}
}

func TestPendingCannotSkipToCompleted(t *testing.T) {
	if err := ValidateTransition(model.StatusPending, model.StatusCompleted); err == nil {
		t.Fatal("pending must pass through confirmed before completing")
	}
}

func TestTerminalStatesRejectEverything(t *testing.T) {
	all := []model.BookingStatus{
		model.StatusDraft,
		model.StatusPending,
		model.StatusConfirmed,
		model.StatusCompleted,
		model.StatusCancelled,
	}
	for _, terminal := range []model.BookingStatus{model.StatusCompleted, model.StatusCancelled} {
		for _, to := range all {
			if err := ValidateTransition(terminal, to); err == nil {
				t.Errorf("expected %s -> %s to be rejected", terminal, to)
			}
		}
	}
}

func TestUnknownStatuses(t *testing.T) {
	if err := ValidateTransition("nonsense", model.StatusPending); err == nil {
		t.Error("expected unknown source status to be rejected")
	}
	if err := ValidateTransition(model.StatusPending, "nonsense"); err == nil {
		t.Error("expected unknown target status to be rejected")
	}
}

func TestCanCancel(t *testing.T) {
	cancellable := map[model.BookingStatus]bool{
		model.StatusDraft:     false,
		model.StatusPending:   true,
		model.StatusConfirmed: true,
		model.StatusCompleted: false,
		model.StatusCancelled: false,
	}
	for status, want := range cancellable {
		if got := CanCancel(status); got != want {
			t.Errorf("CanCancel(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestTerminal(t *testing.T) {
	if !Terminal(model.StatusCompleted) || !Terminal(model.StatusCancelled) {
		t.Error("completed and cancelled are terminal")
	}
	if Terminal(model.StatusPending) || Terminal(model.StatusConfirmed) || Terminal(model.StatusDraft) {
		t.Error("non-terminal status reported terminal")
	}
}
