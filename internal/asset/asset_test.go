package asset

import (
	"errors"
	"testing"
)

func TestNew_InitialState(t *testing.T) {
	ref := New("text-Hello").Ref()

	if got := ref.Status(); got != StatusNone {
		t.Errorf("Status() = %v, want %v", got, StatusNone)
	}
	if _, ok := ref.TryValue(); ok {
		t.Error("TryValue() returned a value before evaluation")
	}
	if err := ref.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}

	md := ref.Metadata()
	if md.Query != "text-Hello" {
		t.Errorf("Metadata().Query = %q, want %q", md.Query, "text-Hello")
	}
	if md.Status != StatusNone {
		t.Errorf("Metadata().Status = %v, want %v", md.Status, StatusNone)
	}
}

func TestRef_ID_Unique(t *testing.T) {
	a := New("q").Ref()
	b := New("q").Ref()
	if a.ID() == b.ID() {
		t.Errorf("two assets share ID %q", a.ID())
	}
}

func TestRef_FinishSetsReady(t *testing.T) {
	ref := New("q").Ref()
	ref.SetStatus(StatusSubmitted)
	ref.SetStatus(StatusRunning)
	ref.Finish(NewTextValue("Hello"))

	if got := ref.Status(); got != StatusReady {
		t.Errorf("Status() = %v, want %v", got, StatusReady)
	}
	v, ok := ref.TryValue()
	if !ok {
		t.Fatal("TryValue() not available after Finish()")
	}
	if v.Text() != "Hello" {
		t.Errorf("value = %q, want %q", v.Text(), "Hello")
	}
}

func TestRef_FailClearsValue(t *testing.T) {
	ref := New("q").Ref()
	ref.Finish(NewTextValue("partial"))
	ref.Fail(errors.New("boom"))

	if got := ref.Status(); got != StatusError {
		t.Errorf("Status() = %v, want %v", got, StatusError)
	}
	if _, ok := ref.TryValue(); ok {
		t.Error("TryValue() available after Fail()")
	}
	if ref.Err() == nil {
		t.Error("Err() = nil after Fail()")
	}
	md := ref.Metadata()
	if md.Message != "boom" {
		t.Errorf("Metadata().Message = %q, want %q", md.Message, "boom")
	}
}

func TestRef_Subscribe_InitialPending(t *testing.T) {
	ref := New("q").Ref()
	rx := ref.Subscribe()

	// A fresh subscription carries one pending change so the subscriber
	// observes the current state even if nothing progresses.
	if !rx.Changed() {
		t.Fatal("new subscription has no pending change")
	}
	if rx.Changed() {
		t.Error("pending change observed twice")
	}

	ref.SetStatus(StatusRunning)
	if !rx.Changed() {
		t.Error("status change not observed")
	}
}

func TestRef_Subscribe_Coalesces(t *testing.T) {
	ref := New("q").Ref()
	rx := ref.Subscribe()
	rx.Changed() // consume initial

	ref.SetStatus(StatusSubmitted)
	ref.SetStatus(StatusRunning)
	ref.SetProgress(1, 3, "step 1")
	ref.SetProgress(2, 3, "step 2")
	ref.Finish(NewTextValue("done"))

	if !rx.Changed() {
		t.Fatal("burst of changes not observed")
	}
	if rx.Changed() {
		t.Error("burst of changes observed more than once")
	}
	// The final state is what a re-read sees.
	if got := ref.Status(); got != StatusReady {
		t.Errorf("Status() = %v, want %v", got, StatusReady)
	}
}

func TestRef_SetStatus_SameStatusNoNotify(t *testing.T) {
	ref := New("q").Ref()
	ref.SetStatus(StatusRunning)
	rx := ref.Subscribe()
	rx.Changed() // consume initial

	ref.SetStatus(StatusRunning)
	if rx.Changed() {
		t.Error("no-op status transition fired a notification")
	}
}

func TestRef_Expire(t *testing.T) {
	ref := New("q").Ref()

	// Expire on a non-ready asset is a no-op.
	ref.SetStatus(StatusRunning)
	ref.Expire()
	if got := ref.Status(); got != StatusRunning {
		t.Errorf("Status() = %v after Expire() on running asset, want %v", got, StatusRunning)
	}

	ref.Finish(NewTextValue("v"))
	ref.Expire()
	if got := ref.Status(); got != StatusExpired {
		t.Errorf("Status() = %v, want %v", got, StatusExpired)
	}
	// The stale value stays visible until re-evaluation.
	if _, ok := ref.TryValue(); !ok {
		t.Error("TryValue() lost the value on expiry")
	}
}

func TestSnapshot_PureProjection(t *testing.T) {
	ref := New("q").Ref()
	ref.SetStatus(StatusRunning)
	ref.SetProgress(1, 2, "halfway")

	snap := ref.Snapshot()
	if snap.HasValue() {
		t.Error("snapshot of a running asset has a value")
	}
	if snap.Status != StatusRunning {
		t.Errorf("snapshot status = %v, want %v", snap.Status, StatusRunning)
	}
	if snap.Metadata.Progress.Message != "halfway" {
		t.Errorf("snapshot progress = %q, want %q", snap.Metadata.Progress.Message, "halfway")
	}

	// Later mutations must not leak into the captured snapshot.
	ref.Finish(NewTextValue("done"))
	if snap.HasValue() || snap.Status != StatusRunning {
		t.Error("snapshot mutated after capture")
	}
}

func TestSnapshot_LogIsolation(t *testing.T) {
	ref := New("q").Ref()
	ref.Log(LogInfo, "first")
	snap := ref.Snapshot()
	ref.Log(LogInfo, "second")

	if len(snap.Metadata.Log) != 1 {
		t.Errorf("snapshot log length = %d, want 1", len(snap.Metadata.Log))
	}
}

func TestNewErrorRef(t *testing.T) {
	ref := NewErrorRef("bad//query", errors.New("parse error"))

	if got := ref.Status(); got != StatusError {
		t.Errorf("Status() = %v, want %v", got, StatusError)
	}
	snap := ref.Snapshot()
	if snap.Err == nil {
		t.Error("snapshot of an error ref carries no error")
	}
	if snap.HasValue() {
		t.Error("snapshot of an error ref carries a value")
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusNone, "none"},
		{StatusSubmitted, "submitted"},
		{StatusRunning, "running"},
		{StatusReady, "ready"},
		{StatusError, "error"},
		{StatusExpired, "expired"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatus_Terminal(t *testing.T) {
	if !StatusReady.Terminal() || !StatusError.Terminal() {
		t.Error("Ready/Error should be terminal")
	}
	if StatusRunning.Terminal() || StatusExpired.Terminal() {
		t.Error("Running/Expired should not be terminal")
	}
}

func TestValue_Text(t *testing.T) {
	tests := []struct {
		name string
		v    *Value
		want string
	}{
		{"string", NewTextValue("abc"), "abc"},
		{"bytes", NewBytesValue([]byte("xyz")), "xyz"},
		{"float", NewAnyValue(3.5), "3.5"},
		{"int", NewAnyValue(42), "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}
