package evaluator

import (
	"fmt"
	"testing"
	"time"

	"github.com/liquers/liquers-go/internal/asset"
	"github.com/liquers/liquers-go/internal/errors"
	"github.com/liquers/liquers-go/internal/store"
)

// awaitTerminal polls a ref until it reaches Ready or Error.
func awaitTerminal(t *testing.T, ref *asset.Ref) asset.Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if ref.Status().Terminal() {
			return ref.Snapshot()
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("evaluation of %q did not finish; status = %v", ref.Query(), ref.Status())
	return asset.Snapshot{}
}

func TestPipeline_TextQuery(t *testing.T) {
	p := NewPipeline()
	ref := p.Evaluate("text-Hello")

	snap := awaitTerminal(t, ref)
	if snap.Status != asset.StatusReady {
		t.Fatalf("status = %v, want ready (err: %v)", snap.Status, snap.Err)
	}
	if snap.Text() != "Hello" {
		t.Errorf("value = %q, want %q", snap.Text(), "Hello")
	}
}

func TestPipeline_UppercasePipeline(t *testing.T) {
	p := NewPipeline()
	snap := awaitTerminal(t, p.Evaluate("text-Hello/uppercase"))
	if snap.Text() != "HELLO" {
		t.Errorf("value = %q, want %q", snap.Text(), "HELLO")
	}
}

func TestPipeline_ChainedCommands(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"text-Hello/lowercase", "hello"},
		{"text-Hello/concat- World", "Hello World"},
		{"text-hello/replace-l-w", "hewwo"},
		{"text-Hello-World", "Hello-World"},
		{"text-abc/length", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := NewPipeline()
			snap := awaitTerminal(t, p.Evaluate(tt.query))
			if snap.Status != asset.StatusReady {
				t.Fatalf("status = %v, err = %v", snap.Status, snap.Err)
			}
			if got := snap.Text(); got != tt.want {
				t.Errorf("value = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPipeline_ExprCommand(t *testing.T) {
	p := NewPipeline()
	snap := awaitTerminal(t, p.Evaluate("text-abc/expr-text + text"))
	if snap.Status != asset.StatusReady {
		t.Fatalf("status = %v, err = %v", snap.Status, snap.Err)
	}
	if snap.Text() != "abcabc" {
		t.Errorf("value = %q, want %q", snap.Text(), "abcabc")
	}
}

func TestPipeline_ExprError(t *testing.T) {
	p := NewPipeline()
	snap := awaitTerminal(t, p.Evaluate("text-abc/expr-nonexistent("))
	if snap.Status != asset.StatusError {
		t.Fatalf("status = %v, want error", snap.Status)
	}
	if snap.Err == nil {
		t.Error("snapshot carries no error")
	}
}

func TestPipeline_ParseErrorYieldsErrorRef(t *testing.T) {
	p := NewPipeline()
	for _, query := range []string{"", "text-Hello//uppercase", "UPPER-case", "-nope"} {
		ref := p.Evaluate(query)
		if ref == nil {
			t.Fatalf("Evaluate(%q) = nil", query)
		}
		if got := ref.Status(); got != asset.StatusError {
			t.Errorf("Evaluate(%q).Status() = %v, want error", query, got)
		}
		if !errors.IsParseError(ref.Err()) {
			t.Errorf("Evaluate(%q) error = %v, want a parse error", query, ref.Err())
		}
	}
}

func TestPipeline_UnknownCommand(t *testing.T) {
	p := NewPipeline()
	snap := awaitTerminal(t, p.Evaluate("text-x/frobnicate"))
	if snap.Status != asset.StatusError {
		t.Fatalf("status = %v, want error", snap.Status)
	}
	if !errors.Is(snap.Err, errors.ErrUnknownCommand) {
		t.Errorf("error = %v, want unknown command", snap.Err)
	}
	if snap.HasValue() {
		t.Error("errored evaluation still has a value")
	}
}

func TestPipeline_CacheSharesHandles(t *testing.T) {
	p := NewPipeline()
	a := p.Evaluate("text-shared/uppercase")
	b := p.Evaluate("text-shared/uppercase")
	if a.ID() != b.ID() {
		t.Error("identical queries did not share a computation")
	}
	if !p.Cached("text-shared/uppercase") {
		t.Error("Cached() = false after Evaluate()")
	}

	c := p.Evaluate("text-other")
	if c.ID() == a.ID() {
		t.Error("distinct queries share a computation")
	}
}

func TestPipeline_RegisterCustomCommand(t *testing.T) {
	p := NewPipeline()
	err := p.Register("reverse", func(ctx *CommandContext) (*asset.Value, error) {
		if ctx.Input == nil {
			return nil, fmt.Errorf("reverse: no input value")
		}
		runes := []rune(ctx.Input.Text())
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return asset.NewTextValue(string(runes)), nil
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	snap := awaitTerminal(t, p.Evaluate("text-abc/reverse"))
	if snap.Text() != "cba" {
		t.Errorf("value = %q, want %q", snap.Text(), "cba")
	}
}

func TestPipeline_RegisterRejectsInvalid(t *testing.T) {
	p := NewPipeline()
	if err := p.Register("Bad-Name", func(*CommandContext) (*asset.Value, error) { return nil, nil }); err == nil {
		t.Error("Register() accepted an invalid name")
	}
	if err := p.Register("", func(*CommandContext) (*asset.Value, error) { return nil, nil }); err == nil {
		t.Error("Register() accepted an empty name")
	}
	if err := p.Register("ok", nil); err == nil {
		t.Error("Register() accepted a nil function")
	}
}

func TestPipeline_ProgressAndLog(t *testing.T) {
	p := NewPipeline()
	snap := awaitTerminal(t, p.Evaluate("text-x/uppercase/lowercase"))

	if snap.Metadata.Progress.Total != 3 {
		t.Errorf("progress total = %d, want 3", snap.Metadata.Progress.Total)
	}
	if snap.Metadata.Progress.Step != 3 {
		t.Errorf("progress step = %d, want 3", snap.Metadata.Progress.Step)
	}
	if len(snap.Metadata.Log) == 0 {
		t.Error("no log entries after evaluation")
	}
}

func TestPipeline_StoreCommand(t *testing.T) {
	s, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	if err := s.Set("input.txt", []byte("stored data")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	p := NewPipeline(WithStore(s))
	snap := awaitTerminal(t, p.Evaluate("store-input.txt/uppercase"))
	if snap.Status != asset.StatusReady {
		t.Fatalf("status = %v, err = %v", snap.Status, snap.Err)
	}
	if snap.Text() != "STORED DATA" {
		t.Errorf("value = %q, want %q", snap.Text(), "STORED DATA")
	}
}

func TestPipeline_StoreMissingKey(t *testing.T) {
	s, _ := store.New(t.TempDir())
	p := NewPipeline(WithStore(s))
	snap := awaitTerminal(t, p.Evaluate("store-missing.txt"))
	if snap.Status != asset.StatusError {
		t.Errorf("status = %v, want error", snap.Status)
	}
}

func TestPipeline_StoreWithoutStore(t *testing.T) {
	p := NewPipeline()
	snap := awaitTerminal(t, p.Evaluate("store-x.txt"))
	if snap.Status != asset.StatusError {
		t.Errorf("status = %v, want error", snap.Status)
	}
}

func TestPipeline_InvalidateKeyExpiresCached(t *testing.T) {
	s, _ := store.New(t.TempDir())
	s.Set("input.txt", []byte("v1"))

	p := NewPipeline(WithStore(s))
	ref := p.Evaluate("store-input.txt")
	awaitTerminal(t, ref)

	p.InvalidateKey("input.txt")
	if got := ref.Status(); got != asset.StatusExpired {
		t.Fatalf("status = %v after invalidation, want expired", got)
	}
	if p.Cached("store-input.txt") {
		t.Error("Cached() = true for an expired entry")
	}

	// A fresh request starts a new computation seeing the new data.
	s.Set("input.txt", []byte("v2"))
	ref2 := p.Evaluate("store-input.txt")
	if ref2.ID() == ref.ID() {
		t.Error("expired computation was reused")
	}
	snap := awaitTerminal(t, ref2)
	if snap.Text() != "v2" {
		t.Errorf("value = %q, want %q", snap.Text(), "v2")
	}
}

func TestPipeline_InvalidateUnrelatedKey(t *testing.T) {
	p := NewPipeline()
	ref := p.Evaluate("text-x")
	awaitTerminal(t, ref)

	p.InvalidateKey("some-key")
	if got := ref.Status(); got != asset.StatusReady {
		t.Errorf("status = %v after unrelated invalidation, want ready", got)
	}
}

func TestPipeline_SleepCommand(t *testing.T) {
	p := NewPipeline()
	start := time.Now()
	ref := p.Evaluate("text-x/sleep-30")
	if ref.Status().Terminal() && time.Since(start) < 10*time.Millisecond {
		t.Error("sleep evaluation finished synchronously")
	}
	snap := awaitTerminal(t, ref)
	if snap.Text() != "x" {
		t.Errorf("value = %q, want %q", snap.Text(), "x")
	}
}

func TestParseQuery(t *testing.T) {
	actions, err := ParseQuery("text-Hello-World/expr-1 - 2/uppercase")
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	if len(actions) != 3 {
		t.Fatalf("len(actions) = %d, want 3", len(actions))
	}
	if actions[0].Name != "text" || actions[0].Raw != "Hello-World" {
		t.Errorf("action 0 = %+v", actions[0])
	}
	if len(actions[0].Args) != 2 {
		t.Errorf("action 0 args = %v, want 2 dash-separated tokens", actions[0].Args)
	}
	if actions[1].Name != "expr" || actions[1].Raw != "1 - 2" {
		t.Errorf("action 1 = %+v", actions[1])
	}
	if actions[2].Name != "uppercase" || actions[2].Raw != "" {
		t.Errorf("action 2 = %+v", actions[2])
	}
}
