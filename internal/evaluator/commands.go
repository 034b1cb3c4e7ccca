package evaluator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	exprlang "github.com/expr-lang/expr"

	"github.com/liquers/liquers-go/internal/asset"
	"github.com/liquers/liquers-go/internal/store"
)

// CommandContext is passed to a command when its pipeline step runs.
type CommandContext struct {
	// Action is the parsed action being executed.
	Action Action
	// Input is the value produced by the previous step, or nil for the first.
	Input *asset.Value
	// Ref is the asset under evaluation, for progress and log reporting.
	Ref *asset.Ref
	// Store is the data store, or nil when the evaluator has none.
	Store *store.Store
	// UsedKey records a store key this command consumed, enabling cache
	// invalidation when the key changes.
	UsedKey func(key string)
}

// CommandFunc executes one pipeline step.
type CommandFunc func(ctx *CommandContext) (*asset.Value, error)

// builtinCommands returns the default command set.
func builtinCommands() map[string]CommandFunc {
	return map[string]CommandFunc{
		"text":      cmdText,
		"uppercase": cmdUppercase,
		"lowercase": cmdLowercase,
		"concat":    cmdConcat,
		"replace":   cmdReplace,
		"length":    cmdLength,
		"expr":      cmdExpr,
		"store":     cmdStore,
		"sleep":     cmdSleep,
	}
}

// cmdText produces a literal text value from the raw argument.
// "text-Hello" -> "Hello"; dashes in the argument are preserved.
func cmdText(ctx *CommandContext) (*asset.Value, error) {
	return asset.NewTextValue(ctx.Action.Raw), nil
}

func cmdUppercase(ctx *CommandContext) (*asset.Value, error) {
	if ctx.Input == nil {
		return nil, fmt.Errorf("uppercase: no input value")
	}
	return asset.NewTextValue(strings.ToUpper(ctx.Input.Text())), nil
}

func cmdLowercase(ctx *CommandContext) (*asset.Value, error) {
	if ctx.Input == nil {
		return nil, fmt.Errorf("lowercase: no input value")
	}
	return asset.NewTextValue(strings.ToLower(ctx.Input.Text())), nil
}

// cmdConcat appends the raw argument to the input text.
func cmdConcat(ctx *CommandContext) (*asset.Value, error) {
	if ctx.Input == nil {
		return nil, fmt.Errorf("concat: no input value")
	}
	return asset.NewTextValue(ctx.Input.Text() + ctx.Action.Raw), nil
}

// cmdReplace substitutes all occurrences of the first argument with the
// second: "replace-l-w".
func cmdReplace(ctx *CommandContext) (*asset.Value, error) {
	if ctx.Input == nil {
		return nil, fmt.Errorf("replace: no input value")
	}
	if len(ctx.Action.Args) != 2 {
		return nil, fmt.Errorf("replace: want 2 arguments, got %d", len(ctx.Action.Args))
	}
	out := strings.ReplaceAll(ctx.Input.Text(), ctx.Action.Args[0], ctx.Action.Args[1])
	return asset.NewTextValue(out), nil
}

func cmdLength(ctx *CommandContext) (*asset.Value, error) {
	if ctx.Input == nil {
		return nil, fmt.Errorf("length: no input value")
	}
	return asset.NewAnyValue(len(ctx.Input.Text())), nil
}

// cmdExpr evaluates the raw argument as an expr-lang expression. The piped
// value is available as "value" (raw) and "text" (rendered as a string).
func cmdExpr(ctx *CommandContext) (*asset.Value, error) {
	if ctx.Action.Raw == "" {
		return nil, fmt.Errorf("expr: empty expression")
	}
	env := map[string]any{}
	if ctx.Input != nil {
		env["value"] = ctx.Input.Raw()
		env["text"] = ctx.Input.Text()
	}
	result, err := exprlang.Eval(ctx.Action.Raw, env)
	if err != nil {
		return nil, fmt.Errorf("expr: %w", err)
	}
	return asset.NewAnyValue(result), nil
}

// cmdStore loads the raw argument as a key from the data store.
func cmdStore(ctx *CommandContext) (*asset.Value, error) {
	if ctx.Store == nil {
		return nil, fmt.Errorf("store: no data store configured")
	}
	key := ctx.Action.Raw
	if key == "" {
		return nil, fmt.Errorf("store: empty key")
	}
	data, err := ctx.Store.Get(key)
	if err != nil {
		return nil, err
	}
	if ctx.UsedKey != nil {
		ctx.UsedKey(key)
	}
	return asset.NewBytesValue(data), nil
}

// cmdSleep pauses the pipeline for the given number of milliseconds, passing
// the input through. Exists for exercising slow evaluations.
func cmdSleep(ctx *CommandContext) (*asset.Value, error) {
	if len(ctx.Action.Args) != 1 {
		return nil, fmt.Errorf("sleep: want 1 argument, got %d", len(ctx.Action.Args))
	}
	ms, err := strconv.Atoi(ctx.Action.Args[0])
	if err != nil || ms < 0 {
		return nil, fmt.Errorf("sleep: invalid duration %q", ctx.Action.Args[0])
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
	if ctx.Input == nil {
		return asset.NewTextValue(""), nil
	}
	return ctx.Input, nil
}
