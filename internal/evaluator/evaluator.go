// Package evaluator turns query strings into asynchronously evaluated assets.
// A query is a pipeline of commands ("text-Hello/uppercase"); Evaluate returns
// a shared handle immediately while a background goroutine drives the pipeline
// and reports status, progress and log messages through the asset.
package evaluator

import (
	"fmt"
	"sync"

	"github.com/liquers/liquers-go/internal/asset"
	"github.com/liquers/liquers-go/internal/errors"
	"github.com/liquers/liquers-go/internal/logging"
	"github.com/liquers/liquers-go/internal/store"
)

// Evaluator starts evaluation of a query and returns a handle to the
// in-flight or cached computation. Evaluate returns promptly: a query that
// fails synchronously (for example, a parse error) yields a valid handle
// already carrying the error, never a panic or an error return.
type Evaluator interface {
	Evaluate(query string) *asset.Ref
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStore attaches a data store, enabling the store command and cache
// invalidation on key changes.
func WithStore(s *store.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithLogger attaches a structured logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// Pipeline is the built-in Evaluator. Identical queries share one computation
// through the cache; superseded or unobserved computations are never force
// terminated, they simply run to completion and stay reusable.
type Pipeline struct {
	mu       sync.Mutex
	commands map[string]CommandFunc
	cache    map[string]*asset.Ref
	deps     map[string]map[string]bool // store key -> queries that consumed it
	store    *store.Store
	logger   *logging.Logger
}

// NewPipeline creates a Pipeline with the builtin command set.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		commands: builtinCommands(),
		cache:    make(map[string]*asset.Ref),
		deps:     make(map[string]map[string]bool),
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register adds or replaces a command. Registration after evaluations have
// started affects only future evaluations.
func (p *Pipeline) Register(name string, fn CommandFunc) error {
	if !validName(name) {
		return fmt.Errorf("evaluator: invalid command name %q", name)
	}
	if fn == nil {
		return fmt.Errorf("evaluator: nil command function for %q", name)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.commands[name] = fn
	return nil
}

// Evaluate returns a handle for the query, starting a background evaluation
// unless a live cached computation already exists. Handles for identical
// queries are shared until invalidated.
func (p *Pipeline) Evaluate(query string) *asset.Ref {
	actions, err := ParseQuery(query)
	if err != nil {
		p.logger.Warn("query rejected", "query", query, "error", err.Error())
		return asset.NewErrorRef(query, err)
	}

	p.mu.Lock()
	if cached, ok := p.cache[query]; ok && cached.Status() != asset.StatusExpired {
		p.mu.Unlock()
		p.logger.Debug("cache hit", "query", query)
		return cached
	}
	ref := asset.New(query).Ref()
	p.cache[query] = ref
	p.mu.Unlock()

	ref.SetStatus(asset.StatusSubmitted)
	go p.run(ref, actions)
	return ref
}

// run executes the pipeline on its own goroutine.
func (p *Pipeline) run(ref *asset.Ref, actions []Action) {
	query := ref.Query()
	log := p.logger.WithQuery(query)
	log.Debug("evaluation started", "steps", len(actions))

	ref.SetStatus(asset.StatusRunning)

	var value *asset.Value
	total := len(actions)
	for i, action := range actions {
		p.mu.Lock()
		fn, ok := p.commands[action.Name]
		p.mu.Unlock()
		if !ok {
			err := errors.NewCommandError(action.Name, i+1, errors.ErrUnknownCommand)
			log.Warn("evaluation failed", "step", i+1, "error", err.Error())
			ref.Fail(err)
			return
		}

		ref.SetProgress(i+1, total, action.Name)
		out, err := fn(&CommandContext{
			Action:  action,
			Input:   value,
			Ref:     ref,
			Store:   p.store,
			UsedKey: func(key string) { p.recordDep(key, query) },
		})
		if err != nil {
			log.Warn("evaluation failed", "step", i+1, "command", action.Name, "error", err.Error())
			ref.Fail(errors.NewCommandError(action.Name, i+1, err))
			return
		}
		value = out
	}

	ref.Log(asset.LogInfo, "evaluation finished")
	ref.Finish(value)
	log.Debug("evaluation finished")
}

func (p *Pipeline) recordDep(key, query string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deps[key] == nil {
		p.deps[key] = make(map[string]bool)
	}
	p.deps[key][query] = true
}

// InvalidateKey expires every cached computation that consumed the given
// store key. Expired entries stay in the cache so monitors holding them see
// the expiry notification; the next Evaluate for the query starts fresh.
func (p *Pipeline) InvalidateKey(key string) {
	p.mu.Lock()
	queries := make([]string, 0, len(p.deps[key]))
	for q := range p.deps[key] {
		queries = append(queries, q)
	}
	delete(p.deps, key)
	refs := make([]*asset.Ref, 0, len(queries))
	for _, q := range queries {
		if ref, ok := p.cache[q]; ok {
			refs = append(refs, ref)
		}
	}
	p.mu.Unlock()

	for _, ref := range refs {
		ref.Expire()
	}
	if len(refs) > 0 {
		p.logger.Info("store key invalidated cached queries", "key", key, "count", len(refs))
	}
}

// Cached reports whether a live computation exists for the query.
func (p *Pipeline) Cached(query string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	ref, ok := p.cache[query]
	return ok && ref.Status() != asset.StatusExpired
}
