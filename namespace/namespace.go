package namespace

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/on-the-ground/modkit_go/errs"
	"github.com/on-the-ground/modkit_go/policy"
	"github.com/on-the-ground/modkit_go/symtab"
)

// DelegateFunc synthesizes a value for a name the symbol table cannot serve.
// Its error is returned to the caller unchanged.
type DelegateFunc func(ctx context.Context, ns *Namespace, name string) (any, error)

// CallFunc runs when the namespace itself is invoked. target is the identity
// the caller assigns the result to, or "" when unknown.
type CallFunc func(ctx context.Context, ns *Namespace, target string, args ...any) (any, error)

type resolveState int

const (
	stateSearchPending resolveState = iota
	stateNormal
)

// Namespace is the policy-governed proxy around a unit's symbol table.
type Namespace struct {
	id         uuid.UUID
	identity   string
	spec       *Spec
	table      *symtab.Table
	lineage    *Namespace
	generation int
	policy     *policy.Policy
	cache      visibleCache
	delegate   DelegateFunc
	call       CallFunc
	state      resolveState
	opts       options
}

type visibleCache struct {
	names []string
	set   map[string]struct{}
	shape uint64
	dirty bool
}

// Wrap creates a first-generation namespace around u. The namespace shares
// u's symbol table. Wrap does not register anything; see Unit.Install.
func Wrap(u *Unit, opts ...Option) *Namespace {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ns := newNamespace(u.identity, u.spec, u.symbols, o)
	ns.opts.logger.Info("wrapped unit",
		zap.String("namespace", ns.identity),
		zap.String("id", ns.id.String()),
	)
	return ns
}

func newNamespace(identity string, spec *Spec, table *symtab.Table, o options) *Namespace {
	ns := &Namespace{
		id:         uuid.New(),
		identity:   identity,
		spec:       spec,
		table:      table,
		generation: 1,
		opts:       o,
		cache:      visibleCache{dirty: true},
	}
	ns.policy = policy.New(policy.WithMatcher(o.matcher), policy.WithOnChange(ns.invalidate))
	ns.state = initialState(o)
	return ns
}

func initialState(o options) resolveState {
	if o.suppressProbe {
		return stateSearchPending
	}
	return stateNormal
}

func (ns *Namespace) invalidate() {
	ns.cache.dirty = true
}

// Identity returns the registry identity of the namespace.
func (ns *Namespace) Identity() string { return ns.identity }

// ID distinguishes namespace instances, including clones of the same unit.
func (ns *Namespace) ID() uuid.UUID { return ns.id }

func (ns *Namespace) Generation() int { return ns.generation }

// Lineage returns the namespace this one was baked from, or nil.
func (ns *Namespace) Lineage() *Namespace { return ns.lineage }

func (ns *Namespace) Spec() *Spec { return ns.spec }

func (ns *Namespace) Doc() string { return ns.spec.doc() }

func (ns *Namespace) Package() string { return ns.spec.pkg() }

func (ns *Namespace) File() string { return ns.spec.file() }

// Path returns the submodule search path. It is never nil: a wrapped unit can
// always host submodules.
func (ns *Namespace) Path() []string { return ns.spec.path() }

// Symbols returns the backing table. Writes to it are seen by the visible
// cache through the table's shape counter.
func (ns *Namespace) Symbols() *symtab.Table { return ns.table }

// Policy returns the namespace policy. Mutating it invalidates the cache.
func (ns *Namespace) Policy() *policy.Policy { return ns.policy }

func (ns *Namespace) Logger() *zap.Logger { return ns.opts.logger }

func (ns *Namespace) Export(patterns ...string) error {
	if err := ns.policy.Export(patterns...); err != nil {
		return fmt.Errorf("%s: export: %w", ns.identity, err)
	}
	return nil
}

func (ns *Namespace) Ban(patterns ...string) error {
	if err := ns.policy.Ban(patterns...); err != nil {
		return fmt.Errorf("%s: ban: %w", ns.identity, err)
	}
	return nil
}

func (ns *Namespace) Unban(patterns ...string) {
	ns.policy.Unban(patterns...)
}

func (ns *Namespace) Alias(alias, source string) error {
	return ns.AliasPairs(alias, source)
}

// AliasPairs registers alias, source, alias, source, ...
func (ns *Namespace) AliasPairs(pairs ...string) error {
	if err := ns.policy.AliasPairs(pairs...); err != nil {
		return fmt.Errorf("%s: alias: %w", ns.identity, err)
	}
	return nil
}

func (ns *Namespace) AliasMap(m map[string]string) error {
	if err := ns.policy.AliasMap(m); err != nil {
		return fmt.Errorf("%s: alias: %w", ns.identity, err)
	}
	return nil
}

// Delegate installs the fallback resolver. nil removes it.
func (ns *Namespace) Delegate(fn DelegateFunc) {
	ns.delegate = fn
}

// OnCall installs the hook run when the namespace is invoked. nil removes it.
func (ns *Namespace) OnCall(fn CallFunc) {
	ns.call = fn
}

// PostInit runs fn against the namespace right away.
func (ns *Namespace) PostInit(fn func(*Namespace) error) error {
	return fn(ns)
}

// Set binds name in the symbol table. Policy does not govern local writes.
func (ns *Namespace) Set(name string, v any) {
	ns.table.Set(name, v)
	ns.invalidate()
}

// Delete removes name from the symbol table.
func (ns *Namespace) Delete(name string) error {
	if !ns.table.Delete(name) {
		return errs.Unresolvable(ns.identity, name, "no such symbol")
	}
	ns.invalidate()
	return nil
}

// Contains reports membership in the visible set, whether or not the value
// can actually be produced.
func (ns *Namespace) Contains(name string) bool {
	_, ok := ns.visibleSet()[name]
	return ok
}

// Visible returns the visible names.
func (ns *Namespace) Visible() []string {
	ns.visibleSet()
	return slices.Clone(ns.cache.names)
}

// Dir lists every symbol and alias name, ignoring exports and bans.
func (ns *Namespace) Dir() []string {
	return append(ns.table.Keys(), ns.policy.AliasKeys()...)
}

func (ns *Namespace) visibleSet() map[string]struct{} {
	if !ns.cache.dirty && ns.cache.shape == ns.table.Shape() {
		return ns.cache.set
	}
	names := ns.policy.ComputeVisible(ns.table.Keys())
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	ns.cache = visibleCache{
		names: names,
		set:   set,
		shape: ns.table.Shape(),
		dirty: false,
	}
	return set
}

// Submodule loads "<identity>.<name>" through the injected SubmoduleFinder.
// It never fails loudly: any miss is reported as ok=false.
func (ns *Namespace) Submodule(ctx context.Context, name string) (Entry, bool) {
	if ns.opts.submodules == nil {
		return nil, false
	}
	return ns.opts.submodules.Submodule(ctx, ns.identity, name)
}

func (ns *Namespace) String() string {
	if ns.lineage == nil {
		if file := ns.File(); file != "" {
			return fmt.Sprintf("<namespace (wrapped) '%s' from '%s'>", ns.identity, file)
		}
		return fmt.Sprintf("<namespace (wrapped) '%s'>", ns.identity)
	}
	return fmt.Sprintf("<namespace '%s' @ %s baked (generation: %d) from '%s'>",
		ns.identity, ns.id, ns.generation, ns.lineage.identity)
}
