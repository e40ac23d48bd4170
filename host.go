package modkit

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/on-the-ground/modkit_go/config"
	"github.com/on-the-ground/modkit_go/errs"
	"github.com/on-the-ground/modkit_go/internal/logging"
	"github.com/on-the-ground/modkit_go/namespace"
	"github.com/on-the-ground/modkit_go/policy"
	"github.com/on-the-ground/modkit_go/registry"
)

var (
	_ namespace.Installer       = (*Host)(nil)
	_ namespace.SubmoduleFinder = (*Host)(nil)
)

// Host is a minimal unit loader: a catalog of specs plus the registry of
// loaded entries. It is not safe for concurrent use.
type Host struct {
	cfg      config.Config
	logger   *zap.Logger
	registry namespace.Registry
	matcher  *policy.Matcher
	specs    map[string]*namespace.Spec
}

type HostOption func(*Host)

// WithConfig replaces the default configuration. cfg is normalized.
func WithConfig(cfg config.Config) HostOption {
	return func(h *Host) { h.cfg = cfg.Normalize() }
}

func WithLogger(l *zap.Logger) HostOption {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithRegistry replaces the default go-memdb registry.
func WithRegistry(r namespace.Registry) HostOption {
	return func(h *Host) { h.registry = r }
}

func NewHost(opts ...HostOption) (*Host, error) {
	h := &Host{
		cfg:    config.Default(),
		logger: zap.NewNop(),
		specs:  make(map[string]*namespace.Spec),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.registry == nil {
		reg, err := registry.New()
		if err != nil {
			return nil, fmt.Errorf("modkit: %w", err)
		}
		h.registry = reg
	}
	h.matcher = policy.NewMatcher(h.cfg.Policy.PatternCacheSize)
	return h, nil
}

func (h *Host) Config() config.Config { return h.cfg }

// Register adds spec to the catalog under spec.Name, replacing any earlier
// spec of that name. Entries already loaded are not affected.
func (h *Host) Register(spec *namespace.Spec) error {
	if spec == nil || spec.Name == "" {
		return errs.MissingName("")
	}
	if spec.Define == nil {
		return errs.Definition(spec.Name, fmt.Errorf("spec has no define function"))
	}
	h.specs[spec.Name] = spec
	return nil
}

// Lookup returns the registry entry for identity without loading anything.
func (h *Host) Lookup(identity string) (namespace.Entry, bool) {
	return h.registry.Lookup(identity)
}

// Import returns the entry registered under identity, loading it from the
// catalog first if needed. While a unit's Define runs, importing it again
// returns the pending entry. A failed Define leaves nothing registered.
func (h *Host) Import(ctx context.Context, identity string) (namespace.Entry, error) {
	if entry, ok := h.registry.Lookup(identity); ok {
		return entry, nil
	}

	spec, ok := h.specs[identity]
	if !ok {
		return nil, errs.NotFound(identity, "")
	}

	unit := namespace.NewUnit(spec, identity, h)
	if err := h.registry.Replace(unit); err != nil {
		return nil, fmt.Errorf("modkit: import %s: %w", identity, err)
	}

	if err := spec.Define(unit); err != nil {
		h.registry.Remove(identity)
		logging.Log(h.logger, logging.LevelWarn, "import failed: define failed", map[string]any{
			"unit":  identity,
			"error": err.Error(),
		})
		return nil, errs.Definition(identity, err)
	}

	entry, ok := h.registry.Lookup(identity)
	if !ok {
		return nil, errs.NotFound(identity, "")
	}
	logging.Log(h.logger, logging.LevelInfo, "imported unit", map[string]any{
		"unit":  identity,
		"entry": fmt.Sprintf("%T", entry),
	})
	return entry, nil
}

// ImportNamespace imports identity and requires the result to be installed.
func (h *Host) ImportNamespace(ctx context.Context, identity string) (*namespace.Namespace, error) {
	entry, err := h.Import(ctx, identity)
	if err != nil {
		return nil, err
	}
	ns, ok := entry.(*namespace.Namespace)
	if !ok {
		return nil, errs.Unresolvable(identity, "", "unit was not installed as a namespace")
	}
	return ns, nil
}

// Install replaces the raw unit registered under identity by a Namespace
// wrapping it. An identity already holding a Namespace is returned as is.
func (h *Host) Install(identity string) (*namespace.Namespace, error) {
	entry, ok := h.registry.Lookup(identity)
	if !ok {
		return nil, errs.Unresolvable(identity, "", "not loaded")
	}

	switch e := entry.(type) {
	case *namespace.Namespace:
		return e, nil
	case *namespace.Unit:
		ns := namespace.Wrap(e, h.namespaceOptions()...)
		if err := h.registry.Replace(ns); err != nil {
			return nil, fmt.Errorf("modkit: install %s: %w", identity, err)
		}
		return ns, nil
	default:
		return nil, errs.Unresolvable(identity, "", fmt.Sprintf("unexpected registry entry %T", entry))
	}
}

// Submodule imports "<parent>.<name>". Every failure is reported as ok=false.
func (h *Host) Submodule(ctx context.Context, parent, name string) (namespace.Entry, bool) {
	identity := parent + "." + name
	entry, err := h.Import(ctx, identity)
	if err != nil {
		h.logger.Debug("submodule probe missed",
			zap.String("unit", identity),
			zap.Error(err),
		)
		return nil, false
	}
	return entry, true
}

// ImportFrom imports identity and fetches names from it, in order. A name the
// unit cannot produce is looked up as a submodule before the failure is
// reported. Banned names never fall back to a submodule.
func (h *Host) ImportFrom(ctx context.Context, identity string, names ...string) ([]any, error) {
	entry, err := h.Import(ctx, identity)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(names))
	for _, name := range names {
		if ns, ok := entry.(*namespace.Namespace); ok {
			if err := ns.CheckBan(name); err != nil {
				return nil, err
			}
		}

		v, err := fetch(namespace.WithBootstrapProbe(ctx), entry, name)
		if err != nil {
			if sub, ok := h.Submodule(ctx, identity, name); ok {
				out = append(out, sub)
				continue
			}
			// only the bootstrap answer skipped resolution; any other error is final
			if !errors.Is(err, errs.ErrNotFound) {
				return nil, err
			}
			if v, err = fetch(ctx, entry, name); err != nil {
				return nil, err
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func fetch(ctx context.Context, entry namespace.Entry, name string) (any, error) {
	switch e := entry.(type) {
	case *namespace.Namespace:
		return e.Get(ctx, name)
	case *namespace.Unit:
		if v, ok := e.Get(name); ok {
			return v, nil
		}
		return nil, errs.Unresolvable(e.Identity(), name, "no such symbol")
	default:
		return nil, errs.Unresolvable(entry.Identity(), name, fmt.Sprintf("unexpected registry entry %T", entry))
	}
}

// Unload removes identity from the registry.
func (h *Host) Unload(identity string) bool {
	return h.registry.Remove(identity)
}

// Children lists loaded identities below parent, when the registry can
// enumerate them.
func (h *Host) Children(parent string) []string {
	if lister, ok := h.registry.(interface{ Children(string) []string }); ok {
		return lister.Children(parent)
	}
	return nil
}

// Loaded lists every loaded identity, when the registry can enumerate them.
func (h *Host) Loaded() []string {
	if lister, ok := h.registry.(interface{ Identities() []string }); ok {
		return lister.Identities()
	}
	return nil
}

// Catalog lists registered spec names, sorted.
func (h *Host) Catalog() []string {
	return slices.Sorted(maps.Keys(h.specs))
}

func (h *Host) namespaceOptions() []namespace.Option {
	return []namespace.Option{
		namespace.WithRegistry(h.registry),
		namespace.WithSubmoduleFinder(h),
		namespace.WithLogger(h.logger),
		namespace.WithMatcher(h.matcher),
		namespace.WithBootstrapProbeSuppression(h.cfg.BootstrapProbeSuppressed()),
	}
}
