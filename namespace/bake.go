package namespace

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/on-the-ground/modkit_go/errs"
)

var errNoDefine = errors.New("no recorded construction procedure")

// BakeOption selects which entries a clone shares with its parent.
type BakeOption func(*bakeConfig)

type bakeConfig struct {
	shared   []string
	shareAll bool
}

// WithShared binds names in the clone to the parent's very values instead of
// the freshly defined ones.
func WithShared(names ...string) BakeOption {
	return func(c *bakeConfig) { c.shared = append(c.shared, names...) }
}

// WithSharedAll shares every parent entry (a shallow bake). The clone still
// gets its own table: names added or removed later are not shared.
func WithSharedAll() BakeOption {
	return func(c *bakeConfig) { c.shareAll = true }
}

// Bake produces the next generation of the namespace under identity.
//
// The unit's Define runs again from scratch, so the clone starts from pristine
// state rather than from the parent's current values. The clone copies the
// parent's policy, keeps the hooks set by the fresh Define (or inherits the
// parent's when Define sets none), and is registered under identity, evicting
// any occupant. An empty identity is taken from the LoadContext's assignment
// target. If Define fails nothing is registered.
func (ns *Namespace) Bake(ctx context.Context, identity string, opts ...BakeOption) (*Namespace, error) {
	if identity == "" {
		identity, _ = ns.opts.loadCtx.AssignTarget(ctx)
	}
	if identity == "" {
		return nil, errs.MissingName(ns.identity)
	}

	var cfg bakeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	for _, name := range cfg.shared {
		if !ns.table.Has(name) {
			return nil, errs.Unresolvable(ns.identity, name, "cannot share a name the parent does not define")
		}
	}

	if ns.spec == nil || ns.spec.Define == nil {
		return nil, errs.Definition(identity, errNoDefine)
	}

	staging := &stagingInstaller{opts: ns.opts}
	unit := NewUnit(ns.spec, identity, staging)
	staging.unit = unit
	if err := ns.spec.Define(unit); err != nil {
		ns.opts.logger.Warn("bake aborted: define failed",
			zap.String("namespace", ns.identity),
			zap.String("target", identity),
			zap.Error(err),
		)
		return nil, errs.Definition(identity, err)
	}

	clone := staging.ns
	if clone == nil {
		clone = newNamespace(identity, ns.spec, unit.symbols, ns.opts)
	}
	clone.lineage = ns
	clone.generation = ns.generation + 1
	clone.policy = ns.policy.Clone(clone.invalidate)
	clone.invalidate()
	if clone.delegate == nil {
		clone.delegate = ns.delegate
	}
	if clone.call == nil {
		clone.call = ns.call
	}

	if cfg.shareAll {
		for name, v := range ns.table.All() {
			clone.table.Set(name, v)
		}
	}
	for _, name := range cfg.shared {
		v, _ := ns.table.Get(name)
		clone.table.Set(name, v)
	}

	if ns.opts.registry != nil {
		if err := ns.opts.registry.Replace(clone); err != nil {
			return nil, err
		}
	}

	ns.opts.logger.Info("baked namespace",
		zap.String("namespace", clone.identity),
		zap.String("from", ns.identity),
		zap.Int("generation", clone.generation),
		zap.Uint64("policy", clone.policy.Fingerprint()),
		zap.Strings("shared", cfg.shared),
		zap.Bool("shared_all", cfg.shareAll),
	)
	return clone, nil
}

// stagingInstaller receives Unit.Install calls made by Define while baking, so
// the real registry stays untouched until the clone is complete.
type stagingInstaller struct {
	unit *Unit
	ns   *Namespace
	opts options
}

func (s *stagingInstaller) Install(identity string) (*Namespace, error) {
	if identity != s.unit.identity {
		return nil, errs.Unresolvable(identity, "", "only the unit being baked can be installed")
	}
	if s.ns == nil {
		s.ns = newNamespace(identity, s.unit.spec, s.unit.symbols, s.opts)
	}
	return s.ns, nil
}
