package namespace

import (
	"context"

	"go.uber.org/zap"

	"github.com/on-the-ground/modkit_go/errs"
)

// Get resolves name.
//
// The first call on a namespace may be answered with errs.ErrNotFound when the
// LoadContext reports the host loader's bootstrap probe. Afterwards the order
// is: ban, visibility, symbol, alias source, delegate.
func (ns *Namespace) Get(ctx context.Context, name string) (any, error) {
	if ns.state == stateSearchPending {
		ns.state = stateNormal
		if ns.opts.loadCtx.InBootstrapProbe(ctx) {
			ns.opts.logger.Debug("bootstrap probe answered without policy",
				zap.String("namespace", ns.identity),
				zap.String("name", name),
			)
			return nil, errs.NotFound(ns.identity, name)
		}
	}

	v, err := ns.resolve(ctx, name)
	if err != nil {
		ns.opts.logger.Debug("resolution failed",
			zap.String("namespace", ns.identity),
			zap.String("name", name),
			zap.Error(err),
		)
	}
	return v, err
}

func (ns *Namespace) resolve(ctx context.Context, name string) (any, error) {
	if err := ns.CheckBan(name); err != nil {
		return nil, err
	}
	source := ns.policy.ResolveAlias(name)

	if _, visible := ns.visibleSet()[name]; !visible && ns.delegate == nil {
		return nil, errs.Unresolvable(ns.identity, name, "not visible")
	}

	if v, ok := ns.table.Get(name); ok {
		return v, nil
	}

	if source != name {
		if v, ok := ns.table.Get(source); ok {
			return v, nil
		}
	}

	if ns.delegate != nil {
		return ns.delegate(ctx, ns, name)
	}

	if source != name {
		return nil, errs.Unresolvable(ns.identity, name, "alias to "+source+" is an unresolvable name")
	}
	return nil, errs.Unresolvable(ns.identity, name, "no such symbol")
}

// CheckBan returns a banned_name error when name, or the source it aliases,
// matches a ban pattern. It neither resolves nor consumes the bootstrap state.
func (ns *Namespace) CheckBan(name string) error {
	if pattern, banned := ns.policy.IsBanned(name); banned {
		return errs.Banned(ns.identity, name, pattern)
	}
	if source := ns.policy.ResolveAlias(name); source != name {
		if pattern, banned := ns.policy.IsBanned(source); banned {
			return errs.Banned(ns.identity, name, pattern)
		}
	}
	return nil
}

// Call invokes the call hook. The target identity comes from the LoadContext.
func (ns *Namespace) Call(ctx context.Context, args ...any) (any, error) {
	target, _ := ns.opts.loadCtx.AssignTarget(ctx)
	return ns.CallAs(ctx, target, args...)
}

// CallAs invokes the call hook with an explicit target identity.
func (ns *Namespace) CallAs(ctx context.Context, target string, args ...any) (any, error) {
	if ns.call == nil {
		return nil, errs.NotCallable(ns.identity)
	}
	return ns.call(ctx, ns, target, args...)
}
