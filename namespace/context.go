package namespace

import "context"

// LoadContext answers questions about the caller that the engine cannot see
// directly: whether a lookup comes from the host loader's bootstrap probe, and
// which identity the result of a call or bake is being assigned to.
type LoadContext interface {
	InBootstrapProbe(ctx context.Context) bool
	AssignTarget(ctx context.Context) (string, bool)
}

type loadContextKey string

const (
	bootstrapProbeKey loadContextKey = "modkit_go_load_context_bootstrap_probe"
	assignTargetKey   loadContextKey = "modkit_go_load_context_assign_target"
)

// WithBootstrapProbe marks ctx as the host loader probing a unit for names.
func WithBootstrapProbe(ctx context.Context) context.Context {
	return context.WithValue(ctx, bootstrapProbeKey, true)
}

// WithAssignTarget records the identity the caller assigns a result to.
func WithAssignTarget(ctx context.Context, target string) context.Context {
	return context.WithValue(ctx, assignTargetKey, target)
}

// ContextLoadContext reads the load context from values set by
// WithBootstrapProbe and WithAssignTarget.
type ContextLoadContext struct{}

func (ContextLoadContext) InBootstrapProbe(ctx context.Context) bool {
	probing, _ := ctx.Value(bootstrapProbeKey).(bool)
	return probing
}

func (ContextLoadContext) AssignTarget(ctx context.Context) (string, bool) {
	target, ok := ctx.Value(assignTargetKey).(string)
	return target, ok && target != ""
}
