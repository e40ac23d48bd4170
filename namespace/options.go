package namespace

import (
	"go.uber.org/zap"

	"github.com/on-the-ground/modkit_go/policy"
)

type options struct {
	registry      Registry
	loadCtx       LoadContext
	submodules    SubmoduleFinder
	logger        *zap.Logger
	matcher       *policy.Matcher
	suppressProbe bool
}

func defaultOptions() options {
	return options{
		loadCtx:       ContextLoadContext{},
		logger:        zap.NewNop(),
		matcher:       policy.DefaultMatcher(),
		suppressProbe: true,
	}
}

// Option configures the collaborators of a Namespace. Clones inherit them.
type Option func(*options)

// WithRegistry sets the registry Bake registers clones in.
func WithRegistry(r Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithLoadContext replaces the default context-value based LoadContext.
func WithLoadContext(lc LoadContext) Option {
	return func(o *options) {
		if lc != nil {
			o.loadCtx = lc
		}
	}
}

// WithSubmoduleFinder sets the loader used by Namespace.Submodule.
func WithSubmoduleFinder(f SubmoduleFinder) Option {
	return func(o *options) { o.submodules = f }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMatcher sets the pattern matcher of the namespace policy.
func WithMatcher(m *policy.Matcher) Option {
	return func(o *options) {
		if m != nil {
			o.matcher = m
		}
	}
}

// WithBootstrapProbeSuppression controls whether the first resolution checks
// for the host loader's bootstrap probe. Enabled by default.
func WithBootstrapProbeSuppression(enabled bool) Option {
	return func(o *options) { o.suppressProbe = enabled }
}
