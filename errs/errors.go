package errs

import (
	"fmt"
	"strings"
)

// Kind categorizes a namespace error.
type Kind string

const (
	KindBannedName          Kind = "banned_name"
	KindUnresolvableName    Kind = "unresolvable_name"
	KindNotCallable         Kind = "not_callable"
	KindMissingName         Kind = "missing_name"
	KindPolicyConfiguration Kind = "policy_configuration"
	KindDefinition          Kind = "definition"
	KindNotFound            Kind = "not_found"
)

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrBannedName          = &Error{Kind: KindBannedName}
	ErrUnresolvableName    = &Error{Kind: KindUnresolvableName}
	ErrNotCallable         = &Error{Kind: KindNotCallable}
	ErrMissingName         = &Error{Kind: KindMissingName}
	ErrPolicyConfiguration = &Error{Kind: KindPolicyConfiguration}
	ErrDefinition          = &Error{Kind: KindDefinition}
	ErrNotFound            = &Error{Kind: KindNotFound}
)

// Error is the structured error returned by policy, namespace and host operations.
type Error struct {
	Cause     error
	Kind      Kind
	Namespace string
	Name      string
	Detail    string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(string(e.Kind))

	if e.Namespace != "" || e.Name != "" {
		b.WriteString(" ")
		switch {
		case e.Namespace != "" && e.Name != "":
			b.WriteString(e.Namespace)
			b.WriteByte('.')
			b.WriteString(e.Name)
		case e.Namespace != "":
			b.WriteString(e.Namespace)
		default:
			b.WriteString(e.Name)
		}
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(kind Kind) *Builder {
	return &Builder{err: Error{Kind: kind}}
}

// In sets the namespace identity the error occurred in.
func (b *Builder) In(namespace string) *Builder {
	b.err.Namespace = namespace
	return b
}

// Name sets the requested name.
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Banned reports a name rejected by a ban pattern.
func Banned(namespace, name, pattern string) *Error {
	return New(KindBannedName).In(namespace).Name(name).Detail("matches ban pattern %q", pattern).Build()
}

// Unresolvable reports a name that could not be produced by any resolution step.
func Unresolvable(namespace, name, detail string) *Error {
	return New(KindUnresolvableName).In(namespace).Name(name).Detail(detail).Build()
}

// NotCallable reports an invocation of a namespace without a call hook.
func NotCallable(namespace string) *Error {
	return New(KindNotCallable).In(namespace).Detail("no call hook configured").Build()
}

// MissingName reports a bake without a resolvable target identity.
func MissingName(namespace string) *Error {
	return New(KindMissingName).In(namespace).Detail("no identity given and no assignment target in context").Build()
}

// PolicyConfiguration reports malformed export, ban or alias arguments.
func PolicyConfiguration(msg string, args ...any) *Error {
	return New(KindPolicyConfiguration).Detail(msg, args...).Build()
}

// Definition wraps a failure of a unit's construction procedure.
func Definition(namespace string, cause error) *Error {
	return New(KindDefinition).In(namespace).Cause(cause).Build()
}

// NotFound is the quiet miss returned to the host loader's bootstrap probe.
func NotFound(namespace, name string) *Error {
	return New(KindNotFound).In(namespace).Name(name).Build()
}
