// Package errs defines the error taxonomy shared by the policy, namespace and
// host packages.
//
// Every failure is an *Error carrying a Kind. Callers compare against the
// package sentinels with errors.Is:
//
//	if errors.Is(err, errs.ErrBannedName) {
//	    ...
//	}
//
// Errors returned by user supplied delegate and call hooks are never wrapped.
package errs
