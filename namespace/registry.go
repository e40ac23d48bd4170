package namespace

import "context"

// Registry is the host's identity → loaded unit mapping.
type Registry interface {
	Lookup(identity string) (Entry, bool)
	// Replace registers entry under entry.Identity(), evicting any occupant.
	Replace(entry Entry) error
	Remove(identity string) bool
}

// SubmoduleFinder loads "<parent>.<name>" through the host loader. A miss is
// reported with ok=false, never with an error.
type SubmoduleFinder interface {
	Submodule(ctx context.Context, parent, name string) (entry Entry, ok bool)
}
