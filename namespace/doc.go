// Package namespace wraps a loaded unit's symbol table in a proxy that governs,
// after the fact, which names are visible, renamed or synthesized on demand.
//
// # Units and specs
//
// A Spec records how to build a unit: its metadata and a Define function, the
// unit's construction procedure. Running Define against a fresh Unit produces
// the unit's symbols. Define typically starts by installing the unit, which
// replaces the raw unit in the host registry by a Namespace:
//
//	spec := &namespace.Spec{
//	    Name: "greeter",
//	    Define: func(u *namespace.Unit) error {
//	        ns, err := u.Install()
//	        if err != nil {
//	            return err
//	        }
//	        u.Set("counter", map[string]int{})
//	        u.Set("BANNED_X", 1)
//	        if err := ns.Export("*"); err != nil {
//	            return err
//	        }
//	        return ns.Ban("BANNED_*")
//	    },
//	}
//
// # Resolution
//
// Get applies an ordered algorithm: ban check (on the name and its alias
// target), visibility check, direct symbol, alias source, delegate hook. Each
// failure has a distinct kind in package errs. The visible name set is
// memoized and recomputed after any policy mutation or any addition/removal of
// a symbol.
//
// The very first resolution of a namespace consults the LoadContext: if the
// caller is the host loader's own bootstrap probe, the lookup quietly misses
// with errs.ErrNotFound so that "import names from unit" flows are not
// short-circuited by a delegate. The check is consumed once.
//
// # Baking
//
// Bake re-runs the recorded Define on a fresh Unit to produce a new, independent
// generation of the namespace with a copy of the policy. Selected entries (or
// all of them) can be shared with the parent by reference.
//
// Namespaces are not safe for concurrent use.
package namespace
