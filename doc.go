// Package modkit hosts policy-governed namespaces.
//
// A Host keeps a catalog of unit specs and a registry of loaded units. Import
// runs a unit's Define against a fresh namespace.Unit; a Define that calls
// u.Install() first turns its registry entry into a namespace.Namespace whose
// exports, bans, aliases and hooks it can then configure:
//
//	host.Register(&namespace.Spec{
//		Name: "greeter",
//		Define: func(u *namespace.Unit) error {
//			ns, err := u.Install()
//			if err != nil {
//				return err
//			}
//			u.Set("Hello", hello)
//			u.Set("_cache", map[string]string{})
//			return ns.Ban("_*")
//		},
//	})
//
//	entry, err := host.Import(ctx, "greeter")
package modkit
