package namespace

import (
	"slices"

	"github.com/on-the-ground/modkit_go/symtab"
)

// DefineFunc is a unit's construction procedure. It must build the unit from
// scratch every time it runs: Bake relies on it to reproduce pristine state.
type DefineFunc func(u *Unit) error

// Spec describes how to load a unit. It is immutable once registered.
type Spec struct {
	Name    string
	Doc     string
	Package string
	File    string
	// Path lists submodule search locations; non-nil marks a package.
	Path   []string
	Define DefineFunc
}

// Installer replaces the raw unit registered under identity by a Namespace.
type Installer interface {
	Install(identity string) (*Namespace, error)
}

// Entry is anything a Registry can hold: a raw *Unit or a *Namespace.
type Entry interface {
	Identity() string
}

var (
	_ Entry = (*Unit)(nil)
	_ Entry = (*Namespace)(nil)
)

// Unit is a raw loaded unit: its spec and the symbol table its Define fills.
type Unit struct {
	spec      *Spec
	identity  string
	symbols   *symtab.Table
	installer Installer
	installed *Namespace
}

// NewUnit creates an empty unit for spec under identity. installer may be nil,
// in which case Install wraps the unit without registering it anywhere.
func NewUnit(spec *Spec, identity string, installer Installer) *Unit {
	return &Unit{
		spec:      spec,
		identity:  identity,
		symbols:   symtab.New(),
		installer: installer,
	}
}

func (u *Unit) Identity() string { return u.identity }

func (u *Unit) Spec() *Spec { return u.spec }

// Symbols returns the unit's table. A namespace wrapping the unit shares it.
func (u *Unit) Symbols() *symtab.Table { return u.symbols }

// Set defines name in the unit.
func (u *Unit) Set(name string, v any) { u.symbols.Set(name, v) }

// Get returns the raw value of name, ignoring any policy.
func (u *Unit) Get(name string) (any, bool) { return u.symbols.Get(name) }

// Install wraps the unit and makes the wrapper the registry entry for the
// unit's identity. Calling it again returns the same Namespace.
func (u *Unit) Install() (*Namespace, error) {
	if u.installed != nil {
		return u.installed, nil
	}
	if u.installer == nil {
		u.installed = Wrap(u)
		return u.installed, nil
	}
	ns, err := u.installer.Install(u.identity)
	if err != nil {
		return nil, err
	}
	u.installed = ns
	return ns, nil
}

// Namespace returns the wrapper installed for this unit, if any.
func (u *Unit) Namespace() (*Namespace, bool) {
	return u.installed, u.installed != nil
}

func (s *Spec) doc() string {
	if s == nil {
		return ""
	}
	return s.Doc
}

func (s *Spec) pkg() string {
	if s == nil {
		return ""
	}
	return s.Package
}

func (s *Spec) file() string {
	if s == nil {
		return ""
	}
	return s.File
}

func (s *Spec) path() []string {
	if s == nil || s.Path == nil {
		return []string{}
	}
	return slices.Clone(s.Path)
}
