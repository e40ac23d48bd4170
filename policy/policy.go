package policy

import (
	"slices"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/speakeasy-api/openapi/sequencedmap"
	"go.uber.org/multierr"

	"github.com/on-the-ground/modkit_go/errs"
)

// Policy holds the export patterns, ban patterns and aliases of one namespace.
//
// Mutations never evaluate patterns against names; they only record them and
// call the change hook so the owner can invalidate derived state.
type Policy struct {
	exports  patternSet
	bans     patternSet
	aliases  *sequencedmap.Map[string, string]
	matcher  *Matcher
	onChange func()
}

// Option configures a Policy.
type Option func(*Policy)

// WithMatcher sets the matcher used to compile and match patterns.
func WithMatcher(m *Matcher) Option {
	return func(p *Policy) {
		if m != nil {
			p.matcher = m
		}
	}
}

// WithOnChange sets the hook invoked after every mutation.
func WithOnChange(fn func()) Option {
	return func(p *Policy) {
		p.onChange = fn
	}
}

// New creates an empty policy: everything visible, nothing banned, no aliases.
func New(opts ...Option) *Policy {
	p := &Policy{
		exports: newPatternSet(),
		bans:    newPatternSet(),
		aliases: sequencedmap.New[string, string](),
		matcher: DefaultMatcher(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Policy) changed() {
	if p.onChange != nil {
		p.onChange()
	}
}

func (p *Policy) validate(patterns []string) error {
	var err error
	for _, pattern := range patterns {
		if pattern == "" {
			err = multierr.Append(err, errs.PolicyConfiguration("empty pattern"))
			continue
		}
		if cerr := p.matcher.Validate(pattern); cerr != nil {
			err = multierr.Append(err, errs.New(errs.KindPolicyConfiguration).
				Detail("invalid pattern %q", pattern).Cause(cerr).Build())
		}
	}
	return err
}

// Export whitelists names matching patterns. With at least one export pattern
// registered, only exported names and alias keys are visible.
func (p *Policy) Export(patterns ...string) error {
	if err := p.validate(patterns); err != nil {
		return err
	}
	p.exports.add(patterns...)
	p.changed()
	return nil
}

// Ban forbids names matching patterns regardless of exports and aliases.
func (p *Policy) Ban(patterns ...string) error {
	if err := p.validate(patterns); err != nil {
		return err
	}
	p.bans.add(patterns...)
	p.changed()
	return nil
}

// Unban removes previously registered ban patterns. Unknown patterns are ignored.
func (p *Policy) Unban(patterns ...string) {
	p.bans.remove(patterns...)
	p.changed()
}

// Alias redirects alias to source.
func (p *Policy) Alias(alias, source string) error {
	return p.AliasPairs(alias, source)
}

// AliasPairs registers aliases given as alias, source, alias, source, ...
// Mapping the same alias to two different sources in one call is rejected.
func (p *Policy) AliasPairs(pairs ...string) error {
	if len(pairs)%2 != 0 {
		return errs.PolicyConfiguration("expecting alias/source pairs, got %d arguments", len(pairs))
	}
	batch := make(map[string]string, len(pairs)/2)
	order := make([]string, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		alias, source := pairs[i], pairs[i+1]
		if prev, ok := batch[alias]; ok {
			if prev != source {
				return errs.PolicyConfiguration("alias %q mapped to multiple sources: %q, %q", alias, prev, source)
			}
			continue
		}
		batch[alias] = source
		order = append(order, alias)
	}
	return p.applyAliases(order, batch)
}

// AliasMap registers every alias→source entry of m.
func (p *Policy) AliasMap(m map[string]string) error {
	order := make([]string, 0, len(m))
	for alias := range m {
		order = append(order, alias)
	}
	sort.Strings(order)
	return p.applyAliases(order, m)
}

func (p *Policy) applyAliases(order []string, batch map[string]string) error {
	var err error
	for _, alias := range order {
		source := batch[alias]
		switch {
		case alias == "" || source == "":
			err = multierr.Append(err, errs.PolicyConfiguration("alias and source must be non-empty (%q -> %q)", alias, source))
		case alias == source:
			err = multierr.Append(err, errs.PolicyConfiguration("alias %q points to itself", alias))
		}
	}
	if err != nil {
		return err
	}
	for _, alias := range order {
		p.aliases.Set(alias, batch[alias])
	}
	p.changed()
	return nil
}

// IsBanned reports whether name matches a ban pattern and returns the first
// matching pattern.
func (p *Policy) IsBanned(name string) (string, bool) {
	for _, pattern := range p.bans.list {
		if p.matcher.Match(pattern, name) {
			return pattern, true
		}
	}
	return "", false
}

// IsExported reports whether name passes the export filter. With no export
// pattern every name passes; alias keys always pass.
func (p *Policy) IsExported(name string) bool {
	if !p.HasExports() {
		return true
	}
	if _, ok := p.aliases.Get(name); ok {
		return true
	}
	for _, pattern := range p.exports.list {
		if p.matcher.Match(pattern, name) {
			return true
		}
	}
	return false
}

// ResolveAlias returns the source of alias name, or name itself.
func (p *Policy) ResolveAlias(name string) string {
	if source, ok := p.aliases.Get(name); ok {
		return source
	}
	return name
}

// HasExports reports whether any export pattern is registered.
func (p *Policy) HasExports() bool {
	return !p.exports.empty()
}

// ComputeVisible returns the visible names given the symbol names of the owning
// namespace: exports (or all symbols) plus alias keys plus literal exports,
// minus every name that is banned or aliases a banned name.
func (p *Policy) ComputeVisible(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols)+p.aliases.Len())
	var candidates []string
	add := func(n string) {
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		candidates = append(candidates, n)
	}

	for _, n := range symbols {
		if p.IsExported(n) {
			add(n)
		}
	}
	for alias := range p.aliases.All() {
		add(alias)
	}
	for _, pattern := range p.exports.list {
		if IsLiteral(pattern) {
			add(pattern)
		}
	}

	visible := candidates[:0:0]
	for _, n := range candidates {
		if _, banned := p.IsBanned(n); banned {
			continue
		}
		if target := p.ResolveAlias(n); target != n {
			if _, banned := p.IsBanned(target); banned {
				continue
			}
		}
		visible = append(visible, n)
	}
	return visible
}

// Exports returns the export patterns in registration order.
func (p *Policy) Exports() []string { return slices.Clone(p.exports.list) }

// Bans returns the ban patterns in registration order.
func (p *Policy) Bans() []string { return slices.Clone(p.bans.list) }

// Aliases returns a copy of the alias map.
func (p *Policy) Aliases() map[string]string {
	out := make(map[string]string, p.aliases.Len())
	for alias, source := range p.aliases.All() {
		out[alias] = source
	}
	return out
}

// AliasKeys returns the alias names in registration order.
func (p *Policy) AliasKeys() []string {
	keys := make([]string, 0, p.aliases.Len())
	for alias := range p.aliases.All() {
		keys = append(keys, alias)
	}
	return keys
}

// Clone duplicates the policy. Later mutation of either copy does not affect
// the other. onChange replaces the change hook of the copy.
func (p *Policy) Clone(onChange func()) *Policy {
	c := New(WithMatcher(p.matcher), WithOnChange(onChange))
	c.exports.add(p.exports.list...)
	c.bans.add(p.bans.list...)
	for alias, source := range p.aliases.All() {
		c.aliases.Set(alias, source)
	}
	return c
}

// Fingerprint digests exports, bans and aliases independent of registration
// order. Equal policies have equal fingerprints.
func (p *Policy) Fingerprint() uint64 {
	d := xxhash.New()
	write := func(section string, items []string) {
		sorted := slices.Clone(items)
		sort.Strings(sorted)
		_, _ = d.WriteString(section)
		for _, s := range sorted {
			_, _ = d.WriteString("\x00")
			_, _ = d.WriteString(s)
		}
		_, _ = d.WriteString("\x01")
	}
	write("exports", p.exports.list)
	write("bans", p.bans.list)
	pairs := make([]string, 0, p.aliases.Len())
	for alias, source := range p.aliases.All() {
		pairs = append(pairs, alias+"\x02"+source)
	}
	write("aliases", pairs)
	return d.Sum64()
}

// patternSet is an insertion-ordered set of patterns.
type patternSet struct {
	list  []string
	index map[string]struct{}
}

func newPatternSet() patternSet {
	return patternSet{index: make(map[string]struct{})}
}

func (s *patternSet) add(patterns ...string) {
	for _, pattern := range patterns {
		if _, ok := s.index[pattern]; ok {
			continue
		}
		s.index[pattern] = struct{}{}
		s.list = append(s.list, pattern)
	}
}

func (s *patternSet) remove(patterns ...string) {
	for _, pattern := range patterns {
		if _, ok := s.index[pattern]; !ok {
			continue
		}
		delete(s.index, pattern)
		s.list = slices.DeleteFunc(s.list, func(p string) bool { return p == pattern })
	}
}

func (s *patternSet) empty() bool {
	return len(s.list) == 0
}
