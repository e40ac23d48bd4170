package policy

import (
	"math"

	"github.com/gobwas/glob"

	"github.com/on-the-ground/modkit_go/internal/memo"
)

// DefaultPatternCacheSize bounds each generation of the compiled pattern memo.
const DefaultPatternCacheSize = 1024

// Matcher compiles and matches export/ban patterns.
//
// A pattern without glob meta characters is compared by string equality.
// Anything else is compiled with gobwas/glob (`*`, `?`, `[...]`, `[!...]`,
// `{a,b}`) without separators, so `*` also matches dots. Compiled patterns are
// memoized; compilation is pure in the pattern text.
type Matcher struct {
	compile func(string) compiled
}

type compiled struct {
	g       glob.Glob
	literal bool
	err     error
}

// NewMatcher creates a matcher whose compiled pattern memo keeps up to
// cacheSize patterns per generation. Sizes beyond math.MaxUint32 are clamped.
func NewMatcher(cacheSize int) *Matcher {
	if cacheSize <= 0 {
		cacheSize = DefaultPatternCacheSize
	}
	size := uint64(cacheSize)
	if size > math.MaxUint32 {
		size = math.MaxUint32
	}
	return &Matcher{compile: memo.Func(compilePattern, uint32(size))}
}

var defaultMatcher = NewMatcher(DefaultPatternCacheSize)

// DefaultMatcher returns the process-wide matcher used when none is injected.
func DefaultMatcher() *Matcher {
	return defaultMatcher
}

func compilePattern(pattern string) compiled {
	if IsLiteral(pattern) {
		return compiled{literal: true}
	}
	g, err := glob.Compile(pattern)
	return compiled{g: g, err: err}
}

// IsLiteral reports whether pattern contains no glob meta characters.
func IsLiteral(pattern string) bool {
	return glob.QuoteMeta(pattern) == pattern
}

// Validate reports whether pattern can be compiled.
func (m *Matcher) Validate(pattern string) error {
	return m.compile(pattern).err
}

// Match reports whether name matches pattern. Invalid patterns match nothing.
func (m *Matcher) Match(pattern, name string) bool {
	c := m.compile(pattern)
	switch {
	case c.err != nil:
		return false
	case c.literal:
		return pattern == name
	default:
		return c.g.Match(name)
	}
}

// Filter returns the names matching pattern, keeping their order.
func (m *Matcher) Filter(pattern string, names []string) []string {
	var out []string
	for _, n := range names {
		if m.Match(pattern, n) {
			out = append(out, n)
		}
	}
	return out
}
