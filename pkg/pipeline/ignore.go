package pipeline

import (
	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// ignorePattern is a single parsed exclude pattern. There is no negation
// and no directory-only suffix: a match means "pretend this sub-path
// doesn't exist in any read path", an opt-in all-or-nothing filter rather
// than a layered include/exclude rule set.
type ignorePattern struct {
	// matchLeaf is true for patterns with no slash, which match against a
	// path's base name in addition to the whole sub-path.
	matchLeaf bool
	pattern   string
}

// newIgnorePattern validates pattern and prepares it for matching.
func newIgnorePattern(pattern string) (*ignorePattern, error) {
	if pattern == "" {
		return nil, errors.New("empty exclude pattern")
	}
	if _, err := doublestar.Match(pattern, "a"); err != nil {
		return nil, errors.Wrapf(err, "invalid exclude pattern '%s'", pattern)
	}
	return &ignorePattern{
		matchLeaf: !containsSlash(pattern),
		pattern:   pattern,
	}, nil
}

func containsSlash(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return true
		}
	}
	return false
}

func (p *ignorePattern) matches(subPath, leaf string) bool {
	if match, _ := doublestar.Match(p.pattern, subPath); match {
		return true
	}
	if p.matchLeaf {
		if match, _ := doublestar.Match(p.pattern, leaf); match {
			return true
		}
	}
	return false
}

// excludeSet is an ordered collection of exclude patterns used by the
// discoverer to drop sub-paths (files or whole subtrees) before they're
// ever classified. An empty excludeSet matches nothing, so the default
// behavior with no --exclude flags leaves every sub-path eligible.
type excludeSet struct {
	patterns []*ignorePattern
}

// newExcludeSet parses a list of glob patterns into an excludeSet.
func newExcludeSet(patterns []string) (*excludeSet, error) {
	set := &excludeSet{}
	for _, p := range patterns {
		parsed, err := newIgnorePattern(p)
		if err != nil {
			return nil, err
		}
		set.patterns = append(set.patterns, parsed)
	}
	return set, nil
}

// excludes reports whether subPath (whose final component is leaf) should
// be treated as absent from every read path.
func (s *excludeSet) excludes(subPath, leaf string) bool {
	if s == nil {
		return false
	}
	for _, p := range s.patterns {
		if p.matches(subPath, leaf) {
			return true
		}
	}
	return false
}
