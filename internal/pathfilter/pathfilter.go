// Package pathfilter compiles the glob patterns given through --filters.
package pathfilter

import (
	"fmt"
	"regexp"
	"strings"
)

// PathFilter is a compiled glob over slash-separated paths.
//
// Supported syntax: `*` matches within one path segment, `?` matches one
// non-separator character, `**` matches across segments and `**/` also
// matches zero leading directories.
type PathFilter struct {
	pattern string
	re      *regexp.Regexp
}

// Compile turns a glob into a PathFilter.
func Compile(pattern string) (PathFilter, error) {
	if strings.TrimSpace(pattern) == "" {
		return PathFilter{}, fmt.Errorf("empty path filter")
	}
	re, err := regexp.Compile("^" + globToRegex(pattern) + "$")
	if err != nil {
		return PathFilter{}, fmt.Errorf("invalid path filter %q: %w", pattern, err)
	}
	return PathFilter{pattern: pattern, re: re}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string) PathFilter {
	f, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return f
}

// Pattern returns the glob exactly as given.
func (f PathFilter) Pattern() string { return f.pattern }

// String implements fmt.Stringer.
func (f PathFilter) String() string { return f.pattern }

// Matches reports whether the slash-separated path matches the glob.
func (f PathFilter) Matches(path string) bool {
	if f.re == nil {
		return false
	}
	return f.re.MatchString(strings.TrimPrefix(path, "./"))
}

// AnyMatches reports whether any filter matches one of the given paths.
func AnyMatches(filters []PathFilter, paths ...string) bool {
	for _, f := range filters {
		for _, p := range paths {
			if f.Matches(p) {
				return true
			}
		}
	}
	return false
}

func globToRegex(glob string) string {
	var b strings.Builder

	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				if i+2 < len(glob) && glob[i+2] == '/' {
					b.WriteString("(?:.*/)?")
					i += 2
					continue
				}
				b.WriteString(".*")
				i++
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		case '\\':
			b.WriteByte('/')
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String()
}
