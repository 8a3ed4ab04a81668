package refs

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter selects references by glob patterns over their short names
// ("master", "origin/main", "v1.*").
type Filter struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// NewFilter compiles include and exclude globs. An empty include list
// admits everything not excluded.
func NewFilter(includeGlobs, excludeGlobs []string) (*Filter, error) {
	incs, err := compileGlobs(includeGlobs)
	if err != nil {
		return nil, err
	}
	excs, err := compileGlobs(excludeGlobs)
	if err != nil {
		return nil, err
	}
	return &Filter{include: incs, exclude: excs}, nil
}

func compileGlobs(globs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(globs))
	for _, g := range globs {
		if strings.TrimSpace(g) == "" {
			continue
		}
		r, err := regexp.Compile(globToRegex(g))
		if err != nil {
			return nil, fmt.Errorf("compile glob %s: %w", g, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Match reports whether ref passes the filter, with the reason when it does not.
func (f *Filter) Match(ref SpecRef) (bool, string) {
	if f == nil {
		return true, ""
	}
	name := ref.Short()
	for _, rx := range f.exclude {
		if rx.MatchString(name) {
			return false, "excluded_by_pattern"
		}
	}
	if len(f.include) == 0 {
		return true, ""
	}
	for _, rx := range f.include {
		if rx.MatchString(name) {
			return true, ""
		}
	}
	return false, "not_in_includes"
}

// Apply keeps the references that pass the filter, preserving order.
func (f *Filter) Apply(in []SpecRef) []SpecRef {
	out := make([]SpecRef, 0, len(in))
	for _, r := range in {
		if ok, _ := f.Match(r); ok {
			out = append(out, r)
		}
	}
	return out
}

// globToRegex converts a shell-style glob to an anchored regex. '*' stays
// within one component and '**' crosses '/'.
func globToRegex(glob string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				b.WriteString(".*")
				i++
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		case '.', '+', '(', ')', '|', '^', '$', '{', '}', '[', ']', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteString("$")
	return b.String()
}
