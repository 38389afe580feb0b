package patterns

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	regexPrefix = "re:/"
	regexSuffix = "/"
)

// Matcher evaluates one configured pattern against a file name. Patterns are
// either shell globs or regular expressions wrapped as re:/expr/.
type Matcher struct {
	raw   string
	glob  string
	exprs []*regexp.Regexp
	err   error
}

// Compile parses a single pattern. Invalid patterns never match; Err reports why.
func Compile(pattern string) Matcher {
	m := Matcher{raw: pattern}
	expr, isRegex := regexBody(pattern)
	if !isRegex {
		m.glob = pattern
		if !doublestar.ValidatePattern(pattern) {
			m.err = doublestar.ErrBadPattern
		}
		return m
	}

	raw, rawErr := regexp.Compile(expr)
	if rawErr == nil {
		m.exprs = append(m.exprs, raw)
	}
	if normalized := normalizeRegex(expr); normalized != expr || rawErr != nil {
		if re, err := regexp.Compile(normalized); err == nil {
			m.exprs = append(m.exprs, re)
		} else if rawErr != nil {
			m.err = rawErr
		}
	}
	return m
}

// Pattern returns the pattern as configured.
func (m Matcher) Pattern() string { return m.raw }

// IsRegex reports whether the pattern used the re:/…/ marker.
func (m Matcher) IsRegex() bool { return m.glob == "" && m.raw != "" }

// Err returns the compile error for invalid patterns.
func (m Matcher) Err() error { return m.err }

// Match reports whether name satisfies the pattern. Regex patterns search
// anywhere in the name; globs must match the whole name.
func (m Matcher) Match(name string) bool {
	if m.err != nil {
		return false
	}
	if m.glob != "" {
		ok, err := doublestar.Match(m.glob, name)
		return err == nil && ok
	}
	for _, re := range m.exprs {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func regexBody(pattern string) (string, bool) {
	if len(pattern) < len(regexPrefix)+len(regexSuffix) {
		return "", false
	}
	if !strings.HasPrefix(pattern, regexPrefix) || !strings.HasSuffix(pattern, regexSuffix) {
		return "", false
	}
	return pattern[len(regexPrefix) : len(pattern)-len(regexSuffix)], true
}

// normalizeRegex rewrites delimiter escapes and named-group spellings used by
// other regex dialects into RE2 syntax.
func normalizeRegex(expr string) string {
	out := strings.ReplaceAll(expr, `\/`, "/")
	out = strings.ReplaceAll(out, "(?<", "(?P<")
	// lookbehind groups are not named groups
	out = strings.ReplaceAll(out, "(?P<=", "(?<=")
	out = strings.ReplaceAll(out, "(?P<!", "(?<!")
	return out
}
