package patterns

// Set is an ordered list of compiled patterns.
type Set []Matcher

// CompileAll compiles every non-empty pattern in order.
func CompileAll(values []string) Set {
	set := make(Set, 0, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		set = append(set, Compile(value))
	}
	return set
}

// Empty reports whether the set has no patterns.
func (s Set) Empty() bool { return len(s) == 0 }

// Match returns the first pattern matching name.
func (s Set) Match(name string) (string, bool) {
	for _, m := range s {
		if m.Match(name) {
			return m.Pattern(), true
		}
	}
	return "", false
}

// Invalid lists patterns that failed to compile.
func (s Set) Invalid() []string {
	var out []string
	for _, m := range s {
		if m.Err() != nil {
			out = append(out, m.Pattern())
		}
	}
	return out
}

// Decision is the outcome of include/ignore evaluation.
type Decision int

const (
	// Accepted means the name passed both lists.
	Accepted Decision = iota
	// NotIncluded means include patterns exist and none matched.
	NotIncluded
	// Ignored means an ignore pattern matched.
	Ignored
)

func (d Decision) String() string {
	switch d {
	case NotIncluded:
		return "not_included"
	case Ignored:
		return "ignored"
	default:
		return "accepted"
	}
}

// Evaluate applies include-before-ignore filtering. When include patterns are
// configured the name must match one of them; any ignore match then rejects
// it. The returned pattern is the ignore pattern that matched, if any.
func Evaluate(include, ignore Set, name string) (Decision, string) {
	if !include.Empty() {
		if _, ok := include.Match(name); !ok {
			return NotIncluded, ""
		}
	}
	if pattern, ok := ignore.Match(name); ok {
		return Ignored, pattern
	}
	return Accepted, ""
}
