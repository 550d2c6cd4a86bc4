package complexity

import "strings"

// Bound is the kind of expectation placed on a candidate.
type Bound int

const (
	// NoBound accepts any outcome.
	NoBound Bound = iota
	// UpperBound passes when the guess or any accepted class matches.
	UpperBound
	// TightBound passes only when the guess matches.
	TightBound
)

// String returns the tag prefix of the bound.
func (b Bound) String() string {
	switch b {
	case UpperBound:
		return "O"
	case TightBound:
		return "T"
	default:
		return ""
	}
}

// Expectation is a parsed expected-complexity tag such as "O(n)" or
// "T(n log n)".
type Expectation struct {
	Bound Bound
	// Body is the class without its prefix, e.g. "(n log n)".
	Body string
}

// ParseExpectation parses tag. "O" marks an upper bound; "T" or "Θ" a
// tight bound. A bare body such as "n^2" is taken as tight. An empty tag
// expects nothing.
func ParseExpectation(tag string) Expectation {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Expectation{}
	}

	bound := TightBound
	switch {
	case strings.HasPrefix(tag, "O"):
		bound, tag = UpperBound, tag[len("O"):]
	case strings.HasPrefix(tag, "T"):
		tag = tag[len("T"):]
	case strings.HasPrefix(tag, "Θ"):
		tag = tag[len("Θ"):]
	}
	return Expectation{Bound: bound, Body: classBody(tag)}
}

// String formats the expectation as a tag.
func (x Expectation) String() string {
	if x.Bound == NoBound {
		return ""
	}
	return x.Bound.String() + x.Body
}

// Matches reports whether the outcome satisfies the expectation.
func (x Expectation) Matches(guess string, accepted []string) bool {
	switch x.Bound {
	case NoBound:
		return true
	case TightBound:
		return classBody(stripPrefix(guess)) == x.Body
	}

	if classBody(stripPrefix(guess)) == x.Body {
		return true
	}
	for _, name := range accepted {
		if classBody(stripPrefix(name)) == x.Body {
			return true
		}
	}
	return false
}

func stripPrefix(name string) string {
	for _, p := range []string{"O", "T", "Θ"} {
		if strings.HasPrefix(name, p) {
			return name[len(p):]
		}
	}
	return name
}

// classBody normalizes "n log n", "(n log n)" and " ( n log n ) " alike.
func classBody(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return "(" + strings.Join(strings.Fields(s), " ") + ")"
}
