package pattern

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// Matcher matches report field names against glob patterns.
// Supported wildcards:
// * - matches any sequence of characters
// ? - matches any single character
// [...] - matches any single character within the brackets
// \x - escape character x
type Matcher struct {
	compiled map[string]*regexp.Regexp
}

func NewMatcher() *Matcher {
	return &Matcher{
		compiled: make(map[string]*regexp.Regexp),
	}
}

// MatchCached reports whether str matches pattern, keeping compiled
// patterns. Malformed patterns match nothing.
func (m *Matcher) MatchCached(pattern, str string) bool {
	if pattern == "*" {
		return true
	}

	regex, ok := m.compiled[pattern]
	if !ok {
		var err error
		regex, err = compile(pattern)
		if err != nil {
			return false
		}
		m.compiled[pattern] = regex
	}
	return regex.MatchString(str)
}

// MatchAny reports whether str matches at least one of patterns.
func (m *Matcher) MatchAny(patterns []string, str string) bool {
	return lo.SomeBy(patterns, func(p string) bool {
		return m.MatchCached(p, str)
	})
}

// Filter keeps the fields whose key matches any of patterns. No patterns
// keeps everything.
func (m *Matcher) Filter(fields map[string]string, patterns []string) map[string]string {
	if len(patterns) == 0 {
		return fields
	}
	return lo.PickBy(fields, func(key, _ string) bool {
		return m.MatchAny(patterns, key)
	})
}

// Validate reports the first pattern that does not compile.
func Validate(patterns []string) error {
	for _, p := range patterns {
		if _, err := compile(p); err != nil {
			return err
		}
	}
	return nil
}

func compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^" + toRegex(pattern) + "$")
}

func toRegex(pattern string) string {
	var result strings.Builder
	result.Grow(len(pattern) * 2)

	inCharClass := false
	escaped := false

	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]

		if escaped {
			result.WriteString(regexp.QuoteMeta(string(ch)))
			escaped = false
			continue
		}

		switch ch {
		case '\\':
			if i < len(pattern)-1 {
				escaped = true
			} else {
				result.WriteString(`\\`)
			}
		case '*':
			if inCharClass {
				result.WriteByte(ch)
			} else {
				result.WriteString(".*")
			}
		case '?':
			if inCharClass {
				result.WriteByte(ch)
			} else {
				result.WriteByte('.')
			}
		case '[':
			inCharClass = true
			result.WriteByte(ch)
		case ']':
			inCharClass = false
			result.WriteByte(ch)
		case '^', '$', '.', '+', '|', '(', ')', '{', '}':
			if !inCharClass {
				result.WriteByte('\\')
			}
			result.WriteByte(ch)
		default:
			result.WriteByte(ch)
		}
	}

	return result.String()
}
