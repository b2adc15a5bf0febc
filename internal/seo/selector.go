package seo

import (
	"regexp"
	"strings"
)

// Op is the comparison an AttrMatch applies to an attribute value.
type Op int

const (
	// Present matches when the attribute exists, whatever its value.
	Present Op = iota
	// Equals matches the whole value, case-insensitively.
	Equals
	// HasPrefix matches a case-insensitive prefix.
	HasPrefix
	// Contains matches a case-insensitive substring.
	Contains
	// Token matches one entry of a whitespace-separated list such as rel.
	Token
	// Matches applies Pattern to the raw value.
	Matches
)

// AttrMatch is a predicate on a single attribute.
type AttrMatch struct {
	Name    string
	Op      Op
	Value   string
	Pattern *regexp.Regexp
}

// Selector describes the elements a rule looks for. An empty Tag matches any
// element. All Attrs must match.
type Selector struct {
	Tag   string
	Attrs []AttrMatch
}

// Tag returns a selector for every element with the given name.
func Tag(name string) Selector {
	return Selector{Tag: name}
}

// With returns a copy of s with m appended to its attribute predicates.
func (s Selector) With(m AttrMatch) Selector {
	attrs := make([]AttrMatch, 0, len(s.Attrs)+1)
	attrs = append(attrs, s.Attrs...)
	s.Attrs = append(attrs, m)
	return s
}

// Has adds a presence predicate.
func (s Selector) Has(name string) Selector {
	return s.With(AttrMatch{Name: name, Op: Present})
}

// Eq adds a case-insensitive equality predicate.
func (s Selector) Eq(name, value string) Selector {
	return s.With(AttrMatch{Name: name, Op: Equals, Value: value})
}

// Prefix adds a case-insensitive prefix predicate.
func (s Selector) Prefix(name, value string) Selector {
	return s.With(AttrMatch{Name: name, Op: HasPrefix, Value: value})
}

// Substr adds a case-insensitive substring predicate.
func (s Selector) Substr(name, value string) Selector {
	return s.With(AttrMatch{Name: name, Op: Contains, Value: value})
}

// HasToken adds a token-list predicate.
func (s Selector) HasToken(name, value string) Selector {
	return s.With(AttrMatch{Name: name, Op: Token, Value: value})
}

// Like adds a regular expression predicate.
func (s Selector) Like(name string, re *regexp.Regexp) Selector {
	return s.With(AttrMatch{Name: name, Op: Matches, Pattern: re})
}

func (m AttrMatch) match(value string) bool {
	switch m.Op {
	case Present:
		return true
	case Equals:
		return strings.EqualFold(strings.TrimSpace(value), m.Value)
	case HasPrefix:
		return strings.HasPrefix(strings.ToLower(value), strings.ToLower(m.Value))
	case Contains:
		return strings.Contains(strings.ToLower(value), strings.ToLower(m.Value))
	case Token:
		for _, tok := range strings.Fields(value) {
			if strings.EqualFold(tok, m.Value) {
				return true
			}
		}
		return false
	case Matches:
		return m.Pattern != nil && m.Pattern.MatchString(value)
	}
	return false
}
