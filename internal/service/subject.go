package service

import (
	"fmt"
	"regexp"
	"strings"
)

// Reply and forward markers stripped during canonicalization. "Aw"
// and "WG" are the German client variants of Re/Fwd.
var subjectPrefix = regexp.MustCompile(`(?i)^\s*(re|fw|fwd|aw|wg)\s*:\s*`)

// CanonicalSubject strips any run of leading reply/forward markers
// and returns the trimmed canonical subject.
func CanonicalSubject(subject string) string {
	s := strings.TrimSpace(subject)
	for {
		stripped := subjectPrefix.ReplaceAllString(s, "")
		if stripped == s {
			return s
		}
		s = strings.TrimSpace(stripped)
	}
}

// SubjectMatcher decides whether a raw subject belongs to the same
// conversation as a canonical subject.
type SubjectMatcher struct {
	canonical string
	re        *regexp.Regexp
}

// NewSubjectMatcher builds a matcher for the given raw subject. It
// accepts zero or more reply/forward markers followed by exactly the
// canonical subject, anchored at both ends, so "Re: Fwd: Test"
// matches canonical "Test" but "Test 2" does not. Returns (nil, nil)
// for an empty subject: correlation by subject is then skipped.
func NewSubjectMatcher(subject string) (*SubjectMatcher, error) {
	canonical := CanonicalSubject(subject)
	if canonical == "" {
		return nil, nil
	}
	pattern := `(?i)^\s*((re|fw|fwd|aw|wg)\s*:\s*)*` + regexp.QuoteMeta(canonical) + `\s*$`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to compile subject matcher: %w", err)
	}
	return &SubjectMatcher{canonical: canonical, re: re}, nil
}

// Canonical returns the canonical subject the matcher was built from.
func (m *SubjectMatcher) Canonical() string {
	return m.canonical
}

// Matches reports whether the raw subject belongs to this conversation.
func (m *SubjectMatcher) Matches(subject string) bool {
	return m.re.MatchString(subject)
}

// RecipientsOverlap reports whether two recipient lists share at
// least one address, compared case-insensitively. A weak membership
// signal only: replies routinely add or drop recipients, so exact
// list equality would fragment threads.
func RecipientsOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, addr := range a {
		normalized := strings.ToLower(strings.TrimSpace(addr))
		if normalized != "" {
			seen[normalized] = struct{}{}
		}
	}
	for _, addr := range b {
		if _, ok := seen[strings.ToLower(strings.TrimSpace(addr))]; ok {
			return true
		}
	}
	return false
}
