package ats

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"resumeforge/internal/types"
)

const (
	maxBulletLength = 150
	minBulletLength = 50
)

// replacementVerbs is the fixed pool used to swap out repeated leading action
// verbs. Order matters: the first unused verb wins.
var replacementVerbs = []string{
	"engineered", "spearheaded", "orchestrated", "streamlined", "championed",
	"accelerated", "consolidated", "revamped", "pioneered", "modernized",
	"standardized", "instrumented",
}

// CleanBullets runs the post-generation cleanup pass over a regenerated bullet
// list: strips leading glyphs and numbering, capitalizes, de-duplicates
// repeated leading verbs first-come-first-served, splices a prioritized
// keyword into bullets that carry none, and enforces length bounds. Pure: the
// input slice is never mutated, and every correction is recorded as a
// human-readable note.
func CleanBullets(bullets []string, keywords []string) ([]string, []string) {
	cleaned := make([]string, 0, len(bullets))
	var notes []string
	usedVerbs := make(map[string]bool)

	for i, raw := range bullets {
		bullet := stripBulletPrefix(raw)
		bullet = capitalizeFirst(bullet)

		if bullet == "" {
			continue
		}

		bullet, note := dedupeLeadingVerb(bullet, usedVerbs)
		if note != "" {
			notes = append(notes, fmt.Sprintf("bullet %d: %s", i+1, note))
		}

		bullet, note = ensureKeyword(bullet, keywords)
		if note != "" {
			notes = append(notes, fmt.Sprintf("bullet %d: %s", i+1, note))
		}

		if truncated := truncateBullet(bullet); truncated != bullet {
			notes = append(notes, fmt.Sprintf("bullet %d: truncated to %d characters", i+1, maxBulletLength))
			bullet = truncated
		}

		if utf8.RuneCountInString(bullet) < minBulletLength {
			// Flagged but not blocked; short bullets may still be valid.
			notes = append(notes, fmt.Sprintf("bullet %d: under %d characters, possibly under-detailed", i+1, minBulletLength))
		}

		cleaned = append(cleaned, bullet)
	}

	return cleaned, notes
}

// BulletQuality computes the diagnostic quality record for a cleaned bullet
// list. Telemetry only: nothing gates on these numbers.
func BulletQuality(bullets []string, keywords []string) types.SectionQuality {
	if len(bullets) == 0 {
		return types.SectionQuality{}
	}

	verbs := make(map[string]bool)
	totalLength := 0
	covered := 0
	for _, bullet := range bullets {
		if verb := leadingVerb(bullet); verb != "" {
			verbs[verb] = true
		}
		totalLength += utf8.RuneCountInString(bullet)
		if containsAny(strings.ToLower(bullet), keywords) {
			covered++
		}
	}

	quality := types.SectionQuality{
		VerbDiversity:   float64(len(verbs)) / float64(len(bullets)) * 100,
		AvgBulletLength: float64(totalLength) / float64(len(bullets)),
		UniqueVerbs:     len(verbs),
	}
	if len(keywords) > 0 {
		quality.KeywordCoverage = float64(covered) / float64(len(bullets)) * 100
	}
	quality.ATSAlignment = (quality.VerbDiversity + quality.KeywordCoverage) / 2
	return quality
}

// stripBulletPrefix removes leading bullet glyphs, list numbering, and the
// surrounding whitespace the model sometimes emits despite instructions.
func stripBulletPrefix(bullet string) string {
	s := strings.TrimSpace(bullet)
	s = strings.TrimLeft(s, "•-*–—> \t")

	// Numbered lists: "1. ", "2) "
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		s = s[i+1:]
	}

	return strings.TrimSpace(s)
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// leadingVerb returns the lower-cased first word of a bullet, with trailing
// punctuation trimmed.
func leadingVerb(bullet string) string {
	fields := strings.Fields(bullet)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimRight(fields[0], ",.;:"))
}

// dedupeLeadingVerb swaps the leading verb for an unused one from the
// replacement pool when a previous bullet in the same pass already claimed it.
// The first bullet with a given verb keeps it.
func dedupeLeadingVerb(bullet string, usedVerbs map[string]bool) (string, string) {
	verb := leadingVerb(bullet)
	if verb == "" {
		return bullet, ""
	}

	if !usedVerbs[verb] {
		usedVerbs[verb] = true
		return bullet, ""
	}

	for _, candidate := range replacementVerbs {
		if usedVerbs[candidate] {
			continue
		}
		usedVerbs[candidate] = true
		rest := strings.TrimSpace(bullet[len(strings.Fields(bullet)[0]):])
		replaced := capitalizeFirst(candidate) + " " + rest
		return replaced, fmt.Sprintf("replaced repeated verb %q with %q", verb, candidate)
	}

	// Pool exhausted: keep the repeat rather than inventing content.
	return bullet, ""
}

// ensureKeyword splices a prioritized keyword into a bullet that contains
// none, preferring an insertion next to an existing "using"/"with" clause and
// otherwise appending a trailing "leveraging" clause.
func ensureKeyword(bullet string, keywords []string) (string, string) {
	if len(keywords) == 0 {
		return bullet, ""
	}

	if containsAny(strings.ToLower(bullet), keywords) {
		return bullet, ""
	}
	keyword := keywords[0]

	// The clause offset has to come from the original string: lower-casing
	// can change rune byte lengths and shift every index after them.
	for _, clause := range []string{" using ", " with "} {
		if idx := indexFold(bullet, clause); idx >= 0 {
			insertAt := idx + len(clause)
			spliced := bullet[:insertAt] + keyword + " and " + bullet[insertAt:]
			return spliced, fmt.Sprintf("spliced keyword %q into existing clause", keyword)
		}
	}

	appended := strings.TrimRight(bullet, ".") + ", leveraging " + keyword
	return appended, fmt.Sprintf("appended keyword %q", keyword)
}

// indexFold returns the byte offset of the first case-insensitive match of
// substr in s, or -1. substr is expected to be ASCII; a window that starts
// mid-rune simply fails to match.
func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

func truncateBullet(bullet string) string {
	if utf8.RuneCountInString(bullet) <= maxBulletLength {
		return bullet
	}
	runes := []rune(bullet)
	return string(runes[:maxBulletLength-3]) + "..."
}
