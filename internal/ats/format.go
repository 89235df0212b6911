package ats

import (
	"fmt"
	"sort"
	"strings"

	"resumeforge/internal/types"
)

// FormatForScoring renders a structured resume into flat plaintext suitable
// for prompt injection and scoring. Missing fields render as omitted sections,
// never as placeholder text: the resume is mutated incrementally during
// optimization and is routinely partial. Output formatting is stable across
// calls because the scorer's output depends on it.
func FormatForScoring(r types.Resume) string {
	var b strings.Builder

	if r.JobTitle != "" || r.Location != "" {
		b.WriteString("CONTACT\n")
		if r.JobTitle != "" {
			fmt.Fprintf(&b, "%s\n", r.JobTitle)
		}
		if r.Location != "" {
			fmt.Fprintf(&b, "%s\n", r.Location)
		}
		b.WriteString("\n")
	}

	if r.Summary != "" {
		b.WriteString("SUMMARY\n")
		b.WriteString(r.Summary)
		b.WriteString("\n\n")
	}

	if len(r.Skills) > 0 {
		b.WriteString("SKILLS\n")
		// Map iteration order is random; sort category names so the same
		// resume always renders to the same text.
		categories := make([]string, 0, len(r.Skills))
		for name := range r.Skills {
			categories = append(categories, name)
		}
		sort.Strings(categories)
		for _, name := range categories {
			fmt.Fprintf(&b, "%s: %s\n", name, strings.Join(r.Skills[name], ", "))
		}
		b.WriteString("\n")
	}

	writeEntries(&b, "EXPERIENCE", r.Experience)
	writeEntries(&b, "PROJECTS", r.Projects)

	return strings.TrimRight(b.String(), "\n")
}

func writeEntries(b *strings.Builder, header string, entries []types.EntrySection) {
	if len(entries) == 0 {
		return
	}
	b.WriteString(header)
	b.WriteString("\n")
	for _, entry := range entries {
		if entry.Period != "" {
			fmt.Fprintf(b, "%s (%s)\n", entry.Title, entry.Period)
		} else {
			fmt.Fprintf(b, "%s\n", entry.Title)
		}
		for _, bullet := range entry.Bullets {
			fmt.Fprintf(b, "• %s\n", bullet)
		}
	}
	b.WriteString("\n")
}
