package ats

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanBulletsPrefixAndCapitalization(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"glyph prefix", "• built the service", "Built the service"},
		{"dash prefix", "- built the service", "Built the service"},
		{"numbered prefix", "1. built the service", "Built the service"},
		{"numbered paren prefix", "2) built the service", "Built the service"},
		{"already clean", "Built the service", "Built the service"},
		{"surrounding whitespace", "   built the service   ", "Built the service"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := CleanBullets([]string{tt.input}, nil)
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("CleanBullets(%q) = %v, want [%q]", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanBulletsDropsEmpties(t *testing.T) {
	got, _ := CleanBullets([]string{"", "   ", "• ", "Shipped the feature"}, nil)
	if len(got) != 1 || got[0] != "Shipped the feature" {
		t.Errorf("expected only the non-empty bullet, got %v", got)
	}
}

func TestCleanBulletsVerbDeduplication(t *testing.T) {
	bullets := []string{
		"Developed the ingestion service processing two million events every day",
		"Developed the scoring pipeline delivering sub-second latency end to end",
		"Developed the admin dashboard adopted by six internal platform teams",
	}
	got, notes := CleanBullets(bullets, nil)

	if got[0] != bullets[0] {
		t.Errorf("first bullet should keep its verb, got %q", got[0])
	}

	verbs := make(map[string]bool)
	for _, bullet := range got {
		verb := leadingVerb(bullet)
		if verbs[verb] {
			t.Errorf("repeated leading verb %q in %v", verb, got)
		}
		verbs[verb] = true
	}

	if len(notes) != 2 {
		t.Errorf("expected 2 replacement notes, got %d: %v", len(notes), notes)
	}
	for _, note := range notes {
		if !strings.Contains(note, "replaced repeated verb") {
			t.Errorf("unexpected note %q", note)
		}
	}
}

func TestCleanBulletsVerbPoolExhaustion(t *testing.T) {
	// More repeats than the replacement pool can absorb: the overflow keeps
	// the repeated verb instead of inventing content.
	bullets := make([]string, len(replacementVerbs)+3)
	for i := range bullets {
		bullets[i] = "Built another internal service for the platform team"
	}
	got, _ := CleanBullets(bullets, nil)

	if len(got) != len(bullets) {
		t.Fatalf("expected %d bullets back, got %d", len(bullets), len(got))
	}
	repeats := 0
	for _, bullet := range got {
		if leadingVerb(bullet) == "built" {
			repeats++
		}
	}
	// One legitimate first use plus two pool-exhausted overflows.
	if repeats != 3 {
		t.Errorf("expected 3 bullets keeping the repeated verb, got %d", repeats)
	}
}

func TestCleanBulletsKeywordSplice(t *testing.T) {
	keywords := []string{"kubernetes", "go"}

	tests := []struct {
		name     string
		bullet   string
		want     string
		wantNote string
	}{
		{
			name:     "splice into using clause",
			bullet:   "Deployed the scheduling stack using containerized workloads across three regions",
			want:     "Deployed the scheduling stack using kubernetes and containerized workloads across three regions",
			wantNote: "spliced keyword",
		},
		{
			name:     "append when no clause exists",
			bullet:   "Reduced deployment time from hours to minutes for the platform team.",
			want:     "Reduced deployment time from hours to minutes for the platform team, leveraging kubernetes",
			wantNote: "appended keyword",
		},
		{
			name:   "bullet already covered is untouched",
			bullet: "Migrated sixty services to Kubernetes without downtime for any tenant",
			want:   "Migrated sixty services to Kubernetes without downtime for any tenant",
		},
		{
			name:     "clause found despite upper-case spelling",
			bullet:   "Shipped the ingestion pipeline USING batched writes for every tenant",
			want:     "Shipped the ingestion pipeline USING kubernetes and batched writes for every tenant",
			wantNote: "spliced keyword",
		},
		{
			// İ (U+0130) lower-cases to a two-rune sequence, so an index taken
			// from the lowered string would land mid-word here.
			name:     "runes that grow under lower-casing before the clause",
			bullet:   "İİİİ using x",
			want:     "İİİİ using kubernetes and x",
			wantNote: "spliced keyword",
		},
		{
			// Ⱥ (U+023A, 2 bytes) lower-cases to ⱥ (U+2C65, 3 bytes), so the
			// lowered string is longer than the original.
			name:     "splice offset stays in range with width-changing runes",
			bullet:   "ȺȺȺȺȺȺȺȺ with x",
			want:     "ȺȺȺȺȺȺȺȺ with kubernetes and x",
			wantNote: "spliced keyword",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, notes := CleanBullets([]string{tt.bullet}, keywords)
			if got[0] != tt.want {
				t.Errorf("got %q, want %q", got[0], tt.want)
			}
			if tt.wantNote == "" {
				for _, note := range notes {
					if strings.Contains(note, "keyword") {
						t.Errorf("unexpected keyword note %q", note)
					}
				}
				return
			}
			found := false
			for _, note := range notes {
				if strings.Contains(note, tt.wantNote) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected a note containing %q, got %v", tt.wantNote, notes)
			}
		})
	}
}

func TestCleanBulletsTruncation(t *testing.T) {
	long := "Architected " + strings.Repeat("very ", 40) + "large systems"
	got, notes := CleanBullets([]string{long}, nil)

	if n := utf8.RuneCountInString(got[0]); n > maxBulletLength {
		t.Errorf("bullet length %d exceeds max %d", n, maxBulletLength)
	}
	if !strings.HasSuffix(got[0], "...") {
		t.Errorf("truncated bullet should end with ellipsis, got %q", got[0])
	}
	found := false
	for _, note := range notes {
		if strings.Contains(note, "truncated") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a truncation note, got %v", notes)
	}
}

func TestCleanBulletsShortBulletNote(t *testing.T) {
	_, notes := CleanBullets([]string{"Shipped it"}, nil)
	found := false
	for _, note := range notes {
		if strings.Contains(note, "under-detailed") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an under-detailed note for a short bullet, got %v", notes)
	}
}

func TestCleanBulletsDoesNotMutateInput(t *testing.T) {
	input := []string{"• developed the api", "• developed the worker"}
	CleanBullets(input, []string{"go"})
	if input[0] != "• developed the api" || input[1] != "• developed the worker" {
		t.Errorf("input slice was mutated: %v", input)
	}
}

func TestBulletQuality(t *testing.T) {
	bullets := []string{
		"Developed the payments API in Go serving forty thousand requests a second",
		"Optimized PostgreSQL query plans, cutting p99 latency by seventy percent",
		"Developed internal Go tooling adopted by six teams",
	}
	keywords := []string{"go", "postgresql"}

	q := BulletQuality(bullets, keywords)

	// Two distinct verbs over three bullets.
	if q.UniqueVerbs != 2 {
		t.Errorf("UniqueVerbs = %d, want 2", q.UniqueVerbs)
	}
	if q.VerbDiversity < 66 || q.VerbDiversity > 67 {
		t.Errorf("VerbDiversity = %.2f, want ~66.67", q.VerbDiversity)
	}
	if q.KeywordCoverage != 100 {
		t.Errorf("KeywordCoverage = %.2f, want 100", q.KeywordCoverage)
	}
	if q.AvgBulletLength <= 0 {
		t.Errorf("AvgBulletLength = %.2f, want positive", q.AvgBulletLength)
	}
}

func TestBulletQualityEmpty(t *testing.T) {
	q := BulletQuality(nil, []string{"go"})
	if q.UniqueVerbs != 0 || q.VerbDiversity != 0 || q.ATSAlignment != 0 {
		t.Errorf("expected zero quality for empty bullets, got %+v", q)
	}
}

func BenchmarkCleanBullets(b *testing.B) {
	bullets := []string{
		"• developed the ingestion service handling two million events per day",
		"- developed the scoring pipeline with sub-second end to end latency",
		"1. built internal dashboards used by the whole engineering org",
	}
	keywords := []string{"kubernetes", "go", "postgresql"}
	for b.Loop() {
		CleanBullets(bullets, keywords)
	}
}
