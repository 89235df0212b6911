package ai

import (
	"fmt"
	"strings"

	"resumeforge/internal/ats"
	"resumeforge/internal/types"
)

// SystemPrompts contains all system-level instructions for AI interactions
type SystemPrompts struct {
	ScoreResume       string
	RegenerateSection string
}

// UserPrompts contains user-level prompts with placeholders for dynamic content
type UserPrompts struct {
	ScoreResume       string
	RegenerateSection string
}

// promptKeywordsPerCategory bounds how many extracted keywords per category
// are injected into regeneration prompts.
const promptKeywordsPerCategory = 5

// DefaultWorkHistoryFallback is the explicit degrade-gracefully work history
// used when experience regeneration is asked for an entry the profile does
// not have. Regeneration against it is logged as a warning; it exists so a
// thin profile produces plausible structure instead of a hard failure, and it
// is deliberately limited to these two generic entries.
var DefaultWorkHistoryFallback = []types.WorkHistoryEntry{
	{
		Title:   "Software Engineer",
		Company: "Previous Technology Company",
		Period:  "2020 - 2023",
		Highlights: []string{
			"Contributed to backend services and internal tooling",
			"Collaborated with product and design on feature delivery",
		},
	},
	{
		Title:   "Junior Software Engineer",
		Company: "Earlier Technology Company",
		Period:  "2018 - 2020",
		Highlights: []string{
			"Maintained existing services and fixed production defects",
			"Wrote automated tests and improved build reliability",
		},
	},
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	ScoreResume: `You are an expert ATS (Applicant Tracking System) analyst. You evaluate how well a resume will perform when an employer's tracking software screens it against a specific job description.

Your core principles are:
- Score strictly and consistently: the same resume and job description must always produce the same assessment
- Judge only what is present in the resume text; never assume unstated skills
- Ground every piece of feedback in specific resume content or specific missing job requirements
- Respond with JSON only, exactly matching the requested shape`,

	RegenerateSection: `You are an expert resume writer optimizing a single resume section for ATS screening. Your core principles are:

- NEVER invent skills, employers, metrics, or achievements beyond the provided background
- Work the provided target keywords in naturally, only where they fit the actual background
- Use varied, strong action verbs; never start two bullets with the same verb
- Keep every bullet a single plain-text line with no markdown or special formatting
- Respond with JSON only, exactly matching the requested shape`,
}

// DefaultUserPrompts provides the default user prompt templates
var DefaultUserPrompts = UserPrompts{
	ScoreResume: `Score the following resume against the job description as an ATS would.

Use five equally weighted categories, each scored 0 to 20:

1. **Keyword Match** - how many of the job description's skills, tools, and qualifications appear in the resume
2. **Experience Relevance** - how closely the work history matches the role's responsibilities and seniority
3. **Format Compatibility** - how cleanly the resume parses: clear section headers, single-line bullets, no tables or graphics artifacts
4. **Section Completeness** - whether the expected sections (summary, skills, experience) are present and substantive
5. **Clarity & Uniqueness** - specific, quantified, distinctive phrasing versus generic filler

The overall score is the sum of the five categories (0 to 100).

Respond with a JSON object of this exact shape:
{
  "score": <integer 0-100>,
  "breakdown": {
    "keywordMatch": <integer 0-20>,
    "experienceRelevance": <integer 0-20>,
    "formatCompatibility": <integer 0-20>,
    "sectionCompleteness": <integer 0-20>,
    "clarityUniqueness": <integer 0-20>
  },
  "feedback": ["<observation about overall fit>", "..."],
  "improvements": ["<specific improvement>", "..."]
}

**Resume:**
-----
%s
-----

**Job Description:**
-----
%s
-----`,

	RegenerateSection: `Rewrite one section of a resume to improve its ATS score for a specific role.

%s

Target role: %s%s

Work these keywords in naturally where the background supports them:
%s

Bullet style guidance:
- GOOD: "Reduced checkout latency 40%% by profiling and rewriting the payment service's database access layer"
- GOOD: "Led migration of 60 services to Kubernetes, cutting deploy time from 45 minutes to 5"
- BAD: "Built various features" (generic, no outcome)
- BAD: "Responsible for backend development" (passive, no verb)
- Never start two bullets with the same action verb

Candidate background:
-----
%s
-----

Job description:
-----
%s
-----

Respond with a JSON object containing only the field(s) for the requested section:
%s`,
}

// sectionInstructions returns the per-section task description and the JSON
// shape hint for the regeneration prompt.
func sectionInstructions(section types.Section) (task string, shape string) {
	switch section {
	case types.SectionSummary:
		return "Rewrite the professional summary: two to three sentences positioning the candidate for this role.",
			`{"summary": "<professional summary>"}`
	case types.SectionSkills:
		return "Rewrite the skills section: group skills into named categories, leading with those the job description asks for.",
			`{"skills": {"<category name>": ["<skill>", "..."]}}`
	case types.SectionExperience:
		return "Rewrite the bullets for the specified work history entry: three to five outcome-focused bullets.",
			`{"bullets": ["<bullet>", "..."]}`
	case types.SectionProjects:
		return "Rewrite the bullets for the specified project: two to four bullets emphasizing scope and results.",
			`{"bullets": ["<bullet>", "..."]}`
	default:
		return "", "{}"
	}
}

// formatProfileBackground renders the relevant slice of the user profile for
// a regeneration prompt.
func formatProfileBackground(section types.Section, profile types.UserProfile, entry *types.WorkHistoryEntry) string {
	var b strings.Builder

	if entry != nil {
		fmt.Fprintf(&b, "Entry being rewritten: %s", entry.Title)
		if entry.Company != "" {
			fmt.Fprintf(&b, " at %s", entry.Company)
		}
		if entry.Period != "" {
			fmt.Fprintf(&b, " (%s)", entry.Period)
		}
		b.WriteString("\n")
		for _, h := range entry.Highlights {
			fmt.Fprintf(&b, "- %s\n", h)
		}
		return strings.TrimRight(b.String(), "\n")
	}

	if len(profile.WorkHistory) > 0 {
		b.WriteString("Work history:\n")
		for _, e := range profile.WorkHistory {
			fmt.Fprintf(&b, "- %s", e.Title)
			if e.Company != "" {
				fmt.Fprintf(&b, " at %s", e.Company)
			}
			if e.Period != "" {
				fmt.Fprintf(&b, " (%s)", e.Period)
			}
			b.WriteString("\n")
			for _, h := range e.Highlights {
				fmt.Fprintf(&b, "  - %s\n", h)
			}
		}
	}
	if len(profile.Projects) > 0 && section == types.SectionProjects {
		b.WriteString("Projects:\n")
		for _, e := range profile.Projects {
			fmt.Fprintf(&b, "- %s\n", e.Title)
			for _, h := range e.Highlights {
				fmt.Fprintf(&b, "  - %s\n", h)
			}
		}
	}
	if len(profile.Education) > 0 {
		b.WriteString("Education:\n")
		for _, e := range profile.Education {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}

	if b.Len() == 0 {
		return "(no background provided)"
	}
	return strings.TrimRight(b.String(), "\n")
}

// buildRegeneratePrompt assembles the full user prompt for a section rewrite
func buildRegeneratePrompt(template string, section types.Section, genCtx types.GenerationContext, entry *types.WorkHistoryEntry) string {
	task, shape := sectionInstructions(section)

	company := ""
	if genCtx.CompanyName != "" {
		company = " at " + genCtx.CompanyName
	}

	keywords := ats.PrioritizedKeywords(genCtx.Keywords, promptKeywordsPerCategory)
	keywordList := "(none extracted)"
	if len(keywords) > 0 {
		keywordList = strings.Join(keywords, ", ")
	}

	return fmt.Sprintf(template,
		task,
		genCtx.JobTitle,
		company,
		keywordList,
		formatProfileBackground(section, genCtx.Profile, entry),
		genCtx.JobDescription,
		shape,
	)
}
