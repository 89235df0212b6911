package types

// Section identifies one of the independently regenerable resume subtrees
type Section string

const (
	SectionSummary    Section = "summary"
	SectionSkills     Section = "skills"
	SectionExperience Section = "experience"
	SectionProjects   Section = "projects"
)

// IsValid reports whether s names a known resume section
func (s Section) IsValid() bool {
	switch s {
	case SectionSummary, SectionSkills, SectionExperience, SectionProjects:
		return true
	}
	return false
}

// ModelTier selects between the high-quality and low-cost generation models
type ModelTier string

const (
	TierHigh ModelTier = "high"
	TierLow  ModelTier = "low"
)

// Priority ranks optimization suggestions
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns a sortable weight for the priority (higher sorts first)
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// ExtractedKeywords holds the categorized keyword sets pulled from a job description
type ExtractedKeywords struct {
	TechnicalSkills []string `json:"technicalSkills"`
	Tools           []string `json:"tools"`
	Frameworks      []string `json:"frameworks"`
	SoftSkills      []string `json:"softSkills"`
	Requirements    []string `json:"requirements"`
	IndustryTerms   []string `json:"industryTerms"`
	ActionVerbs     []string `json:"actionVerbs"`
}

// EntrySection is one dated entry in the experience or projects section
type EntrySection struct {
	Title   string   `json:"title"`
	Period  string   `json:"period,omitempty"`
	Bullets []string `json:"bullets,omitempty"`
}

// Resume is the working document mutated across optimization iterations.
// Section updates go through the With* methods, which copy only the affected
// subtree so prior snapshots stay untouched.
type Resume struct {
	JobTitle   string              `json:"jobTitle,omitempty"`
	Location   string              `json:"location,omitempty"`
	Summary    string              `json:"summary,omitempty"`
	Skills     map[string][]string `json:"skills,omitempty"`
	Experience []EntrySection      `json:"experience,omitempty"`
	Projects   []EntrySection      `json:"projects,omitempty"`
}

// WithSummary returns a copy of the resume with only the summary replaced
func (r Resume) WithSummary(summary string) Resume {
	r.Summary = summary
	return r
}

// WithSkills returns a copy of the resume with the given categories merged into
// skills. Existing categories with the same name are overwritten; unrelated
// categories survive.
func (r Resume) WithSkills(categories map[string][]string) Resume {
	merged := make(map[string][]string, len(r.Skills)+len(categories))
	for name, skills := range r.Skills {
		merged[name] = skills
	}
	for name, skills := range categories {
		copied := make([]string, len(skills))
		copy(copied, skills)
		merged[name] = copied
	}
	r.Skills = merged
	return r
}

// WithEntryBullets returns a copy of the resume with the bullets of one
// experience or projects entry replaced. The patched entry gets a fresh bullet
// slice; an out-of-range index leaves the resume unchanged.
func (r Resume) WithEntryBullets(section Section, index int, bullets []string) Resume {
	patch := func(entries []EntrySection) []EntrySection {
		if index < 0 || index >= len(entries) {
			return entries
		}
		patched := make([]EntrySection, len(entries))
		copy(patched, entries)
		copied := make([]string, len(bullets))
		copy(copied, bullets)
		patched[index].Bullets = copied
		return patched
	}

	switch section {
	case SectionExperience:
		r.Experience = patch(r.Experience)
	case SectionProjects:
		r.Projects = patch(r.Projects)
	}
	return r
}

// ScoreBreakdown is the 5-category sub-score decomposition, each 0-20
type ScoreBreakdown struct {
	KeywordMatch        int `json:"keywordMatch"`
	ExperienceRelevance int `json:"experienceRelevance"`
	FormatCompatibility int `json:"formatCompatibility"`
	SectionCompleteness int `json:"sectionCompleteness"`
	ClarityUniqueness   int `json:"clarityUniqueness"`
}

// ScoreResult is the oracle's verdict for one resume/job-description pair
type ScoreResult struct {
	Score        int            `json:"score"`
	Breakdown    ScoreBreakdown `json:"breakdown"`
	Feedback     []string       `json:"feedback"`
	Improvements []string       `json:"improvements"`
}

// ScoreInput bundles the inputs for one scoring call
type ScoreInput struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

// OptimizationSuggestion recommends regenerating one section, derived from a
// weak breakdown component. Suggestions are ephemeral and recomputed every
// iteration.
type OptimizationSuggestion struct {
	Section             Section  `json:"section"`
	Priority            Priority `json:"priority"`
	Reason              string   `json:"reason"`
	Action              string   `json:"action"`
	ExpectedImprovement int      `json:"expectedImprovement"`
}

// OptimizationStep is one append-only audit record of a loop iteration
type OptimizationStep struct {
	Section      Section  `json:"section"`
	BeforeScore  int      `json:"beforeScore"`
	AfterScore   int      `json:"afterScore"`
	Improvements []string `json:"improvements"`
}

// OptimizationResult is the terminal value of one optimization run
type OptimizationResult struct {
	FinalResume       Resume             `json:"finalResume"`
	FinalScore        int                `json:"finalScore"`
	OptimizationSteps []OptimizationStep `json:"optimizationSteps"`
	TotalAttempts     int                `json:"totalAttempts"`
	ReachedTarget     bool               `json:"reachedTarget"`
}

// WorkHistoryEntry is one real employment or project record from the user profile
type WorkHistoryEntry struct {
	Title      string   `json:"title"`
	Company    string   `json:"company,omitempty"`
	Period     string   `json:"period,omitempty"`
	Highlights []string `json:"highlights,omitempty"`
}

// UserProfile is the read-only background record that seeds regeneration.
// The optimizer never writes to it.
type UserProfile struct {
	Name        string             `json:"name,omitempty"`
	Email       string             `json:"email,omitempty"`
	Phone       string             `json:"phone,omitempty"`
	Location    string             `json:"location,omitempty"`
	Education   []string           `json:"education,omitempty"`
	WorkHistory []WorkHistoryEntry `json:"workHistory,omitempty"`
	Projects    []WorkHistoryEntry `json:"projects,omitempty"`
}

// GenerationContext bundles everything a section regeneration prompt needs
type GenerationContext struct {
	JobTitle       string            `json:"jobTitle"`
	CompanyName    string            `json:"companyName,omitempty"`
	JobDescription string            `json:"jobDescription"`
	Profile        UserProfile       `json:"profile"`
	Keywords       ExtractedKeywords `json:"keywords"`
	Tier           ModelTier         `json:"tier"`
}

// SectionQuality is a diagnostic record computed after section regeneration.
// It never gates acceptance of the regenerated content.
type SectionQuality struct {
	VerbDiversity   float64 `json:"verbDiversity"`
	KeywordCoverage float64 `json:"keywordCoverage"`
	AvgBulletLength float64 `json:"avgBulletLength"`
	UniqueVerbs     int     `json:"uniqueVerbs"`
	ATSAlignment    float64 `json:"atsAlignment"`
}

// SectionContent is the replacement content for a single regenerated section.
// Exactly one of Summary, Skills, or Bullets is populated, matching Section.
type SectionContent struct {
	Section Section             `json:"section"`
	Summary string              `json:"summary,omitempty"`
	Skills  map[string][]string `json:"skills,omitempty"`
	Bullets []string            `json:"bullets,omitempty"`

	// Human-readable notes from the cleanup pass (verb swaps, keyword splices)
	Notes   []string        `json:"notes,omitempty"`
	Quality *SectionQuality `json:"quality,omitempty"`
}
