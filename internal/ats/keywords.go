// Package ats implements the ATS optimization core: keyword extraction,
// resume formatting for scoring, bullet cleanup, suggestion ranking, and the
// bounded score-driven optimization loop.
package ats

import (
	"strings"

	"resumeforge/internal/types"
)

// Category word lists are immutable static configuration, fixed at process
// start. Matching is case-insensitive substring containment, so "java" also
// matches inside "javascript". That imprecision is retained on purpose:
// downstream prompts were tuned against it, and tokenized matching would
// silently change which keywords get prioritized.
var (
	technicalSkillTerms = []string{
		"python", "java", "javascript", "typescript", "go", "golang", "rust",
		"c++", "c#", "ruby", "php", "swift", "kotlin", "scala", "sql",
		"html", "css", "bash", "graphql", "rest", "grpc",
	}

	toolTerms = []string{
		"docker", "kubernetes", "terraform", "jenkins", "git", "github",
		"gitlab", "jira", "aws", "azure", "gcp", "linux", "postgresql",
		"mysql", "mongodb", "redis", "kafka", "rabbitmq", "elasticsearch",
		"prometheus", "grafana",
	}

	frameworkTerms = []string{
		"react", "angular", "vue", "next.js", "node.js", "express", "django",
		"flask", "fastapi", "spring", "rails", ".net", "laravel", "svelte",
		"tailwind", "pytorch", "tensorflow",
	}

	softSkillTerms = []string{
		"communication", "leadership", "collaboration", "teamwork",
		"problem solving", "problem-solving", "mentoring", "ownership",
		"adaptability", "stakeholder", "cross-functional", "attention to detail",
	}

	requirementTerms = []string{
		"agile", "scrum", "kanban", "ci/cd", "tdd", "devops", "microservices",
		"code review", "pair programming", "sprint", "unit testing",
		"system design", "sre",
	}

	actionVerbTerms = []string{
		"developed", "designed", "implemented", "built", "led", "managed",
		"optimized", "delivered", "launched", "architected", "automated",
		"migrated", "scaled", "improved", "maintained", "deployed",
	}
)

// industryVocabularies are only scanned when a matching domain trigger word is
// present in the text, to avoid false positives from generic industry terms.
var industryVocabularies = []struct {
	triggers []string
	terms    []string
}{
	{
		triggers: []string{"fintech", "financial", "banking", "payments"},
		terms: []string{
			"payments", "trading", "compliance", "kyc", "aml", "fraud detection",
			"ledger", "settlement", "pci",
		},
	},
	{
		triggers: []string{"e-commerce", "ecommerce", "retail", "marketplace"},
		terms: []string{
			"checkout", "cart", "inventory", "fulfillment", "conversion",
			"merchandising", "catalog",
		},
	},
	{
		triggers: []string{"healthcare", "health", "medical", "clinical"},
		terms: []string{
			"hipaa", "ehr", "emr", "hl7", "fhir", "patient data",
			"clinical workflows",
		},
	},
	{
		triggers: []string{"saas", "b2b", "subscription"},
		terms: []string{
			"multi-tenant", "onboarding", "churn", "mrr", "arr",
			"self-serve", "usage-based",
		},
	},
}

// ExtractKeywords pulls categorized keyword sets out of a free-text job
// description. Pure and deterministic: cheap substring scans only, safe to
// call redundantly every optimization iteration without memoization.
func ExtractKeywords(jobDescription string) types.ExtractedKeywords {
	text := strings.ToLower(jobDescription)

	return types.ExtractedKeywords{
		TechnicalSkills: matchTerms(text, technicalSkillTerms),
		Tools:           matchTerms(text, toolTerms),
		Frameworks:      matchTerms(text, frameworkTerms),
		SoftSkills:      matchTerms(text, softSkillTerms),
		Requirements:    matchTerms(text, requirementTerms),
		IndustryTerms:   matchIndustryTerms(text),
		ActionVerbs:     matchTerms(text, actionVerbTerms),
	}
}

// matchTerms keeps every list entry contained in the lower-cased text,
// preserving source list order.
func matchTerms(text string, terms []string) []string {
	var found []string
	for _, term := range terms {
		if strings.Contains(text, term) {
			found = append(found, term)
		}
	}
	return found
}

func matchIndustryTerms(text string) []string {
	var found []string
	for _, vocab := range industryVocabularies {
		if !containsAny(text, vocab.triggers) {
			continue
		}
		found = append(found, matchTerms(text, vocab.terms)...)
	}
	return found
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// PrioritizedKeywords flattens the extracted categories into a single slice,
// taking at most topN entries per category in a fixed category order. The
// slice seeds regeneration prompts and the bullet keyword-splice pass.
func PrioritizedKeywords(kw types.ExtractedKeywords, topN int) []string {
	var prioritized []string
	for _, category := range [][]string{
		kw.TechnicalSkills,
		kw.Frameworks,
		kw.Tools,
		kw.Requirements,
		kw.IndustryTerms,
		kw.SoftSkills,
	} {
		for i, term := range category {
			if i >= topN {
				break
			}
			prioritized = append(prioritized, term)
		}
	}
	return prioritized
}
