package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumeforge/internal/ats"
	"resumeforge/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "ScoreResult", &ScoreTextFormatter{})
	registry.RegisterFormatter("markdown", "ScoreResult", &ScoreMarkdownFormatter{})
	registry.RegisterFormatter("text", "OptimizationResult", &OptimizationTextFormatter{})
	registry.RegisterFormatter("markdown", "OptimizationResult", &OptimizationMarkdownFormatter{})
	registry.RegisterFormatter("text", "ExtractedKeywords", &KeywordsTextFormatter{})
	registry.RegisterFormatter("markdown", "ExtractedKeywords", &KeywordsMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ScoreResult:
		return "ScoreResult"
	case types.OptimizationResult:
		return "OptimizationResult"
	case types.ExtractedKeywords:
		return "ExtractedKeywords"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

func writeBreakdown(output *strings.Builder, breakdown types.ScoreBreakdown, lineFormat string) {
	output.WriteString(fmt.Sprintf(lineFormat, "Keyword Match", breakdown.KeywordMatch))
	output.WriteString(fmt.Sprintf(lineFormat, "Experience Relevance", breakdown.ExperienceRelevance))
	output.WriteString(fmt.Sprintf(lineFormat, "Format Compatibility", breakdown.FormatCompatibility))
	output.WriteString(fmt.Sprintf(lineFormat, "Section Completeness", breakdown.SectionCompleteness))
	output.WriteString(fmt.Sprintf(lineFormat, "Clarity & Uniqueness", breakdown.ClarityUniqueness))
}

// ScoreTextFormatter handles text formatting for scoring results
type ScoreTextFormatter struct{}

func (stf *ScoreTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ScoreResult)
	if !ok {
		return "", fmt.Errorf("expected ScoreResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== ATS SCORE ===\n\n")
	output.WriteString(fmt.Sprintf("Overall Score: %d/100\n\n", result.Score))

	output.WriteString("=== BREAKDOWN ===\n")
	writeBreakdown(&output, result.Breakdown, "%s: %d/20\n")
	output.WriteString("\n")

	if len(result.Feedback) > 0 {
		output.WriteString("=== FEEDBACK ===\n")
		for _, line := range result.Feedback {
			output.WriteString(fmt.Sprintf("- %s\n", line))
		}
		output.WriteString("\n")
	}

	if len(result.Improvements) > 0 {
		output.WriteString("=== SUGGESTED IMPROVEMENTS ===\n")
		for i, improvement := range result.Improvements {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, improvement))
		}
	}

	return output.String(), nil
}

func (stf *ScoreTextFormatter) SupportedType() string {
	return "ScoreResult"
}

// ScoreMarkdownFormatter handles markdown formatting for scoring results
type ScoreMarkdownFormatter struct{}

func (smf *ScoreMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ScoreResult)
	if !ok {
		return "", fmt.Errorf("expected ScoreResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# ATS Score\n\n")
	output.WriteString(fmt.Sprintf("**Overall Score:** %d/100\n\n", result.Score))

	output.WriteString("## Breakdown\n\n")
	writeBreakdown(&output, result.Breakdown, "- **%s:** %d/20\n")
	output.WriteString("\n")

	if len(result.Feedback) > 0 {
		output.WriteString("## Feedback\n\n")
		for _, line := range result.Feedback {
			output.WriteString(fmt.Sprintf("- %s\n", line))
		}
		output.WriteString("\n")
	}

	if len(result.Improvements) > 0 {
		output.WriteString("## Suggested Improvements\n\n")
		for i, improvement := range result.Improvements {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, improvement))
		}
	}

	return output.String(), nil
}

func (smf *ScoreMarkdownFormatter) SupportedType() string {
	return "ScoreResult"
}

// OptimizationTextFormatter handles text formatting for optimization results
type OptimizationTextFormatter struct{}

func (otf *OptimizationTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.OptimizationResult)
	if !ok {
		return "", fmt.Errorf("expected OptimizationResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== OPTIMIZED RESUME ===\n\n")
	output.WriteString(ats.FormatForScoring(result.FinalResume))
	output.WriteString("\n\n")

	output.WriteString("=== OPTIMIZATION SUMMARY ===\n")
	output.WriteString(fmt.Sprintf("Final Score: %d/100\n", result.FinalScore))
	output.WriteString(fmt.Sprintf("Attempts Used: %d\n", result.TotalAttempts))
	if result.ReachedTarget {
		output.WriteString("Target score reached.\n")
	} else {
		output.WriteString("Target score not reached.\n")
	}
	output.WriteString("\n")

	if len(result.OptimizationSteps) > 0 {
		output.WriteString("=== OPTIMIZATION STEPS ===\n\n")
		for i, step := range result.OptimizationSteps {
			output.WriteString(fmt.Sprintf("%d. Regenerated %s section: %d -> %d\n",
				i+1, step.Section, step.BeforeScore, step.AfterScore))
			for _, improvement := range step.Improvements {
				output.WriteString(fmt.Sprintf("   - %s\n", improvement))
			}
		}
	}

	return output.String(), nil
}

func (otf *OptimizationTextFormatter) SupportedType() string {
	return "OptimizationResult"
}

// OptimizationMarkdownFormatter handles markdown formatting for optimization results
type OptimizationMarkdownFormatter struct{}

func (omf *OptimizationMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.OptimizationResult)
	if !ok {
		return "", fmt.Errorf("expected OptimizationResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Optimized Resume\n\n")
	output.WriteString("```\n")
	output.WriteString(ats.FormatForScoring(result.FinalResume))
	output.WriteString("\n```\n\n")

	output.WriteString("## Optimization Summary\n\n")
	output.WriteString(fmt.Sprintf("**Final Score:** %d/100\n\n", result.FinalScore))
	output.WriteString(fmt.Sprintf("**Attempts Used:** %d\n\n", result.TotalAttempts))
	if result.ReachedTarget {
		output.WriteString("Target score reached.\n\n")
	} else {
		output.WriteString("Target score not reached.\n\n")
	}

	if len(result.OptimizationSteps) > 0 {
		output.WriteString("## Optimization Steps\n\n")
		for i, step := range result.OptimizationSteps {
			output.WriteString(fmt.Sprintf("### %d. %s section (%d -> %d)\n\n",
				i+1, step.Section, step.BeforeScore, step.AfterScore))
			for _, improvement := range step.Improvements {
				output.WriteString(fmt.Sprintf("- %s\n", improvement))
			}
			if len(step.Improvements) > 0 {
				output.WriteString("\n")
			}
		}
	}

	return output.String(), nil
}

func (omf *OptimizationMarkdownFormatter) SupportedType() string {
	return "OptimizationResult"
}

func keywordCategories(keywords types.ExtractedKeywords) []struct {
	Name  string
	Items []string
} {
	return []struct {
		Name  string
		Items []string
	}{
		{"Technical Skills", keywords.TechnicalSkills},
		{"Tools", keywords.Tools},
		{"Frameworks", keywords.Frameworks},
		{"Soft Skills", keywords.SoftSkills},
		{"Requirements", keywords.Requirements},
		{"Industry Terms", keywords.IndustryTerms},
		{"Action Verbs", keywords.ActionVerbs},
	}
}

// KeywordsTextFormatter handles text formatting for extracted keywords
type KeywordsTextFormatter struct{}

func (ktf *KeywordsTextFormatter) Format(data any) (string, error) {
	keywords, ok := data.(types.ExtractedKeywords)
	if !ok {
		return "", fmt.Errorf("expected ExtractedKeywords, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== EXTRACTED KEYWORDS ===\n\n")
	for _, category := range keywordCategories(keywords) {
		if len(category.Items) == 0 {
			continue
		}
		output.WriteString(fmt.Sprintf("%s:\n", category.Name))
		for _, item := range category.Items {
			output.WriteString(fmt.Sprintf("- %s\n", item))
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (ktf *KeywordsTextFormatter) SupportedType() string {
	return "ExtractedKeywords"
}

// KeywordsMarkdownFormatter handles markdown formatting for extracted keywords
type KeywordsMarkdownFormatter struct{}

func (kmf *KeywordsMarkdownFormatter) Format(data any) (string, error) {
	keywords, ok := data.(types.ExtractedKeywords)
	if !ok {
		return "", fmt.Errorf("expected ExtractedKeywords, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Extracted Keywords\n\n")
	for _, category := range keywordCategories(keywords) {
		if len(category.Items) == 0 {
			continue
		}
		output.WriteString(fmt.Sprintf("## %s\n\n", category.Name))
		for _, item := range category.Items {
			output.WriteString(fmt.Sprintf("- %s\n", item))
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (kmf *KeywordsMarkdownFormatter) SupportedType() string {
	return "ExtractedKeywords"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
