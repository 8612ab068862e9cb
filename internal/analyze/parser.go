package analyze

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"arxtract/internal/models"
)

var (
	fenceOpen  = regexp.MustCompile("^```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("\\s*```$")
	digitRun   = regexp.MustCompile(`\d+`)
)

// stripCodeFence removes a markdown code fence the model sometimes wraps
// around JSON output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = fenceOpen.ReplaceAllString(s, "")
		s = fenceClose.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}

// parseExtraction decodes the extraction JSON. Fields of the wrong type are
// coerced to their null/empty form rather than failing the whole response.
func parseExtraction(raw string) (*models.ExtractionResult, error) {
	cleaned := stripCodeFence(raw)
	var fields map[string]any
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, fmt.Errorf("invalid JSON: %v", err)
	}
	return &models.ExtractionResult{
		Title:              asNullableString(fields["title"]),
		ProblemStatement:   asNullableString(fields["problem_statement"]),
		TaskType:           asNullableString(fields["task_type"]),
		CoreContribution:   asNullableString(fields["core_contribution"]),
		ModelArchitecture:  asNullableString(fields["model_architecture"]),
		TrainingDetails:    asNullableString(fields["training_details"]),
		Datasets:           asStringList(fields["datasets"]),
		EvaluationMetrics:  asStringList(fields["evaluation_metrics"]),
		Baselines:          asStringList(fields["baselines"]),
		KeyResults:         asNullableString(fields["key_results"]),
		Limitations:        asNullableString(fields["limitations"]),
		ApplicationDomains: asStringList(fields["application_domains"]),
	}, nil
}

func asNullableString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func asStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// parseIndexList decodes a JSON array of chunk positions, dropping anything
// out of [0, n) and deduplicating while preserving order.
func parseIndexList(raw string, n int) ([]int, error) {
	cleaned := stripCodeFence(raw)
	var indices []int
	if err := json.Unmarshal([]byte(cleaned), &indices); err != nil {
		return nil, fmt.Errorf("invalid index array: %v", err)
	}
	seen := make(map[int]bool, len(indices))
	valid := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= n || seen[i] {
			continue
		}
		seen[i] = true
		valid = append(valid, i)
	}
	return valid, nil
}

// parseScore reads an integer relevance judgment, salvaging the first digit
// run from chatty responses. Unusable output scores a neutral 50.
func parseScore(raw string) float64 {
	cleaned := stripCodeFence(raw)
	score, err := strconv.Atoi(cleaned)
	if err != nil {
		m := digitRun.FindString(cleaned)
		if m == "" {
			return 50
		}
		score, _ = strconv.Atoi(m)
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return float64(score)
}

// parseStringArray decodes a JSON array of strings and requires it to match
// the expected length, so cleaned chunks stay index-aligned with their input.
func parseStringArray(raw string, want int) ([]string, error) {
	cleaned := stripCodeFence(raw)
	var out []string
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("invalid string array: %v", err)
	}
	if len(out) != want {
		return nil, fmt.Errorf("expected %d elements, got %d", want, len(out))
	}
	return out, nil
}
