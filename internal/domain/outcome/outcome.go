// Package outcome holds the display-only heuristics shown next to a case:
// a predicted outcome and a complexity bucket.
package outcome

import "strings"

// Predictions returned by Predict.
const (
	LowLevel     = "Low-level outcome: Warning or Fine"
	Moderate     = "Moderate-level: Investigation required, possible fine"
	ShortCustody = "Likely outcome: Short-term custody or Community Service"
	Technical    = "Technical investigation required; possible fine or arrest"
	Severe       = "Severe: Jail time likely, further investigation needed"
	Unavailable  = "Outcome prediction unavailable"
)

// Complexity buckets returned by Complexity.
const (
	LowComplexity    = "Low Complexity"
	MediumComplexity = "Medium Complexity"
	HighComplexity   = "High Complexity"
)

const (
	lowWordLimit    = 20
	mediumWordLimit = 50
)

type rule struct {
	match  func(typ, desc string) bool
	result string
}

// Rules are evaluated in order; first match wins.
var rules = []rule{
	{
		match: func(typ, desc string) bool {
			return strings.Contains(typ, "theft") &&
				(strings.Contains(desc, "watch") || strings.Contains(desc, "mobile"))
		},
		result: LowLevel,
	},
	{match: func(typ, _ string) bool { return strings.Contains(typ, "theft") }, result: Moderate},
	{match: func(typ, _ string) bool { return strings.Contains(typ, "assault") }, result: ShortCustody},
	{
		match: func(typ, desc string) bool {
			return strings.Contains(desc, "cyber") || strings.Contains(typ, "cyber")
		},
		result: Technical,
	},
	{
		match: func(typ, desc string) bool {
			return strings.Contains(typ, "murder") || strings.Contains(desc, "dead")
		},
		result: Severe,
	},
}

// Predict returns the outcome text for a report type and description.
// Matching is case-insensitive substring matching.
func Predict(reportType, description string) string {
	typ := strings.ToLower(reportType)
	desc := strings.ToLower(description)
	for _, r := range rules {
		if r.match(typ, desc) {
			return r.result
		}
	}
	return Unavailable
}

// WordCount counts whitespace-delimited words. Runs of spaces, tabs and
// newlines separate a single pair of words.
func WordCount(description string) int {
	return len(strings.Fields(description))
}

// Complexity buckets a description by WordCount.
func Complexity(description string) string {
	n := WordCount(description)
	switch {
	case n < lowWordLimit:
		return LowComplexity
	case n < mediumWordLimit:
		return MediumComplexity
	default:
		return HighComplexity
	}
}
