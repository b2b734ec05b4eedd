package assessment

import "github.com/blumie/wellcheck/internal/llm"

// Truthfulness labels a verdict may carry.
const (
	Genuine                 = "Genuine"
	PotentiallyInconsistent = "Potentially Inconsistent"
)

// truthfulnessAliases maps alternate spellings of a label to the label.
var truthfulnessAliases = map[string]string{
	"PotentiallyInconsistent": PotentiallyInconsistent,
}

// NoActionRecommendation is the recommendation the service is told to use
// when nothing needs doing.
const NoActionRecommendation = "No immediate action recommended, continue normal observation."

// VerdictSchema constrains the reasoning service's reply to a Verdict.
var VerdictSchema = &llm.Schema{
	Name:        "risk-verdict",
	Description: "Truthfulness and risk assessment of a student's mood entry",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"truthfulness": map[string]any{
				"type":        "string",
				"enum":        []any{Genuine, PotentiallyInconsistent},
				"description": "Whether the self-reported mood is consistent with the quiz answers",
			},
			"reasoning": map[string]any{
				"type":        "string",
				"description": "A concise, one or two-sentence professional observation explaining the assessment",
			},
			"alertCaretaker": map[string]any{
				"type":        "boolean",
				"description": "True if the answers indicate a high-risk situation requiring immediate intervention",
			},
			"recommendation": map[string]any{
				"type":        "string",
				"description": "A concise, actionable next step for the warden, or '" + NoActionRecommendation + "'",
			},
		},
		"required":             []any{"truthfulness", "reasoning", "alertCaretaker", "recommendation"},
		"additionalProperties": false,
	},
}

// SummarySchema constrains the mood analyzer's reply.
var SummarySchema = &llm.Schema{
	Name:        "mood-summary",
	Description: "One-sentence observation of a student's well-being",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "A one-sentence observation, e.g. 'The student seems...'",
			},
		},
		"required":             []any{"summary"},
		"additionalProperties": false,
	},
}
