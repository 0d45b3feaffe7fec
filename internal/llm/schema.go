package llm

import "github.com/hana-yusof/lawcheck/constants"

// BuildJudgmentJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// We pass this to the model as a structured output constraint and also use it locally to validate.
// The status enum excludes EVALUATION_FAILED: that verdict is ours, assigned when the
// remote call itself fails, never something the model may claim.
func BuildJudgmentJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"status": map[string]any{
				"type": "string",
				"enum": constants.VerdictStrings(),
			},
			"reasoning": map[string]any{"type": "string", "minLength": 1},
			"citations": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "minLength": 1},
			},
		},
		"required": []string{"status", "reasoning"},
	}
}
