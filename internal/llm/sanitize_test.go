package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hana-yusof/lawcheck/constants"
)

func TestClassifyReasoning(t *testing.T) {
	tests := []struct {
		name      string
		reasoning string
		want      constants.ComplianceStatus
		ok        bool
	}{
		{"non-compliant wins", "The clause is non-compliant with s.60E.", constants.NonCompliant, true},
		{"not compliant variant", "This is not compliant with the Employment Act.", constants.NonCompliant, true},
		{"partial before plain", "The clause is partially compliant: the cap is right but the rate is not.", constants.PartiallyCompliant, true},
		{"plain compliant", "The clause is compliant with the minimum notice period.", constants.Compliant, true},
		{"complies phrasing", "The clause complies with the statutory requirement.", constants.Compliant, true},
		{"no verdict stated", "The context contains nothing about probation periods.", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyReasoning(tt.reasoning)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeJudgment(t *testing.T) {
	t.Run("loose status spelling normalized", func(t *testing.T) {
		in := []byte(`{"status":"Non-Compliant","reasoning":"Violates s.60D."}`)
		out, changed, err := SanitizeJudgment(in)
		require.NoError(t, err)
		assert.Contains(t, changed, "status")
		require.NoError(t, ValidateAgainstSchema(BuildJudgmentJSONSchema(), out))

		var j Judgment
		require.NoError(t, json.Unmarshal(out, &j))
		assert.Equal(t, constants.NonCompliant, j.Status)
	})

	t.Run("status recovered from reasoning", func(t *testing.T) {
		in := []byte(`{"reasoning":"The clause is partially compliant with the overtime cap."}`)
		out, changed, err := SanitizeJudgment(in)
		require.NoError(t, err)
		assert.Contains(t, changed, "status")

		var j Judgment
		require.NoError(t, json.Unmarshal(out, &j))
		assert.Equal(t, constants.PartiallyCompliant, j.Status)
	})

	t.Run("empty citations dropped", func(t *testing.T) {
		in := []byte(`{"status":"COMPLIANT","reasoning":"Fine.","citations":["", "  "]}`)
		out, changed, err := SanitizeJudgment(in)
		require.NoError(t, err)
		assert.Contains(t, changed, "citations")
		assert.NotContains(t, string(out), "citations")
	})

	t.Run("unfixable document still fails validation", func(t *testing.T) {
		in := []byte(`{"reasoning":"No verdict can be derived from this."}`)
		out, _, err := SanitizeJudgment(in)
		require.NoError(t, err)
		assert.Error(t, ValidateAgainstSchema(BuildJudgmentJSONSchema(), out))
	})

	t.Run("malformed json is an error", func(t *testing.T) {
		_, _, err := SanitizeJudgment([]byte(`{"status":`))
		assert.Error(t, err)
	})
}

func TestJudgmentSchemaRejectsLocalVerdict(t *testing.T) {
	// EVALUATION_FAILED is assigned by the pipeline, never accepted from the model.
	in := []byte(`{"status":"EVALUATION_FAILED","reasoning":"pretending to fail"}`)
	assert.Error(t, ValidateAgainstSchema(BuildJudgmentJSONSchema(), in))
}

func TestBuildUserPrompt(t *testing.T) {
	req := EvaluateRequest{
		ClauseLabel: "2.1.",
		ClauseBody:  "Notice must be in writing.",
		Context: []LawSection{
			{Reference: "EA 1955 s.12", Title: "Notice of termination", Text: "Either party may terminate with written notice."},
		},
	}
	p := BuildUserPrompt(req)
	assert.Contains(t, p, "CONTRACT CLAUSE 2.1.: Notice must be in writing.")
	assert.Contains(t, p, "[EA 1955 s.12] Notice of termination")
	assert.Contains(t, p, "Either party may terminate")

	p = BuildUserPrompt(EvaluateRequest{ClauseLabel: "1.", ClauseBody: "x"})
	assert.Contains(t, p, "no relevant sections retrieved")
}
