package llm

import (
	"encoding/json"
	"strings"

	"github.com/hana-yusof/lawcheck/constants"
)

// ClassifyReasoning derives a verdict from free-text reasoning. Models that
// ignore the enum still tend to state the verdict in prose, so keyword
// matching recovers it. Order matters: "partially compliant" contains
// "compliant", and "non-compliant" must win over both.
func ClassifyReasoning(reasoning string) (constants.ComplianceStatus, bool) {
	r := strings.ToLower(reasoning)
	switch {
	case strings.Contains(r, "non-compliant") || strings.Contains(r, "not compliant") || strings.Contains(r, "non compliant"):
		return constants.NonCompliant, true
	case strings.Contains(r, "partially compliant") || strings.Contains(r, "partial compliance"):
		return constants.PartiallyCompliant, true
	case strings.Contains(r, "compliant") || strings.Contains(r, "complies"):
		return constants.Compliant, true
	}
	return "", false
}

// SanitizeJudgment repairs a judgment document that fails strict validation,
// touching only what can be fixed mechanically: status casing/punctuation,
// a status recovered from the reasoning text, and malformed citation entries.
// Returns the cleaned JSON plus the names of the fields it changed.
func SanitizeJudgment(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, err
	}

	var changed []string

	reasoning, _ := m["reasoning"].(string)
	reasoning = strings.TrimSpace(reasoning)
	m["reasoning"] = reasoning

	status := normalizeStatus(m["status"])
	if status == "" && reasoning != "" {
		if derived, ok := ClassifyReasoning(reasoning); ok {
			status = derived
			changed = append(changed, "status")
		}
	}
	if status != "" {
		if s, _ := m["status"].(string); s != string(status) {
			changed = append(changed, "status")
		}
		m["status"] = string(status)
	}

	// citations: keep non-empty strings only; drop the field when nothing survives
	if raw, ok := m["citations"]; ok {
		var kept []string
		if items, ok := raw.([]any); ok {
			for _, it := range items {
				if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
					kept = append(kept, strings.TrimSpace(s))
				}
			}
		}
		if len(kept) == 0 {
			delete(m, "citations")
			changed = append(changed, "citations")
		} else {
			m["citations"] = kept
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, changed, err
	}
	return out, changed, nil
}

// normalizeStatus maps loose status spellings ("Non-Compliant", "partially
// compliant ") onto the canonical enum. Unknown values map to "".
func normalizeStatus(v any) constants.ComplianceStatus {
	s, _ := v.(string)
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	switch constants.ComplianceStatus(s) {
	case constants.Compliant, constants.PartiallyCompliant, constants.NonCompliant:
		return constants.ComplianceStatus(s)
	}
	return ""
}
