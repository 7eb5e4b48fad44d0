package factcheck

import (
	"encoding/json"
	"time"
)

// ClaimOutcome is one claim's validation outcome as reported by the
// verification service.
type ClaimOutcome struct {
	Text       string
	Verdict    string
	Confidence float64
	Evidence   map[string]int // evidence count per category (news, research, ...)
	Sources    int
	Validated  bool // the service attached a validation block to this claim
}

// ScoreInput is the scorer's input: the per-claim outcomes of one job.
type ScoreInput []ClaimOutcome

// ResultMeta is the bookkeeping the service reports alongside claims.
type ResultMeta struct {
	ValidationMode        string
	ProcessingTimeSeconds float64
	APICost               float64
	NumSources            int
	CompletedAt           time.Time
}

// DefaultConfidence is assumed for claims whose validation carries no
// confidence value.
const DefaultConfidence = 0.5

// ParseResult extracts a ScoreInput and bookkeeping from the raw
// service payload. The payload schema varies between service versions
// (validation_result vs validation_output, optional nested fields), so
// the parser is deliberately permissive: unknown or missing fields
// default, they never fail the pipeline.
func ParseResult(raw json.RawMessage) (ScoreInput, ResultMeta) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ResultMeta{}
	}

	meta := ResultMeta{
		ValidationMode:        strField(doc, "validation_mode", "mode"),
		ProcessingTimeSeconds: numField(doc, "processing_time_seconds", "processing_time"),
		APICost:               numField(doc, "api_cost", "cost"),
		NumSources:            int(numField(doc, "num_sources", "total_sources")),
	}
	if ts := strField(doc, "completed_at", "finished_at"); ts != "" {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, ts); err == nil {
				meta.CompletedAt = t
				break
			}
		}
	}

	claims := listField(doc, "claims", "results")
	input := make(ScoreInput, 0, len(claims))
	for _, entry := range claims {
		claim, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		out := ClaimOutcome{
			Text:       strField(claim, "claim", "text"),
			Confidence: DefaultConfidence,
		}
		// Older service versions report validation_output, newer ones
		// validation_result. Some claims carry neither.
		validation, _ := claim["validation_result"].(map[string]any)
		if validation == nil {
			validation, _ = claim["validation_output"].(map[string]any)
		}
		if validation != nil {
			out.Validated = true
			out.Verdict = strField(validation, "verdict", "result")
			if c, ok := numFieldOK(validation, "confidence"); ok {
				out.Confidence = c
			}
			out.Sources = int(numField(validation, "num_sources", "sources_checked"))
			out.Evidence = evidenceField(validation)
		}
		input = append(input, out)
	}

	if meta.NumSources == 0 {
		for _, c := range input {
			meta.NumSources += c.Sources
		}
	}
	return input, meta
}

func strField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			return s
		}
	}
	return ""
}

func numField(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := numFieldOK(m, k); ok {
			return v
		}
	}
	return 0
}

func numFieldOK(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func listField(m map[string]any, keys ...string) []any {
	for _, k := range keys {
		if l, ok := m[k].([]any); ok {
			return l
		}
	}
	return nil
}

func evidenceField(validation map[string]any) map[string]int {
	breakdown, _ := validation["evidence_breakdown"].(map[string]any)
	if breakdown == nil {
		breakdown, _ = validation["source_types"].(map[string]any)
	}
	if len(breakdown) == 0 {
		return nil
	}
	out := make(map[string]int, len(breakdown))
	for cat, v := range breakdown {
		if n, ok := v.(float64); ok && n > 0 {
			out[cat] = int(n)
		}
	}
	return out
}
