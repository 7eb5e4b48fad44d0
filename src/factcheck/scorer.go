package factcheck

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Base credibility per normalized verdict. Unrecognized verdicts fall
// back to the UNVERIFIED base so unknown inputs never fail the
// pipeline.
var baseScores = map[string]int{
	VerdictTrue:           100,
	VerdictMostlyTrue:     85,
	VerdictPartiallyTrue:  70,
	VerdictUnverified:     50,
	VerdictMisleading:     30,
	VerdictFalse:          10,
	VerdictMisinformation: 0,
}

// NeutralScore is the defined output for an empty claim list.
const NeutralScore = 50

// ClaimCounts tallies claim outcomes per verdict bucket.
type ClaimCounts struct {
	Analyzed   int
	Validated  int
	True       int
	False      int
	Misleading int
	Unverified int
}

// Outcome is the scorer's full output for one job.
type Outcome struct {
	Score           int
	Verdict         string
	Counts          ClaimCounts
	SourceConsensus string
	Confidence      float64 // mean claim confidence, 0 when no claims
}

// NormalizeVerdict uppercases a verdict string and collapses runs of
// separators to single underscores: "mostly true" -> "MOSTLY_TRUE".
func NormalizeVerdict(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '/'
	})
	return strings.Join(fields, "_")
}

func baseScore(verdict string) int {
	if s, ok := baseScores[NormalizeVerdict(verdict)]; ok {
		return s
	}
	return baseScores[VerdictUnverified]
}

// Score computes the 0-100 credibility score. A single claim scores
// its base score weighted by confidence; multiple claims score the
// confidence-weighted average of their base scores. Rounded and
// clamped either way. An empty input scores NeutralScore by
// convention.
func Score(in ScoreInput) int {
	if len(in) == 0 {
		return NeutralScore
	}
	if len(in) == 1 {
		conf := in[0].Confidence
		if conf <= 0 {
			conf = DefaultConfidence
		}
		return clampScore(int(math.Round(float64(baseScore(in[0].Verdict)) * conf)))
	}
	var weighted, totalWeight float64
	for _, claim := range in {
		conf := claim.Confidence
		if conf <= 0 {
			conf = DefaultConfidence
		}
		weighted += float64(baseScore(claim.Verdict)) * conf
		totalWeight += conf
	}
	if totalWeight == 0 {
		return NeutralScore
	}
	return clampScore(int(math.Round(weighted / totalWeight)))
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// BucketVerdict maps any verdict string into exactly one of TRUE,
// FALSE, MISLEADING, UNVERIFIED. FALSE and MISINFORMATION dominate so
// that e.g. "TRUE BUT FALSE CONTEXT" never buckets to TRUE.
func BucketVerdict(v string) string {
	n := NormalizeVerdict(v)
	switch {
	case strings.Contains(n, "FALSE") || strings.Contains(n, "MISINFORMATION"):
		return VerdictFalse
	case strings.Contains(n, "MISLEADING"):
		return VerdictMisleading
	case strings.Contains(n, "TRUE"):
		return VerdictTrue
	default:
		return VerdictUnverified
	}
}

// CountVerdicts buckets every claim and accumulates the tallies.
func CountVerdicts(in ScoreInput) ClaimCounts {
	counts := ClaimCounts{Analyzed: len(in)}
	for _, claim := range in {
		if claim.Validated {
			counts.Validated++
		}
		switch BucketVerdict(claim.Verdict) {
		case VerdictTrue:
			counts.True++
		case VerdictFalse:
			counts.False++
		case VerdictMisleading:
			counts.Misleading++
		default:
			counts.Unverified++
		}
	}
	return counts
}

// PrimaryVerdict picks the record-level verdict. A single claim keeps
// its raw (normalized, non-bucketed) verdict; multiple claims take the
// most frequent bucket, ties broken alphabetically so the result never
// depends on input order.
func PrimaryVerdict(in ScoreInput) string {
	switch len(in) {
	case 0:
		return VerdictUnverified
	case 1:
		if v := NormalizeVerdict(in[0].Verdict); v != "" {
			return v
		}
		return VerdictUnverified
	}

	counts := CountVerdicts(in)
	byBucket := map[string]int{
		VerdictTrue:       counts.True,
		VerdictFalse:      counts.False,
		VerdictMisleading: counts.Misleading,
		VerdictUnverified: counts.Unverified,
	}
	buckets := make([]string, 0, len(byBucket))
	for b := range byBucket {
		buckets = append(buckets, b)
	}
	sort.Strings(buckets)

	best := VerdictUnverified
	bestCount := -1
	for _, b := range buckets {
		if byBucket[b] > bestCount {
			best, bestCount = b, byBucket[b]
		}
	}
	return best
}

// SourceConsensus labels how concentrated the evidence was across
// categories: the dominant category's share of total evidence yields
// STRONG_<CAT> at >=60%, MODERATE_<CAT> at >=40%, MIXED below. Zero
// evidence yields the empty string.
func SourceConsensus(evidence map[string]int) string {
	total := 0
	for _, n := range evidence {
		total += n
	}
	if total == 0 {
		return ""
	}

	cats := make([]string, 0, len(evidence))
	for cat := range evidence {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	dominant, max := "", -1
	for _, cat := range cats {
		if evidence[cat] > max {
			dominant, max = cat, evidence[cat]
		}
	}

	share := float64(max) / float64(total)
	label := NormalizeVerdict(dominant)
	switch {
	case share >= 0.6:
		return fmt.Sprintf("STRONG_%s", label)
	case share >= 0.4:
		return fmt.Sprintf("MODERATE_%s", label)
	default:
		return "MIXED"
	}
}

// Compute runs the full scoring pass over one job's claim outcomes.
func Compute(in ScoreInput) Outcome {
	out := Outcome{
		Score:   Score(in),
		Verdict: PrimaryVerdict(in),
		Counts:  CountVerdicts(in),
	}

	evidence := map[string]int{}
	var confSum float64
	for _, claim := range in {
		for cat, n := range claim.Evidence {
			evidence[cat] += n
		}
		conf := claim.Confidence
		if conf <= 0 {
			conf = DefaultConfidence
		}
		confSum += conf
	}
	out.SourceConsensus = SourceConsensus(evidence)
	if len(in) > 0 {
		out.Confidence = confSum / float64(len(in))
	}
	return out
}
