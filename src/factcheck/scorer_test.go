package factcheck

import (
	"math"
	"testing"
)

func TestNormalizeVerdict(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"true", "TRUE"},
		{"Mostly True", "MOSTLY_TRUE"},
		{"mostly-true", "MOSTLY_TRUE"},
		{"  partially__true ", "PARTIALLY_TRUE"},
		{"FALSE", "FALSE"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeVerdict(c.in); got != c.want {
			t.Errorf("NormalizeVerdict(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestScoreSingleClaim(t *testing.T) {
	t.Parallel()

	cases := []struct {
		verdict    string
		confidence float64
		want       int
	}{
		{"TRUE", 0.9, 90},
		{"TRUE", 1.0, 100},
		{"MOSTLY_TRUE", 1.0, 85},
		{"mostly true", 0.8, 68},
		{"FALSE", 0.5, 5},
		{"MISINFORMATION", 1.0, 0},
		{"no-such-verdict", 1.0, 50}, // unknown verdicts fall back to UNVERIFIED base
		{"UNVERIFIED", 0, 25},        // absent confidence defaults to 0.5
	}
	for _, c := range cases {
		in := ScoreInput{{Verdict: c.verdict, Confidence: c.confidence, Validated: true}}
		if got := Score(in); got != c.want {
			t.Errorf("Score(%q conf=%v) = %d, want %d", c.verdict, c.confidence, got, c.want)
		}
	}
}

func TestScoreMultiClaimWeightedAverage(t *testing.T) {
	t.Parallel()

	in := ScoreInput{
		{Verdict: "TRUE", Confidence: 0.9},
		{Verdict: "FALSE", Confidence: 0.3},
	}
	// (100*0.9 + 10*0.3) / (0.9 + 0.3) = 93/1.2 = 77.5 -> 78
	if got := Score(in); got != 78 {
		t.Fatalf("Score = %d, want 78", got)
	}
}

func TestScoreOrderInvariant(t *testing.T) {
	t.Parallel()

	a := ScoreInput{
		{Verdict: "TRUE", Confidence: 0.9},
		{Verdict: "MISLEADING", Confidence: 0.6},
		{Verdict: "FALSE", Confidence: 0.4},
	}
	b := ScoreInput{a[2], a[0], a[1]}
	if Score(a) != Score(b) {
		t.Fatalf("score depends on claim order: %d vs %d", Score(a), Score(b))
	}
}

func TestScoreEmptyInput(t *testing.T) {
	t.Parallel()

	if got := Score(nil); got != NeutralScore {
		t.Fatalf("Score(nil) = %d, want %d", got, NeutralScore)
	}
}

func TestScoreClamped(t *testing.T) {
	t.Parallel()

	if got := Score(ScoreInput{{Verdict: "MISINFORMATION", Confidence: 1.0}}); got != 0 {
		t.Fatalf("Score = %d, want 0", got)
	}
	if got := Score(ScoreInput{{Verdict: "TRUE", Confidence: 1.0}}); got != 100 {
		t.Fatalf("Score = %d, want 100", got)
	}
}

func TestBucketVerdict(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"TRUE", VerdictTrue},
		{"MOSTLY TRUE", VerdictTrue},
		{"partially-true", VerdictTrue},
		{"FALSE", VerdictFalse},
		{"MOSTLY FALSE", VerdictFalse},
		{"MISINFORMATION", VerdictFalse},
		{"TRUE BUT FALSE CONTEXT", VerdictFalse}, // FALSE dominates TRUE
		{"MISLEADING", VerdictMisleading},
		{"PARTIALLY MISLEADING", VerdictMisleading},
		{"UNVERIFIED", VerdictUnverified},
		{"MIXED", VerdictUnverified},
		{"", VerdictUnverified},
	}
	for _, c := range cases {
		if got := BucketVerdict(c.in); got != c.want {
			t.Errorf("BucketVerdict(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCountVerdicts(t *testing.T) {
	t.Parallel()

	in := ScoreInput{
		{Verdict: "TRUE", Validated: true},
		{Verdict: "MOSTLY TRUE", Validated: true},
		{Verdict: "FALSE", Validated: true},
		{Verdict: "MISLEADING", Validated: true},
		{Verdict: "", Validated: false},
	}
	counts := CountVerdicts(in)
	if counts.Analyzed != 5 || counts.Validated != 4 {
		t.Fatalf("analyzed/validated = %d/%d, want 5/4", counts.Analyzed, counts.Validated)
	}
	if counts.True != 2 || counts.False != 1 || counts.Misleading != 1 || counts.Unverified != 1 {
		t.Fatalf("buckets = %+v", counts)
	}
}

func TestPrimaryVerdictSingleClaimKeepsRawVerdict(t *testing.T) {
	t.Parallel()

	in := ScoreInput{{Verdict: "mostly true", Validated: true}}
	if got := PrimaryVerdict(in); got != "MOSTLY_TRUE" {
		t.Fatalf("PrimaryVerdict = %q, want MOSTLY_TRUE", got)
	}
}

func TestPrimaryVerdictMajorityBucket(t *testing.T) {
	t.Parallel()

	in := ScoreInput{
		{Verdict: "TRUE"},
		{Verdict: "MOSTLY TRUE"},
		{Verdict: "FALSE"},
	}
	if got := PrimaryVerdict(in); got != VerdictTrue {
		t.Fatalf("PrimaryVerdict = %q, want TRUE", got)
	}
}

func TestPrimaryVerdictTieBreaksAlphabetically(t *testing.T) {
	t.Parallel()

	// One TRUE, one FALSE: FALSE < TRUE, so the tie resolves to FALSE
	// regardless of input order.
	a := ScoreInput{{Verdict: "TRUE"}, {Verdict: "FALSE"}}
	b := ScoreInput{{Verdict: "FALSE"}, {Verdict: "TRUE"}}
	if got := PrimaryVerdict(a); got != VerdictFalse {
		t.Fatalf("PrimaryVerdict = %q, want FALSE", got)
	}
	if PrimaryVerdict(a) != PrimaryVerdict(b) {
		t.Fatal("tie-break depends on input order")
	}
}

func TestPrimaryVerdictEmpty(t *testing.T) {
	t.Parallel()

	if got := PrimaryVerdict(nil); got != VerdictUnverified {
		t.Fatalf("PrimaryVerdict(nil) = %q, want UNVERIFIED", got)
	}
}

func TestSourceConsensus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		evidence map[string]int
		want     string
	}{
		{map[string]int{"news": 70, "research": 30}, "STRONG_NEWS"},
		{map[string]int{"news": 45, "research": 30, "general": 25}, "MODERATE_NEWS"},
		{map[string]int{"news": 35, "research": 35, "general": 30}, "MIXED"},
		{map[string]int{"research": 10}, "STRONG_RESEARCH"},
		{map[string]int{}, ""},
		{nil, ""},
	}
	for _, c := range cases {
		if got := SourceConsensus(c.evidence); got != c.want {
			t.Errorf("SourceConsensus(%v) = %q, want %q", c.evidence, got, c.want)
		}
	}
}

func TestComputeAggregatesEvidence(t *testing.T) {
	t.Parallel()

	in := ScoreInput{
		{Verdict: "TRUE", Confidence: 0.8, Evidence: map[string]int{"news": 40}, Validated: true},
		{Verdict: "TRUE", Confidence: 0.6, Evidence: map[string]int{"news": 30, "research": 30}, Validated: true},
	}
	out := Compute(in)
	if out.SourceConsensus != "STRONG_NEWS" {
		t.Fatalf("consensus = %q, want STRONG_NEWS", out.SourceConsensus)
	}
	if out.Verdict != VerdictTrue {
		t.Fatalf("verdict = %q, want TRUE", out.Verdict)
	}
	if want := 0.7; math.Abs(out.Confidence-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", out.Confidence, want)
	}
}
