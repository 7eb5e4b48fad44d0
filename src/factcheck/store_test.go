package factcheck

import (
	"context"
	"errors"
	"testing"
	"time"
)

func pendingRecord(articleID uint64, jobID string) *FactCheckRecord {
	return &FactCheckRecord{
		ArticleID:        articleID,
		JobID:            jobID,
		Verdict:          VerdictPending,
		CredibilityScore: ScoreUnset,
		Summary:          "Fact check in progress",
	}
}

func TestMemStoreCreateAssignsID(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	rec := pendingRecord(1, "job-1")
	if err := s.Create(context.Background(), rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("no id assigned")
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set")
	}
}

func TestMemStoreUniquePerArticle(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	ctx := context.Background()
	if err := s.Create(ctx, pendingRecord(1, "job-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := s.Create(ctx, pendingRecord(1, "job-2"))
	if !errors.Is(err, ErrDuplicateArticle) {
		t.Fatalf("err = %v, want ErrDuplicateArticle", err)
	}
	// Failed create must not leak the new job id into the index.
	rec, err := s.GetByJobID(ctx, "job-2")
	if err != nil || rec != nil {
		t.Fatalf("job-2 lookup after failed create: rec=%v err=%v", rec, err)
	}
}

func TestMemStoreUniquePerJob(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	ctx := context.Background()
	if err := s.Create(ctx, pendingRecord(1, "job-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := s.Create(ctx, pendingRecord(2, "job-1"))
	if !errors.Is(err, ErrDuplicateJob) {
		t.Fatalf("err = %v, want ErrDuplicateJob", err)
	}
	if exists, _ := s.ExistsForArticle(ctx, 2); exists {
		t.Fatal("failed create left a record for article 2")
	}
}

func TestMemStoreTerminalRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	ctx := context.Background()
	rec := pendingRecord(7, "job-7")
	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	raw := `{"claims":[]}`
	conf := 0.9
	updated, err := s.Update(ctx, rec.ID, TerminalUpdate{
		Verdict:          VerdictTrue,
		CredibilityScore: 90,
		Confidence:       &conf,
		Summary:          "Analyzed 1 claims: 1 true, 0 false, 0 misleading, 0 unverified",
		Counts:           ClaimCounts{Analyzed: 1, Validated: 1, True: 1},
		RawResult:        &raw,
		SourceConsensus:  "STRONG_NEWS",
		FactCheckedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Verdict != VerdictTrue || updated.CredibilityScore != 90 {
		t.Fatalf("updated = %+v", updated)
	}

	got, err := s.GetByArticleID(ctx, 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Verdict != VerdictTrue || got.CredibilityScore != 90 {
		t.Fatalf("round-trip = %+v", got)
	}
	if got.RawResult == nil || *got.RawResult != raw {
		t.Fatalf("raw result = %v", got.RawResult)
	}
}

func TestMemStoreUpdateRejectsLateWrite(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	ctx := context.Background()
	rec := pendingRecord(3, "job-3")
	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Update(ctx, rec.ID, TerminalUpdate{Verdict: VerdictCancelled, CredibilityScore: ScoreUnset}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	// A poller observing "finished" after the cancel must lose.
	got, err := s.Update(ctx, rec.ID, TerminalUpdate{Verdict: VerdictTrue, CredibilityScore: 100})
	if !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("err = %v, want ErrAlreadyTerminal", err)
	}
	if got.Verdict != VerdictCancelled {
		t.Fatalf("verdict = %q, want CANCELLED preserved", got.Verdict)
	}
}

func TestMemStoreUpdateNotFound(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	_, err := s.Update(context.Background(), 99, TerminalUpdate{Verdict: VerdictError})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemStoreLookupsReturnNilWhenAbsent(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	ctx := context.Background()
	if rec, err := s.GetByArticleID(ctx, 1); rec != nil || err != nil {
		t.Fatalf("GetByArticleID = %v, %v", rec, err)
	}
	if rec, err := s.GetByJobID(ctx, "nope"); rec != nil || err != nil {
		t.Fatalf("GetByJobID = %v, %v", rec, err)
	}
	if exists, err := s.ExistsForArticle(ctx, 1); exists || err != nil {
		t.Fatalf("ExistsForArticle = %v, %v", exists, err)
	}
}

func TestMemStoreReturnsCopies(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	ctx := context.Background()
	rec := pendingRecord(4, "job-4")
	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, _ := s.GetByJobID(ctx, "job-4")
	got.Verdict = VerdictError

	again, _ := s.GetByJobID(ctx, "job-4")
	if again.Verdict != VerdictPending {
		t.Fatal("mutating a returned record leaked into the store")
	}
}
