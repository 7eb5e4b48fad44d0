package factcheck

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemStore is an in-memory Store used by tests and single-process
// deployments. Safe for concurrent use.
type MemStore struct {
	mu        sync.Mutex
	records   map[uint64]*FactCheckRecord
	byArticle map[uint64]uint64 // articleID -> record id
	byJob     map[string]uint64
	nextID    uint64
}

func NewMemStore() *MemStore {
	return &MemStore{
		records:   map[uint64]*FactCheckRecord{},
		byArticle: map[uint64]uint64{},
		byJob:     map[string]uint64{},
		nextID:    1,
	}
}

func (s *MemStore) Create(_ context.Context, rec *FactCheckRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byArticle[rec.ArticleID]; exists {
		return ErrDuplicateArticle
	}
	if _, exists := s.byJob[rec.JobID]; exists {
		return ErrDuplicateJob
	}

	rec.ID = s.nextID
	s.nextID++
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	stored := *rec
	s.records[rec.ID] = &stored
	s.byArticle[rec.ArticleID] = rec.ID
	s.byJob[rec.JobID] = rec.ID
	return nil
}

func (s *MemStore) Update(_ context.Context, id uint64, upd TerminalUpdate) (*FactCheckRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w (id %d)", ErrNotFound, id)
	}
	if rec.Terminal() {
		out := *rec
		return &out, ErrAlreadyTerminal
	}

	rec.Verdict = upd.Verdict
	rec.CredibilityScore = upd.CredibilityScore
	rec.Confidence = upd.Confidence
	rec.Summary = upd.Summary
	rec.ClaimsAnalyzed = upd.Counts.Analyzed
	rec.ClaimsValidated = upd.Counts.Validated
	rec.TrueClaims = upd.Counts.True
	rec.FalseClaims = upd.Counts.False
	rec.MisleadingClaims = upd.Counts.Misleading
	rec.UnverifiedClaims = upd.Counts.Unverified
	rec.RawResult = upd.RawResult
	rec.NumSources = upd.NumSources
	rec.SourceConsensus = upd.SourceConsensus
	rec.ValidationMode = upd.ValidationMode
	rec.ProcessingTimeSeconds = upd.ProcessingTimeSeconds
	rec.APICost = upd.APICost
	rec.FactCheckedAt = upd.FactCheckedAt
	rec.UpdatedAt = time.Now().UTC()

	out := *rec
	return &out, nil
}

func (s *MemStore) GetByArticleID(_ context.Context, articleID uint64) (*FactCheckRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byArticle[articleID]; ok {
		out := *s.records[id]
		return &out, nil
	}
	return nil, nil
}

func (s *MemStore) GetByJobID(_ context.Context, jobID string) (*FactCheckRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byJob[jobID]; ok {
		out := *s.records[id]
		return &out, nil
	}
	return nil, nil
}

func (s *MemStore) ExistsForArticle(_ context.Context, articleID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byArticle[articleID]
	return ok, nil
}
