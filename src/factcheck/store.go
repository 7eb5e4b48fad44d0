package factcheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrNotFound indicates no record exists for the given key.
	ErrNotFound = errors.New("factcheck: record not found")
	// ErrDuplicateArticle indicates the article already has a record.
	ErrDuplicateArticle = errors.New("factcheck: article already has a record")
	// ErrDuplicateJob indicates the job id is already taken.
	ErrDuplicateJob = errors.New("factcheck: job id already recorded")
	// ErrAlreadyTerminal indicates a terminal update hit a record that
	// had already left PENDING. Late writers lose.
	ErrAlreadyTerminal = errors.New("factcheck: record already terminal")
)

// TerminalUpdate is the field set written exactly once when a job
// terminates. Every transition out of PENDING goes through it.
type TerminalUpdate struct {
	Verdict          string
	CredibilityScore int
	Confidence       *float64
	Summary          string
	Counts           ClaimCounts
	RawResult        *string
	NumSources       int
	SourceConsensus  string
	ValidationMode   string

	ProcessingTimeSeconds float64
	APICost               float64
	FactCheckedAt         time.Time
}

// Store is the persistence contract for fact-check records. It is the
// sole enforcer of the two uniqueness invariants (one record per
// article, one per job id); a violating Create fails atomically and
// leaves the store unchanged. Update is compare-and-swap on the
// PENDING state so a late poller can never overwrite a terminal
// record. Lookups return (nil, nil) when no record exists.
type Store interface {
	Create(ctx context.Context, rec *FactCheckRecord) error
	Update(ctx context.Context, id uint64, upd TerminalUpdate) (*FactCheckRecord, error)
	GetByArticleID(ctx context.Context, articleID uint64) (*FactCheckRecord, error)
	GetByJobID(ctx context.Context, jobID string) (*FactCheckRecord, error)
	ExistsForArticle(ctx context.Context, articleID uint64) (bool, error)
}

// GormStore backs the Store contract with MySQL through gorm. The
// unique indexes on article_id and job_id are the real guarantee; the
// pre-checks inside the transaction exist to surface the right
// sentinel error.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, rec *FactCheckRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&FactCheckRecord{}).Where("article_id = ?", rec.ArticleID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateArticle
		}
		if err := tx.Model(&FactCheckRecord{}).Where("job_id = ?", rec.JobID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateJob
		}
		return tx.Create(rec).Error
	})
}

func (s *GormStore) Update(ctx context.Context, id uint64, upd TerminalUpdate) (*FactCheckRecord, error) {
	fields := map[string]any{
		"verdict":                 upd.Verdict,
		"credibility_score":       upd.CredibilityScore,
		"confidence":              upd.Confidence,
		"summary":                 upd.Summary,
		"claims_analyzed":         upd.Counts.Analyzed,
		"claims_validated":        upd.Counts.Validated,
		"true_claims":             upd.Counts.True,
		"false_claims":            upd.Counts.False,
		"misleading_claims":       upd.Counts.Misleading,
		"unverified_claims":       upd.Counts.Unverified,
		"raw_result":              upd.RawResult,
		"num_sources":             upd.NumSources,
		"source_consensus":        upd.SourceConsensus,
		"validation_mode":         upd.ValidationMode,
		"processing_time_seconds": upd.ProcessingTimeSeconds,
		"api_cost":                upd.APICost,
		"fact_checked_at":         upd.FactCheckedAt,
	}

	res := s.db.WithContext(ctx).Model(&FactCheckRecord{}).
		Where("id = ? AND verdict = ?", id, VerdictPending).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var rec FactCheckRecord
		err := s.db.WithContext(ctx).First(&rec, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w (id %d)", ErrNotFound, id)
		}
		if err != nil {
			return nil, err
		}
		return &rec, ErrAlreadyTerminal
	}

	var rec FactCheckRecord
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormStore) GetByArticleID(ctx context.Context, articleID uint64) (*FactCheckRecord, error) {
	return s.getOne(ctx, "article_id = ?", articleID)
}

func (s *GormStore) GetByJobID(ctx context.Context, jobID string) (*FactCheckRecord, error) {
	return s.getOne(ctx, "job_id = ?", jobID)
}

func (s *GormStore) getOne(ctx context.Context, query string, arg any) (*FactCheckRecord, error) {
	var rec FactCheckRecord
	err := s.db.WithContext(ctx).First(&rec, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormStore) ExistsForArticle(ctx context.Context, articleID uint64) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&FactCheckRecord{}).Where("article_id = ?", articleID).Count(&n).Error
	return n > 0, err
}
