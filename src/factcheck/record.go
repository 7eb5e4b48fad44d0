package factcheck

import "time"

// Verdict taxonomy. PENDING is the only non-terminal state; everything
// else is terminal.
const (
	VerdictPending        = "PENDING"
	VerdictTrue           = "TRUE"
	VerdictMostlyTrue     = "MOSTLY_TRUE"
	VerdictPartiallyTrue  = "PARTIALLY_TRUE"
	VerdictMixed          = "MIXED"
	VerdictMisleading     = "MISLEADING"
	VerdictFalse          = "FALSE"
	VerdictMisinformation = "MISINFORMATION"
	VerdictUnverified     = "UNVERIFIED"
	VerdictError          = "ERROR"
	VerdictTimeout        = "TIMEOUT"
	VerdictCancelled      = "CANCELLED"
)

// ScoreUnset marks a record whose credibility score has not been
// computed (still pending, or terminated without a result).
const ScoreUnset = -1

// FactCheckRecord is the durable outcome of one verification attempt
// for one article. One record per article, one per external job id.
type FactCheckRecord struct {
	ID        uint64 `gorm:"primaryKey"`
	ArticleID uint64 `gorm:"uniqueIndex;not null"`
	JobID     string `gorm:"size:64;uniqueIndex;not null"`

	Verdict          string   `gorm:"size:32;not null;default:PENDING"`
	CredibilityScore int      `gorm:"default:-1"`
	Confidence       *float64 // average claim confidence, absent until scored
	Summary          string   `gorm:"type:text;not null"`

	ClaimsAnalyzed   int `gorm:"default:0"`
	ClaimsValidated  int `gorm:"default:0"`
	TrueClaims       int `gorm:"default:0"`
	FalseClaims      int `gorm:"default:0"`
	MisleadingClaims int `gorm:"default:0"`
	UnverifiedClaims int `gorm:"default:0"`

	RawResult *string `gorm:"type:json"` // full service payload, kept for audit

	NumSources      int    `gorm:"default:0"`
	SourceConsensus string `gorm:"size:64"`

	ValidationMode        string  `gorm:"size:16"`
	ProcessingTimeSeconds float64 `gorm:"default:0"`
	APICost               float64 `gorm:"default:0"`

	FactCheckedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Terminal reports whether the record has left the PENDING state.
func (r *FactCheckRecord) Terminal() bool {
	return r.Verdict != VerdictPending
}
