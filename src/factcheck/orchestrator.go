package factcheck

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

var (
	// ErrArticleNotFound indicates the article to check does not exist.
	ErrArticleNotFound = errors.New("factcheck: article not found")
	// ErrAlreadyChecked indicates the article already has a record; a
	// second submission would double-spend at the external service.
	ErrAlreadyChecked = errors.New("factcheck: article already checked")
	// ErrSubmissionFailed wraps a transport failure during Submit. No
	// record is created.
	ErrSubmissionFailed = errors.New("factcheck: submission failed")
	// ErrTimeout indicates Poll exhausted its attempts. The record is
	// left in the TIMEOUT state.
	ErrTimeout = errors.New("factcheck: polling timed out")
	// ErrJobFailed indicates the service reported the job failed. The
	// record is left in the ERROR state.
	ErrJobFailed = errors.New("factcheck: job failed")
)

// ArticleDirectory is the narrow article collaborator: an existence /
// URL lookup before submission, and the denormalized credibility
// write-back after scoring.
type ArticleDirectory interface {
	GetArticle(ctx context.Context, articleID uint64) (url string, ok bool, err error)
	SetCredibility(ctx context.Context, articleID uint64, score int, verdict string) error
}

// Poll policy defaults: 120 x 3s comfortably exceeds the slowest
// validation mode, which runs several minutes.
const (
	DefaultMaxAttempts  = 120
	DefaultPollInterval = 3 * time.Second
)

// Config tunes the poll loop. Zero values take the defaults above.
type Config struct {
	MaxAttempts  int
	PollInterval time.Duration
}

// Orchestrator drives a fact-check job from submission to its terminal
// record: PENDING -> {verdict, ERROR, TIMEOUT, CANCELLED}, exactly one
// transition per job. All collaborators are injected; the orchestrator
// holds no state of its own beyond configuration.
type Orchestrator struct {
	client   Client
	store    Store
	articles ArticleDirectory
	cfg      Config
	log      *log.Logger
}

func NewOrchestrator(client Client, store Store, articles ArticleDirectory, cfg Config, logger *log.Logger) *Orchestrator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{client: client, store: store, articles: articles, cfg: cfg, log: logger}
}

// Submit registers a new fact-check job for the article and creates
// its PENDING record. Polling is not started here; the caller decides
// when and whether to await completion (see Poll).
func (o *Orchestrator) Submit(ctx context.Context, articleID uint64, mode string) (*FactCheckRecord, error) {
	url, ok, err := o.articles.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w (article %d)", ErrArticleNotFound, articleID)
	}

	exists, err := o.store.ExistsForArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w (article %d)", ErrAlreadyChecked, articleID)
	}

	jobID, err := o.client.Submit(ctx, url, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	rec := &FactCheckRecord{
		ArticleID:        articleID,
		JobID:            jobID,
		Verdict:          VerdictPending,
		CredibilityScore: ScoreUnset,
		Summary:          "Fact check in progress",
		ValidationMode:   mode,
		FactCheckedAt:    time.Now().UTC(),
	}
	if err := o.store.Create(ctx, rec); err != nil {
		// The external job is already running; stop it rather than
		// leak spend against a record we could not create.
		if cerr := o.client.Cancel(ctx, jobID); cerr != nil {
			o.log.Printf("factcheck: cancel orphaned job %s: %v", jobID, cerr)
		}
		// Another submitter won the race between the existence check
		// and the insert; report it the same way as the pre-check.
		if errors.Is(err, ErrDuplicateArticle) {
			return nil, fmt.Errorf("%w (article %d)", ErrAlreadyChecked, articleID)
		}
		return nil, err
	}
	return rec, nil
}

// Poll drives the status loop for one job until it terminates, the
// attempt budget runs out, or a transport error aborts it. Zero
// maxAttempts / interval take the configured defaults. A transport
// error leaves the record untouched, so Poll may be retried on the
// same job id without resubmitting.
func (o *Orchestrator) Poll(ctx context.Context, jobID string, maxAttempts int, interval time.Duration) (*FactCheckRecord, error) {
	if maxAttempts <= 0 {
		maxAttempts = o.cfg.MaxAttempts
	}
	if interval <= 0 {
		interval = o.cfg.PollInterval
	}

	rec, err := o.store.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w (job %s)", ErrNotFound, jobID)
	}
	if rec.Terminal() {
		return rec, nil
	}

	start := time.Now()
	for attempt := 0; attempt < maxAttempts; attempt++ {
		st, err := o.client.Status(ctx, jobID)
		if err != nil {
			return nil, err
		}

		switch st.State {
		case StatusFinished:
			return o.finish(ctx, rec, jobID)

		case StatusFailed:
			summary := "Fact check failed"
			if st.Message != "" {
				summary = "Fact check failed: " + st.Message
			}
			if _, uerr := o.store.Update(ctx, rec.ID, TerminalUpdate{
				Verdict:          VerdictError,
				CredibilityScore: ScoreUnset,
				Summary:          summary,
				FactCheckedAt:    time.Now().UTC(),
			}); uerr != nil && !errors.Is(uerr, ErrAlreadyTerminal) {
				return nil, uerr
			}
			return nil, fmt.Errorf("%w (job %s): %s", ErrJobFailed, jobID, st.Message)
		}

		// queued or started: wait out the interval and try again.
		if err := sleep(ctx, interval); err != nil {
			return nil, err
		}
	}

	elapsed := time.Since(start).Round(time.Second)
	if _, uerr := o.store.Update(ctx, rec.ID, TerminalUpdate{
		Verdict:          VerdictTimeout,
		CredibilityScore: ScoreUnset,
		Summary:          fmt.Sprintf("Fact check timed out after %d attempts (%s)", maxAttempts, elapsed),
		FactCheckedAt:    time.Now().UTC(),
	}); uerr != nil && !errors.Is(uerr, ErrAlreadyTerminal) {
		return nil, uerr
	}
	return nil, fmt.Errorf("%w (job %s, %d attempts over %s)", ErrTimeout, jobID, maxAttempts, elapsed)
}

func (o *Orchestrator) finish(ctx context.Context, rec *FactCheckRecord, jobID string) (*FactCheckRecord, error) {
	raw, err := o.client.Result(ctx, jobID)
	if err != nil {
		return nil, err
	}

	input, meta := ParseResult(raw)
	outcome := Compute(input)

	checkedAt := meta.CompletedAt
	if checkedAt.IsZero() {
		checkedAt = time.Now().UTC()
	}
	mode := meta.ValidationMode
	if mode == "" {
		mode = rec.ValidationMode
	}
	var confidence *float64
	if len(input) > 0 {
		confidence = &outcome.Confidence
	}
	rawStr := string(raw)

	updated, err := o.store.Update(ctx, rec.ID, TerminalUpdate{
		Verdict:               outcome.Verdict,
		CredibilityScore:      outcome.Score,
		Confidence:            confidence,
		Summary:               summarize(outcome),
		Counts:                outcome.Counts,
		RawResult:             &rawStr,
		NumSources:            meta.NumSources,
		SourceConsensus:       outcome.SourceConsensus,
		ValidationMode:        mode,
		ProcessingTimeSeconds: meta.ProcessingTimeSeconds,
		APICost:               meta.APICost,
		FactCheckedAt:         checkedAt,
	})
	if errors.Is(err, ErrAlreadyTerminal) {
		// Lost the race against a cancel or a concurrent poller; the
		// existing terminal record stands.
		o.log.Printf("factcheck: job %s finished after record went terminal (%s)", jobID, updated.Verdict)
		return updated, nil
	}
	if err != nil {
		return nil, err
	}

	// Denormalized write-back onto the article is best-effort: the
	// record is the source of truth.
	if err := o.articles.SetCredibility(ctx, rec.ArticleID, outcome.Score, outcome.Verdict); err != nil {
		o.log.Printf("factcheck: article %d credibility write-back: %v", rec.ArticleID, err)
	}
	return updated, nil
}

// Cancel asks the service to stop the job and marks the record
// CANCELLED. Best-effort: the record is marked even when the service
// call fails or in-flight work cannot actually be stopped.
func (o *Orchestrator) Cancel(ctx context.Context, jobID string) (*FactCheckRecord, error) {
	rec, err := o.store.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w (job %s)", ErrNotFound, jobID)
	}

	if err := o.client.Cancel(ctx, jobID); err != nil {
		o.log.Printf("factcheck: cancel job %s at service: %v", jobID, err)
	}

	updated, err := o.store.Update(ctx, rec.ID, TerminalUpdate{
		Verdict:          VerdictCancelled,
		CredibilityScore: ScoreUnset,
		Summary:          "Fact check cancelled",
		FactCheckedAt:    time.Now().UTC(),
	})
	if err != nil {
		return updated, err
	}
	return updated, nil
}

// GetByArticle is a read-through to the store; no state transition.
func (o *Orchestrator) GetByArticle(ctx context.Context, articleID uint64) (*FactCheckRecord, error) {
	return o.store.GetByArticleID(ctx, articleID)
}

func summarize(out Outcome) string {
	if out.Counts.Analyzed == 0 {
		return "No verifiable claims found"
	}
	return fmt.Sprintf("Analyzed %d claims: %d true, %d false, %d misleading, %d unverified",
		out.Counts.Analyzed, out.Counts.True, out.Counts.False, out.Counts.Misleading, out.Counts.Unverified)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
