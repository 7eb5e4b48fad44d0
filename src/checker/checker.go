// The checker worker drives submitted fact-check jobs to termination.
// It consumes poll jobs from RabbitMQ, runs the orchestrator's poll
// loop for each (concurrently, one task per job), and announces
// terminal outcomes on the redis results stream. A periodic sweep
// re-enqueues PENDING records whose poll job got lost.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/veritynews/verity/src/checker/config"
	"github.com/veritynews/verity/src/data"
	"github.com/veritynews/verity/src/factcheck"
	"github.com/veritynews/verity/src/news"
	"github.com/veritynews/verity/src/queue"
)

func main() {
	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)
	rdb := data.MustRedis(cfg.RedisURL)

	q, err := queue.Connect(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("queue: %v", err)
	}
	defer q.Close()

	client := factcheck.NewHTTPClient(cfg.FactCheckURL, cfg.FactCheckKey)
	store := factcheck.NewGormStore(db)
	orch := factcheck.NewOrchestrator(client, store, news.NewDirectory(db), factcheck.Config{
		MaxAttempts:  cfg.MaxAttempts,
		PollInterval: time.Duration(cfg.PollInterval) * time.Second,
	}, log.New(log.Writer(), "checker ", log.LstdFlags))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sweepPending(ctx, db, q, time.Duration(cfg.SweepMinutes)*time.Minute)

	go func() {
		err := q.ConsumePoll(func(job queue.PollJob) error {
			return handlePoll(ctx, orch, store, rdb, job)
		})
		if err != nil {
			log.Fatalf("consume: %v", err)
		}
	}()

	log.Printf("Verity checker consuming poll jobs")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()
}

func handlePoll(ctx context.Context, orch *factcheck.Orchestrator, store factcheck.Store, rdb *redis.Client, job queue.PollJob) error {
	rec, err := orch.Poll(ctx, job.JobID, 0, 0)
	switch {
	case err == nil:
		announce(ctx, rdb, rec)
		return nil
	case errors.Is(err, factcheck.ErrJobFailed), errors.Is(err, factcheck.ErrTimeout):
		// Terminal failure states are persisted; nothing to retry.
		log.Printf("checker: job %s terminal: %v", job.JobID, err)
		if rec, gerr := store.GetByJobID(ctx, job.JobID); gerr == nil && rec != nil {
			announce(ctx, rdb, rec)
		}
		return nil
	default:
		// Transport error or missing record: let the queue redeliver.
		return err
	}
}

func announce(ctx context.Context, rdb *redis.Client, rec *factcheck.FactCheckRecord) {
	err := data.PublishFactCheckEvent(ctx, rdb, map[string]interface{}{
		"articleID": rec.ArticleID,
		"jobID":     rec.JobID,
		"verdict":   rec.Verdict,
		"score":     rec.CredibilityScore,
	})
	if err != nil {
		log.Printf("checker: publish result for job %s: %v", rec.JobID, err)
	}
}

// sweepPending re-enqueues records stuck in PENDING, covering lost
// queue deliveries and checker restarts mid-poll.
func sweepPending(ctx context.Context, db *gorm.DB, q *queue.Queue, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var stale []factcheck.FactCheckRecord
		cutoff := time.Now().Add(-every)
		err := db.WithContext(ctx).
			Where("verdict = ? AND updated_at < ?", factcheck.VerdictPending, cutoff).
			Limit(100).Find(&stale).Error
		if err != nil {
			log.Printf("checker: sweep query: %v", err)
			continue
		}
		for _, rec := range stale {
			if err := q.PublishPoll(ctx, queue.PollJob{JobID: rec.JobID, ArticleID: rec.ArticleID}); err != nil {
				log.Printf("checker: re-enqueue job %s: %v", rec.JobID, err)
			}
		}
		if len(stale) > 0 {
			log.Printf("checker: re-enqueued %d stale pending jobs", len(stale))
		}
	}
}
