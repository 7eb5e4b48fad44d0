// The ingest service pulls articles from the configured RSS feeds on
// a fixed interval and upserts them into the articles table. Summaries
// are stripped to plain text before storage.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veritynews/verity/src/data"
	"github.com/veritynews/verity/src/ingest/config"
	"github.com/veritynews/verity/src/news"
	"github.com/veritynews/verity/src/webclient"
)

func main() {
	cfg := config.Load()
	db := data.MustMySQL(cfg.MySQLDSN)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go run(ctx, db, time.Duration(cfg.FetchInterval)*time.Minute)

	log.Printf("Verity ingest fetching every %dm", cfg.FetchInterval)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()
}

const (
	fetchAttempts   = 3
	fetchRetryDelay = 2 * time.Second
)

func run(ctx context.Context, db *gorm.DB, interval time.Duration) {
	parser := gofeed.NewParser()
	client := webclient.NewDefault(30 * time.Second)
	stripper := bluemonday.StrictPolicy()

	fetchAll(ctx, db, client, parser, stripper)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fetchAll(ctx, db, client, parser, stripper)
		}
	}
}

func fetchAll(ctx context.Context, db *gorm.DB, client *http.Client, parser *gofeed.Parser, stripper *bluemonday.Policy) {
	var feeds []news.Feed
	if err := db.WithContext(ctx).Where("active = ?", true).Find(&feeds).Error; err != nil {
		log.Printf("ingest: load feeds: %v", err)
		return
	}

	for _, feed := range feeds {
		n, err := fetchFeed(ctx, db, client, parser, stripper, feed)
		if err != nil {
			log.Printf("ingest: %s: %v", feed.Name, err)
			continue
		}
		now := time.Now().UTC()
		db.Model(&news.Feed{}).Where("id = ?", feed.ID).Update("last_fetched_at", now)
		if n > 0 {
			log.Printf("ingest: %s: %d new articles", feed.Name, n)
		}
	}
}

// fetchBody downloads a feed with retries on transient failures. Feed
// hosts throttle aggregators often enough that a single GET is not
// reliable.
func fetchBody(ctx context.Context, client *http.Client, url string, attempts int, delay time.Duration) (string, error) {
	_, body, err := webclient.DoWithRetry(ctx, attempts, delay, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return 0, nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, b, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return resp.StatusCode, b, nil
	})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func fetchFeed(ctx context.Context, db *gorm.DB, client *http.Client, parser *gofeed.Parser, stripper *bluemonday.Policy, feed news.Feed) (int, error) {
	body, err := fetchBody(ctx, client, feed.URL, fetchAttempts, fetchRetryDelay)
	if err != nil {
		return 0, err
	}
	parsed, err := parser.ParseString(body)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, item := range parsed.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}
		published := time.Now().UTC()
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		}
		author := ""
		if len(item.Authors) > 0 {
			author = item.Authors[0].Name
		}

		art := news.Article{
			FeedID:      &feed.ID,
			Title:       strings.TrimSpace(stripper.Sanitize(item.Title)),
			URL:         item.Link,
			Author:      author,
			Summary:     strings.TrimSpace(stripper.Sanitize(item.Description)),
			PublishedAt: published,
		}
		res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&art)
		if res.Error != nil {
			log.Printf("ingest: upsert %s: %v", item.Link, res.Error)
			continue
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}
