package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/veritynews/verity/src/api/config"
	"github.com/veritynews/verity/src/api/webserver"
	"github.com/veritynews/verity/src/data"
	"github.com/veritynews/verity/src/factcheck"
	"github.com/veritynews/verity/src/news"
	"github.com/veritynews/verity/src/queue"
)

var allModels = []interface{}{
	&news.User{}, &news.Feed{}, &news.Article{},
	&news.Vote{}, &news.Comment{}, &news.Bookmark{},
	&factcheck.FactCheckRecord{},
}

func migrate(db *gorm.DB) {
	if err := db.AutoMigrate(allModels...); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

func main() {
	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)
	migrate(db)

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
	}, log.New(log.Writer(), "factcheck ", log.LstdFlags))

	router := webserver.New(cfg, db, rdb, orch, q)
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("Verity API listening on :%s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
