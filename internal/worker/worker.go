package worker

import (
	"context"
	"time"

	"posts-api/internal/model"
	"posts-api/internal/slug"
	"posts-api/internal/store"

	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"
)

// Scraper fetches a page and extracts its readable article.
type Scraper interface {
	Scrape(url string, timeout time.Duration) (*readability.Article, error)
}

// DefaultScraper fetches pages over HTTP with go-readability.
type DefaultScraper struct{}

func (s *DefaultScraper) Scrape(url string, timeout time.Duration) (*readability.Article, error) {
	art, err := readability.FromURL(url, timeout)
	return &art, err
}

// Worker turns queued URLs into posts.
type Worker struct {
	posts   store.Store
	queue   store.ImportQueue
	logger  *zap.Logger
	scraper Scraper
}

// NewWorker imports URLs popped off queue into posts, using DefaultScraper.
func NewWorker(posts store.Store, queue store.ImportQueue, logger *zap.Logger) *Worker {
	return &Worker{
		posts:   posts,
		queue:   queue,
		logger:  logger,
		scraper: &DefaultScraper{},
	}
}

// Start imports queued URLs until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Import worker started. Waiting for jobs...")

	for {
		url, err := w.queue.PopQueue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("Import worker shutting down")
				return
			}
			w.logger.Error("Queue error", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		w.processJob(ctx, url)
	}
}

func (w *Worker) processJob(ctx context.Context, url string) {
	logger := w.logger.With(zap.String("url", url))
	logger.Info("Import started")

	article, err := w.scraper.Scrape(url, 30*time.Second)
	if err != nil {
		logger.Error("Scraping failed", zap.Error(err))
		return
	}

	post := model.NewPost(map[string]any{
		model.KeyTitle: article.Title,
		model.KeySlug:  slug.Derive(article.Title),
		"content":      article.Content,
		"excerpt":      article.Excerpt,
		"source_url":   url,
	})

	created, err := w.posts.Create(ctx, &post)
	if err != nil {
		logger.Error("Failed to save imported post", zap.Error(err))
		return
	}

	logger.Info("Import complete",
		zap.String("id", created.ID.String()),
		zap.String("slug", created.Slug))
}
