package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"posts-api/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-shiori/go-readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockScraper struct {
	MockTitle   string
	MockContent string
	ShouldFail  bool
}

// Scrape simulates article scraping
func (m *MockScraper) Scrape(url string, timeout time.Duration) (*readability.Article, error) {
	if m.ShouldFail {
		return nil, fmt.Errorf("simulated 404 error")
	}
	return &readability.Article{
		Title:   m.MockTitle,
		Content: m.MockContent,
		Excerpt: "A short summary",
	}, nil
}

func newTestStore(t *testing.T) *store.HybridStore {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	st, err := store.NewHybridStore(mr.Addr(), t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return st
}

// TestWorker_ImportsQueuedURL checks that a queued URL becomes a post with
// a derived slug.
func TestWorker_ImportsQueuedURL(t *testing.T) {
	st := newTestStore(t)

	w := NewWorker(st, st, zap.NewNop())
	w.scraper = &MockScraper{
		MockTitle:   "Mocked Title",
		MockContent: "<p>This is fake content</p>",
	}

	require.NoError(t, st.Enqueue(context.Background(), "http://fake-url.com"))

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)

	// Give it time to process exactly one job
	time.Sleep(100 * time.Millisecond)
	cancel()

	posts, err := st.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)

	assert.Equal(t, "Mocked Title", posts[0].Title)
	assert.Equal(t, "mocked-title", posts[0].Slug)
	assert.Equal(t, "<p>This is fake content</p>", posts[0].Fields["content"])
	assert.Equal(t, "http://fake-url.com", posts[0].Fields["source_url"])
}

// TestWorker_HandlesScrapeFailure checks that a failed scrape consumes
// the job without creating a post.
func TestWorker_HandlesScrapeFailure(t *testing.T) {
	st := newTestStore(t)

	w := NewWorker(st, st, zap.NewNop())
	w.scraper = &MockScraper{ShouldFail: true}

	require.NoError(t, st.Enqueue(context.Background(), "http://bad-url.com"))

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)
	time.Sleep(100 * time.Millisecond)
	cancel()

	queue, err := st.QueueLen(context.Background())
	require.NoError(t, err)
	assert.Zero(t, queue, "job is consumed even when it fails")

	posts, err := st.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}
