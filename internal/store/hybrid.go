package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"posts-api/internal/model"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	indexKey = "posts:index"
	queueKey = "queue:import"
)

var errNoBadger = errors.New("badgerdb is not initialized")

// HybridStore keeps post documents in Badger and the creation-ordered
// index plus the import queue in Redis.
type HybridStore struct {
	rdb    *redis.Client
	db     *badger.DB
	logger *zap.Logger
}

// NewHybridStore connects to Redis and opens the post documents in Badger.
// Pass badgerPath="" for a queue-only store, as used by `postsd import`.
func NewHybridStore(redisAddr string, badgerPath string, logger *zap.Logger) (*HybridStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	var db *badger.DB
	var err error

	if badgerPath != "" {
		opts := badger.DefaultOptions(badgerPath)
		opts.Logger = nil // Silence default logger
		db, err = badger.Open(opts)
		if err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to open badger: %w", err)
		}
	}

	return &HybridStore{rdb: rdb, db: db, logger: logger}, nil
}

// Close releases the Redis client and the Badger files.
func (s *HybridStore) Close() {
	if s.rdb != nil {
		s.rdb.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

func docKey(id uuid.UUID) []byte {
	return []byte("post:" + id.String())
}

// FindAll returns every post in creation order. It never returns a nil slice.
func (s *HybridStore) FindAll(ctx context.Context) ([]model.Post, error) {
	if s.db == nil {
		return nil, errNoBadger
	}

	ids, err := s.rdb.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	posts := make([]model.Post, 0, len(ids))
	err = s.db.View(func(txn *badger.Txn) error {
		for _, idStr := range ids {
			id, err := uuid.Parse(idStr)
			if err != nil {
				continue
			}
			post, err := getPost(txn, id)
			if errors.Is(err, ErrNotFound) {
				// Index entry outlived its document.
				continue
			}
			if err != nil {
				return err
			}
			posts = append(posts, *post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return posts, nil
}

// FindByID loads a single post. Ids that are not UUIDs fail with ErrInvalidID.
func (s *HybridStore) FindByID(ctx context.Context, id string) (*model.Post, error) {
	if s.db == nil {
		return nil, errNoBadger
	}

	postID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	var post *model.Post
	err = s.db.View(func(txn *badger.Txn) error {
		post, err = getPost(txn, postID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Create assigns an id and creation time, then persists the post.
func (s *HybridStore) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	if s.db == nil {
		return nil, errNoBadger
	}

	created := *post
	created.ID = uuid.New()
	created.CreatedAt = time.Now().UTC()

	if err := s.db.Update(func(txn *badger.Txn) error {
		return putPost(txn, &created)
	}); err != nil {
		return nil, err
	}

	err := s.rdb.ZAdd(ctx, indexKey, redis.Z{
		Score:  float64(created.CreatedAt.UnixMicro()),
		Member: created.ID.String(),
	}).Err()
	if err != nil {
		// Without an index entry the post would be invisible to FindAll.
		rollback := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(docKey(created.ID))
		})
		return nil, errors.Join(fmt.Errorf("index post %s: %w", created.ID, err), rollback)
	}

	return &created, nil
}

// UpdateByID merges fields onto the stored post.
func (s *HybridStore) UpdateByID(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if s.db == nil {
		return errNoBadger
	}

	return s.db.Update(func(txn *badger.Txn) error {
		post, err := getPost(txn, id)
		if err != nil {
			return err
		}
		post.Apply(fields)
		return putPost(txn, post)
	})
}

// DeleteByID removes the document and its index entry.
func (s *HybridStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if s.db == nil {
		return errNoBadger
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(docKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(docKey(id))
	})
	if err != nil {
		return err
	}

	return s.rdb.ZRem(ctx, indexKey, id.String()).Err()
}

// Enqueue pushes a URL onto the import queue.
func (s *HybridStore) Enqueue(ctx context.Context, url string) error {
	return s.rdb.LPush(ctx, queueKey, url).Err()
}

// PopQueue blocks until a URL is queued for import.
func (s *HybridStore) PopQueue(ctx context.Context) (string, error) {
	result, err := s.rdb.BRPop(ctx, 0, queueKey).Result()
	if err != nil {
		return "", err
	}
	return result[1], nil
}

// QueueLen reports how many URLs are waiting for import.
func (s *HybridStore) QueueLen(ctx context.Context) (int64, error) {
	return s.rdb.LLen(ctx, queueKey).Result()
}

// RunGC reclaims Badger value log space every interval until ctx is done.
func (s *HybridStore) RunGC(ctx context.Context, interval time.Duration) {
	if s.db == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.db.RunValueLogGC(0.7)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn("Value log GC failed", zap.Error(err))
			}
		}
	}
}

func getPost(txn *badger.Txn, id uuid.UUID) (*model.Post, error) {
	item, err := txn.Get(docKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	var post model.Post
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func putPost(txn *badger.Txn, post *model.Post) error {
	data, err := json.Marshal(post)
	if err != nil {
		return err
	}
	return txn.Set(docKey(post.ID), data)
}
