package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"posts-api/internal/errs"
	"posts-api/internal/model"
	"posts-api/internal/slug"
	"posts-api/internal/store"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const msgPostNotFound = "Post Not Found"

// requestContext is the per-request state passed down the pipeline.
type requestContext struct {
	// Post is set by resolvePost.
	Post *model.Post
	// Body is set by parseBody.
	Body map[string]any
}

type pipelineFunc func(w http.ResponseWriter, r *http.Request, rc *requestContext) error

type stage func(next pipelineFunc) pipelineFunc

// handle runs stages in order before h. Any error or panic on the way is
// handed to respondError, which writes the only error body. Once a handler
// has started its response, failures are logged and the response is left
// as is.
func (s *Server) handle(h pipelineFunc, stages ...stage) http.HandlerFunc {
	for i := len(stages) - 1; i >= 0; i-- {
		h = stages[i](h)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		cw := &commitWriter{ResponseWriter: w}

		fail := func(err error) {
			if cw.committed {
				s.logger.Error("Failure after response was written",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Error(err))
				return
			}
			s.respondError(w, r, err)
		}

		defer func() {
			if rec := recover(); rec != nil {
				fail(fmt.Errorf("panic: %v", rec))
			}
		}()

		if err := h(cw, r, &requestContext{}); err != nil {
			fail(err)
		}
	}
}

// commitWriter records whether the response has been started.
type commitWriter struct {
	http.ResponseWriter
	committed bool
}

func (cw *commitWriter) WriteHeader(status int) {
	cw.committed = true
	cw.ResponseWriter.WriteHeader(status)
}

func (cw *commitWriter) Write(b []byte) (int, error) {
	cw.committed = true
	return cw.ResponseWriter.Write(b)
}

// parseBody decodes a JSON object body. An empty body decodes to {}.
func (s *Server) parseBody(next pipelineFunc) pipelineFunc {
	return func(w http.ResponseWriter, r *http.Request, rc *requestContext) error {
		rc.Body = map[string]any{}
		if r.Body == nil {
			return next(w, r, rc)
		}

		data, err := io.ReadAll(r.Body)
		if err != nil {
			return errs.NewBadRequestError(err.Error())
		}
		if len(bytes.TrimSpace(data)) > 0 {
			if err := json.Unmarshal(data, &rc.Body); err != nil {
				return errs.NewBadRequestError(err.Error())
			}
			if rc.Body == nil {
				// literal null
				rc.Body = map[string]any{}
			}
		}

		return next(w, r, rc)
	}
}

// deriveSlug overwrites any client supplied slug with one derived from
// the title. Only creation runs this stage.
func (s *Server) deriveSlug(next pipelineFunc) pipelineFunc {
	return func(w http.ResponseWriter, r *http.Request, rc *requestContext) error {
		rc.Body[model.KeySlug] = slug.FromBody(rc.Body)
		return next(w, r, rc)
	}
}

// resolvePost loads the post named by {postId}. Lookups that find nothing
// stop the pipeline with a 404; other store failures propagate as-is.
func (s *Server) resolvePost(next pipelineFunc) pipelineFunc {
	return func(w http.ResponseWriter, r *http.Request, rc *requestContext) error {
		post, err := s.store.FindByID(r.Context(), mux.Vars(r)["postId"])
		switch {
		case errors.Is(err, store.ErrNotFound), err == nil && post == nil:
			return errs.NewNotFoundError(msgPostNotFound)
		case err != nil:
			return err
		}

		rc.Post = post
		return next(w, r, rc)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("API",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("latency", time.Since(start)),
		)
	})
}
