package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"posts-api/internal/errs"
	"posts-api/internal/store"

	"go.uber.org/zap"
)

// routeNotFound is the fallback body. The misspelled key is what existing
// clients read, so it stays.
type routeNotFound struct {
	Message string `json:"messgae"`
}

// respondError is the final error funnel for the pipeline.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		httpErr = classify(err)
	}

	logger := s.logger.With(
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", httpErr.Status),
		zap.Error(err),
	)
	if httpErr.Status >= http.StatusInternalServerError {
		logger.Error(httpErr.Message)
	} else {
		logger.Warn(httpErr.Message)
	}

	s.writeJSON(w, httpErr.Status, httpErr)
}

// classify maps errors that carry no status of their own.
func classify(err error) *errs.HTTPError {
	if errors.Is(err, store.ErrNotFound) {
		return errs.NewNotFoundError(msgPostNotFound)
	}
	return errs.NewInternalServerError(err.Error())
}

func (s *Server) pathNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusNotFound, routeNotFound{Message: "Path Not Found"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}
