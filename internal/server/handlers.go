package server

import (
	"net/http"

	"posts-api/internal/model"
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, _ *requestContext) error {
	posts, err := s.store.FindAll(r.Context())
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []model.Post{}
	}

	s.writeJSON(w, http.StatusOK, posts)
	return nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, rc *requestContext) error {
	post := model.NewPost(rc.Body)
	created, err := s.store.Create(r.Context(), &post)
	if err != nil {
		return err
	}

	s.writeJSON(w, http.StatusCreated, created)
	return nil
}

// handleUpdate writes the body over the resolved post. The slug is stored
// as sent; it is never re-derived from a new title.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, rc *requestContext) error {
	if err := s.store.UpdateByID(r.Context(), rc.Post.ID, rc.Body); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, rc *requestContext) error {
	if err := s.store.DeleteByID(r.Context(), rc.Post.ID); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
