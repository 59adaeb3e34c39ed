package httpapi

import (
	"context"
	"net/http"

	"barsandbios/internal/app/reviews"
	"barsandbios/internal/auth"
	"barsandbios/internal/store"
)

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	f, req, err := listParams(r, store.ReviewSpec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.reviews.List(r.Context(), f, req, identity(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writePage(w, page)
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.reviews.Get(r.Context(), id, identity(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, view)
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var in reviews.Input
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.reviews.Create(r.Context(), identity(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, view)
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var patch reviews.Patch
	if err := decode(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.reviews.Update(r.Context(), identity(r), id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, view)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.reviews.Delete(r.Context(), identity(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "Review deleted successfully")
}

func (s *Server) handlePurgeReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.reviews.Purge(r.Context(), identity(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "Review permanently deleted")
}

func (s *Server) handleLikeReview(w http.ResponseWriter, r *http.Request) {
	s.react(w, r, s.reviews.ToggleLike)
}

func (s *Server) handleDislikeReview(w http.ResponseWriter, r *http.Request) {
	s.react(w, r, s.reviews.ToggleDislike)
}

func (s *Server) react(w http.ResponseWriter, r *http.Request, toggle func(ctx context.Context, caller auth.Identity, id int64) (reviews.View, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := toggle(r.Context(), identity(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, view)
}
