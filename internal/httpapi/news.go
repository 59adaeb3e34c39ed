package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"barsandbios/internal/app/news"
	"barsandbios/internal/store"
)

func (s *Server) handleListNews(w http.ResponseWriter, r *http.Request) {
	f, req, err := listParams(r, store.NewsSpec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.news.List(r.Context(), f, req, identity(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writePage(w, page)
}

func (s *Server) handleGetNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	article, err := s.news.Get(r.Context(), id, identity(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, article)
}

func (s *Server) handleGetNewsBySlug(w http.ResponseWriter, r *http.Request) {
	article, err := s.news.GetBySlug(r.Context(), mux.Vars(r)["slug"], identity(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, article)
}

func (s *Server) handleCreateNews(w http.ResponseWriter, r *http.Request) {
	var in news.Input
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	article, err := s.news.Create(r.Context(), identity(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, article)
}

func (s *Server) handleUpdateNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in news.Input
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	article, err := s.news.Update(r.Context(), identity(r), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, article)
}

func (s *Server) handleDeleteNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.news.Delete(r.Context(), identity(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "News article deleted successfully")
}
