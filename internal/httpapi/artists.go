package httpapi

import (
	"net/http"

	"barsandbios/internal/app/artists"
	"barsandbios/internal/store"
)

func (s *Server) handleListArtists(w http.ResponseWriter, r *http.Request) {
	f, req, err := listParams(r, store.ArtistSpec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.artists.List(r.Context(), f, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writePage(w, page)
}

func (s *Server) handleGetArtist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artist, err := s.artists.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, artist)
}

func (s *Server) handleCreateArtist(w http.ResponseWriter, r *http.Request) {
	var in artists.Input
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	artist, err := s.artists.Create(r.Context(), identity(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, artist)
}

func (s *Server) handleUpdateArtist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in artists.Input
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	artist, err := s.artists.Update(r.Context(), identity(r), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, artist)
}

func (s *Server) handleDeleteArtist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.artists.Delete(r.Context(), identity(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "Artist deleted successfully")
}
