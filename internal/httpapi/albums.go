package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"barsandbios/internal/app/albums"
	"barsandbios/internal/apperr"
	"barsandbios/internal/store"
)

// albumRequest is the wire shape of albums.Input. releaseDate may be a plain
// date or a full RFC 3339 timestamp.
type albumRequest struct {
	Title         string        `json:"title"`
	ArtistID      int64         `json:"artistId"`
	Type          string        `json:"type"`
	ReleaseDate   string        `json:"releaseDate"`
	Genres        []string      `json:"genres"`
	CoverArt      string        `json:"coverArt"`
	Description   string        `json:"description"`
	Tracklist     []store.Track `json:"tracklist"`
	TotalDuration string        `json:"totalDuration"`
	Label         string        `json:"label"`
	Producers     []string      `json:"producers"`
	Featured      bool          `json:"featured"`
	Verified      bool          `json:"verified"`
}

func (a albumRequest) input() (albums.Input, error) {
	in := albums.Input{
		Title:         a.Title,
		ArtistID:      a.ArtistID,
		Type:          a.Type,
		Genres:        a.Genres,
		CoverArt:      a.CoverArt,
		Description:   a.Description,
		Tracklist:     a.Tracklist,
		TotalDuration: a.TotalDuration,
		Label:         a.Label,
		Producers:     a.Producers,
		Featured:      a.Featured,
		Verified:      a.Verified,
	}
	raw := strings.TrimSpace(a.ReleaseDate)
	if raw == "" {
		return in, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			in.ReleaseDate = t.UTC()
			return in, nil
		}
	}
	return albums.Input{}, apperr.Invalid("releaseDate must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
}

func (s *Server) decodeAlbum(w http.ResponseWriter, r *http.Request) (albums.Input, error) {
	var req albumRequest
	if err := decode(w, r, &req); err != nil {
		return albums.Input{}, err
	}
	return req.input()
}

func (s *Server) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	f, req, err := listParams(r, store.AlbumSpec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.albums.List(r.Context(), f, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writePage(w, page)
}

func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	album, err := s.albums.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, album)
}

func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	in, err := s.decodeAlbum(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	album, err := s.albums.Create(r.Context(), identity(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, album)
}

func (s *Server) handleUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := s.decodeAlbum(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	album, err := s.albums.Update(r.Context(), identity(r), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, album)
}

func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.albums.Delete(r.Context(), identity(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "Album deleted successfully")
}

func (s *Server) handleAlbumReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.albums.Get(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, req, err := listParams(r, store.ReviewSpec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.reviews.List(r.Context(), f.Where(store.ReviewAlbumField, id), req, identity(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writePage(w, page)
}

func (s *Server) handleSearchTrack(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		s.writeError(w, r, apperr.Invalid("query parameter is required"))
		return
	}
	track, err := s.tracks.SearchTrack(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, track)
}

func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request) {
	track, err := s.tracks.GetTrack(r.Context(), mux.Vars(r)["trackId"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, track)
}
