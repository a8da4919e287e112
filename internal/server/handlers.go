package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/securo-skn/crimefeed/pkg/feed"
	"github.com/securo-skn/crimefeed/pkg/storage"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

func (s *Server) handleIncidents(w http.ResponseWriter, r *http.Request) {
	req, err := feed.ParseRequest(r.URL.Query())
	if err != nil {
		if errors.Is(err, feed.ErrInvalidParameter) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.Feed.Query(r.Context(), req))
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Feed.Sources())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Feed.Refresh(r.Context()))
}

type archiveResponse struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Records []storage.Record `json:"records"`
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	if s.Archive == nil {
		writeError(w, http.StatusNotFound, "incident archive is not configured")
		return
	}

	q := r.URL.Query()
	opts := storage.ListOptions{
		Source:   q.Get("source"),
		Category: q.Get("category"),
		Severity: q.Get("severity"),
		Zone:     q.Get("zone"),
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		opts.Limit = n
	}
	if raw := q.Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be an RFC3339 timestamp")
			return
		}
		opts.Since = t
	}

	recs, err := s.Archive.ListIncidents(r.Context(), opts)
	if err != nil {
		s.Log.Errorf("Archive query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read incident archive")
		return
	}
	writeJSON(w, http.StatusOK, archiveResponse{Success: true, Count: len(recs), Records: recs})
}
