package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/psulibraries/rmdlink/pkg/errors"
	"github.com/psulibraries/rmdlink/pkg/rmd"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// lookupParams validates the username path parameter and collects ?tag=
// values as call-scoped cache tags.
func lookupParams(w http.ResponseWriter, r *http.Request) (string, []rmd.FetchOption, bool) {
	username := chi.URLParam(r, "username")
	if err := errors.ValidateUsername(username); err != nil {
		writeErr(w, err)
		return "", nil, false
	}
	var opts []rmd.FetchOption
	if tags := r.URL.Query()["tag"]; len(tags) > 0 {
		opts = append(opts, rmd.WithCacheTags(tags...))
	}
	return username, opts, true
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	username, opts, ok := lookupParams(w, r)
	if !ok {
		return
	}
	rec := s.fetcher.FetchProfile(r.Context(), username, opts...)
	if rec.Empty() {
		writeError(w, http.StatusNotFound, codeNotFound, "no profile data for "+username)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type attributeResponse struct {
	Username  string `json:"username"`
	Attribute string `json:"attribute"`
	Value     any    `json:"value"`
}

func (s *Server) attribute(w http.ResponseWriter, r *http.Request) {
	username, opts, ok := lookupParams(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "attribute")
	value, ok := s.fetcher.FetchAttribute(r.Context(), username, name, opts...)
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "no "+name+" for "+username)
		return
	}
	writeJSON(w, http.StatusOK, attributeResponse{Username: username, Attribute: name, Value: value})
}

type publicationsResponse struct {
	Username string                   `json:"username"`
	Sections []rmd.PublicationSection `json:"sections"`
}

func (s *Server) publications(w http.ResponseWriter, r *http.Request) {
	username, opts, ok := lookupParams(w, r)
	if !ok {
		return
	}
	pubs := s.fetcher.FetchPublications(r.Context(), username, opts...)
	if pubs == nil {
		pubs = rmd.Publications{}
	}
	writeJSON(w, http.StatusOK, publicationsResponse{Username: username, Sections: pubs})
}

type invalidateRequest struct {
	Tags     []string `json:"tags"`
	Username string   `json:"username"`
	All      bool     `json:"all"`
}

type invalidateResponse struct {
	Invalidated int `json:"invalidated"`
}

func (s *Server) invalidate(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidInput, "invalid request body: "+err.Error())
		return
	}

	ctx := r.Context()
	var (
		n   int
		err error
	)
	switch {
	case req.All:
		n, err = s.fetcher.InvalidateAll(ctx)
	case req.Username != "":
		n, err = s.fetcher.InvalidateUser(ctx, req.Username)
	case len(req.Tags) > 0:
		n, err = s.fetcher.InvalidateTags(ctx, req.Tags...)
	default:
		writeError(w, http.StatusBadRequest, codeInvalidInput, "one of tags, username or all is required")
		return
	}
	if err != nil {
		s.logger.Error("cache invalidation failed", "id", RequestID(ctx), "err", err)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invalidateResponse{Invalidated: n})
}
