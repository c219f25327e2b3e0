package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"venue-tagger/internal/services/geocode"
	"venue-tagger/internal/services/tagging"
	"venue-tagger/internal/services/wedding"
)

const (
	formField = "pdf"
	// multipartOverhead covers boundaries and part headers around the file.
	multipartOverhead = 64 << 10
)

type Tagger interface {
	Tag(ctx context.Context, doc tagging.Document) ([]string, error)
}

type Planner interface {
	Plan(ctx context.Context, req wedding.PlanRequest) (*wedding.WeddingPlan, error)
	Refresh(ctx context.Context, req wedding.SectionRefreshRequest) (*wedding.RefreshResult, error)
}

type LocationSearcher interface {
	Search(ctx context.Context, query string) ([]geocode.Location, error)
}

// TagHandler handles PDF tag extraction requests
type TagHandler struct {
	tagger        Tagger
	maxUploadSize int64
}

func NewTagHandler(tagger Tagger, maxUploadSize int64) *TagHandler {
	return &TagHandler{tagger: tagger, maxUploadSize: maxUploadSize}
}

func (h *TagHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/tag", h.Tag)
}

// tagResponse keeps the comma-separated tags string clients split on, plus
// the parsed list.
type tagResponse struct {
	Tags string   `json:"tags"`
	List []string `json:"list"`
}

// Tag accepts a multipart upload with the document in the "pdf" field.
func (h *TagHandler) Tag(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	}

	doc, err := readUpload(r)
	if err != nil {
		fail(w, r, "tag", err, tagging.MapHTTPStatus(err), tagging.Message(err))
		return
	}

	tags, err := h.tagger.Tag(r.Context(), doc)
	if err != nil {
		fail(w, r, "tag", err, tagging.MapHTTPStatus(err), tagging.Message(err))
		return
	}
	writeJSON(w, http.StatusOK, tagResponse{Tags: strings.Join(tags, ", "), List: tags})
}

func readUpload(r *http.Request) (tagging.Document, error) {
	file, header, err := r.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return tagging.Document{}, tagging.ErrFileTooLarge
		}
		// Covers http.ErrMissingFile, a non-multipart body and a malformed form.
		return tagging.Document{}, tagging.ErrMissingFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return tagging.Document{}, tagging.ErrFileTooLarge
		}
		return tagging.Document{}, err
	}

	return tagging.Document{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// WeddingHandler handles plan generation and section refresh
type WeddingHandler struct {
	planner Planner
}

func NewWeddingHandler(planner Planner) *WeddingHandler {
	return &WeddingHandler{planner: planner}
}

func (h *WeddingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/wedding", h.Plan)
	r.Post("/api/wedding/refresh", h.Refresh)
}

func (h *WeddingHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req wedding.PlanRequest
	if err := decodeBody(r, &req); err != nil {
		fail(w, r, "wedding_plan", err, http.StatusBadRequest, "Invalid request body")
		return
	}

	plan, err := h.planner.Plan(r.Context(), req)
	if err != nil {
		fail(w, r, "wedding_plan", err, wedding.MapHTTPStatus(err), wedding.PlanMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *WeddingHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req wedding.SectionRefreshRequest
	if err := decodeBody(r, &req); err != nil {
		fail(w, r, "wedding_refresh", err, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.planner.Refresh(r.Context(), req)
	if err != nil {
		fail(w, r, "wedding_refresh", err, wedding.MapHTTPStatus(err), wedding.RefreshMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// LocationHandler serves location autocomplete suggestions
type LocationHandler struct {
	searcher LocationSearcher
}

func NewLocationHandler(searcher LocationSearcher) *LocationHandler {
	return &LocationHandler{searcher: searcher}
}

func (h *LocationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/locations", h.Search)
}

func (h *LocationHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	locations, err := h.searcher.Search(r.Context(), query)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, geocode.ErrUpstream) {
			status = http.StatusBadGateway
		}
		fail(w, r, "location_search", err, status, "Failed to search locations")
		return
	}
	writeJSON(w, http.StatusOK, locations)
}

// decodeBody reads a JSON request body. An empty body decodes as {}.
func decodeBody(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
