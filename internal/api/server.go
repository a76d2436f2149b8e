package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/syllabus-engine/backend/internal/course"
	"github.com/syllabus-engine/backend/internal/metrics"
	"github.com/syllabus-engine/backend/internal/search"
	"github.com/syllabus-engine/backend/internal/textnorm"
	"github.com/syllabus-engine/backend/internal/tokenizer"
)

type Server struct {
	Catalog     *Catalog
	Tokenizer   tokenizer.Tokenizer
	Logger      *logrus.Entry
	Router      *http.ServeMux
	SearchLimit int
}

func NewServer(catalog *Catalog, tok tokenizer.Tokenizer, logger *logrus.Entry, searchLimit int) *Server {
	s := &Server{
		Catalog:     catalog,
		Tokenizer:   tok,
		Logger:      logger,
		Router:      http.NewServeMux(),
		SearchLimit: searchLimit,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.handle("GET /api/v1/courses/{id}", s.handleCourse)
	s.handle("GET /api/v1/courses/{id}/recommendations", s.handleRecommendations)
	s.handle("GET /api/v1/search", s.handleSearch)
	s.handle("GET /api/v1/status", s.handleStatus)
	s.Router.Handle("GET /metrics", promhttp.Handler())
}

// handle registers h with request metrics labelled by pattern.
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.Router.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		metrics.RecordAPIRequest(pattern, rec.status, time.Since(start))
	})
}

func (s *Server) Start(addr string) error {
	s.Logger.Infof("Starting API Server on %s", addr)
	return http.ListenAndServe(addr, s.Router)
}

// Responses
type ErrorResponse struct {
	Error string `json:"error"`
}

type CourseResponse struct {
	ID       string          `json:"id"`
	Metadata course.Metadata `json:"metadata"`
	Skills   []string        `json:"skills"`
	Indexed  bool            `json:"indexed"`
}

type NeighborView struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type RecommendationsResponse struct {
	ID              string         `json:"id"`
	Recommendations []NeighborView `json:"recommendations"`
}

type SearchResponse struct {
	Query   string             `json:"query"`
	Results []SearchResultView `json:"results"`
}

type SearchResultView struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Score  float64  `json:"score"`
	Skills []string `json:"skills"`
}

type StatusResponse struct {
	Courses        int    `json:"courses"`
	Described      int    `json:"described"`
	VocabularySize int    `json:"vocabulary_size"`
	LoadedAt       string `json:"loaded_at"`
	Uptime         string `json:"uptime"`
}

// Handlers

func (s *Server) handleCourse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	meta, described := s.Catalog.Metadata[id]
	doc, indexed := s.Catalog.Index.Lookup(id)
	if !described && !indexed {
		jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: "course not found"})
		return
	}

	resp := CourseResponse{ID: id, Metadata: meta, Skills: []string{}, Indexed: indexed}
	if indexed && doc.Skills != nil {
		resp.Skills = doc.Skills
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	neighbors, ok := s.Catalog.Recommendations[id]
	if !ok {
		jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: "course not found"})
		return
	}

	resp := RecommendationsResponse{ID: id, Recommendations: make([]NeighborView, len(neighbors))}
	for i, n := range neighbors {
		resp.Recommendations[i] = NeighborView{
			ID:    n.ID,
			Name:  s.Catalog.Metadata[n.ID].Name,
			Score: n.Score,
		}
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query 'q' is required"})
		return
	}

	limit := s.SearchLimit
	if k := r.URL.Query().Get("k"); k != "" {
		n, err := strconv.Atoi(k)
		if err != nil || n <= 0 {
			jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "'k' must be a positive integer"})
			return
		}
		limit = min(n, s.SearchLimit)
	}

	tokens, err := s.Tokenizer.Tokenize(r.Context(), textnorm.Normalize(query))
	if err != nil {
		s.Logger.WithError(err).Warn("Query tokenization failed")
		jsonResponse(w, http.StatusBadGateway, ErrorResponse{Error: "tokenizer unavailable"})
		return
	}

	hits, err := s.Catalog.Index.Search(search.Analyze(tokens), limit)
	if err != nil {
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	response := SearchResponse{
		Query:   query,
		Results: make([]SearchResultView, len(hits)),
	}
	for i, hit := range hits {
		skills := hit.Document.Skills
		if skills == nil {
			skills = []string{}
		}
		response.Results[i] = SearchResultView{
			ID:     hit.Document.ID,
			Name:   hit.Document.Title,
			Score:  hit.Score,
			Skills: skills,
		}
	}

	jsonResponse(w, http.StatusOK, response)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	c := s.Catalog
	jsonResponse(w, http.StatusOK, StatusResponse{
		Courses:        c.Index.Size(),
		Described:      len(c.Metadata),
		VocabularySize: c.Index.VocabularySize(),
		LoadedAt:       c.LoadedAt.UTC().Format(time.RFC3339),
		Uptime:         time.Since(c.LoadedAt).Round(time.Second).String(),
	})
}

func jsonResponse(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
