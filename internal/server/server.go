// Package server exposes a small HTTP proxy in front of the catalog
// service, so browser clients can query it without CORS or rate-limit
// headaches. It keeps no state.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// fields mirrors the catalog client's field list so proxied responses carry
// exactly what the front end consumes.
const fields = "code,product_name,brands,images,nutrition_grades,categories_tags,ingredients_text,nutriments"

// staticCategories is the curated category list served by the proxy.
var staticCategories = []string{
	"beverages", "dairy", "snacks", "chocolate", "cereals",
	"bread", "fruits", "vegetables", "meat", "fish",
	"cookies", "yogurts", "ice-cream", "pasta", "cheese",
	"cakes", "soups", "coffee", "tea", "candies",
}

// Config configures the proxy.
type Config struct {
	UpstreamURL string
	UserAgent   string
	Timeout     time.Duration
}

// Server proxies catalog requests to the upstream service.
type Server struct {
	upstreamURL string
	userAgent   string
	httpClient  *http.Client
	logger      *zap.Logger
}

// New creates a proxy server.
func New(cfg Config, logger *zap.Logger) *Server {
	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = "https://world.openfoodfacts.org"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "FoodExplorer/1.0 (food-explorer@example.com)"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		upstreamURL: cfg.UpstreamURL,
		userAgent:   cfg.UserAgent,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/food/search", s.handleSearch)
	mux.HandleFunc("GET /api/food/product/{barcode}", s.handleProduct)
	mux.HandleFunc("GET /api/food/categories", s.handleCategories)
	return mux
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	in := r.URL.Query()

	q := url.Values{}
	q.Set("action", "process")
	q.Set("json", "1")
	q.Set("page", defaulted(in.Get("page"), "1"))
	q.Set("page_size", defaulted(in.Get("page_size"), "24"))
	q.Set("fields", fields)
	if term := in.Get("search_terms"); term != "" {
		q.Set("search_terms", term)
		q.Set("search_simple", "1")
	}
	if tag := in.Get("categories_tags"); tag != "" {
		q.Set("tagtype_0", "categories")
		q.Set("tag_contains_0", "contains")
		q.Set("tag_0", tag)
	}

	s.forward(w, r, s.upstreamURL+"/cgi/search.pl?"+q.Encode(), "Failed to fetch products")
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	barcode := r.PathValue("barcode")
	u := fmt.Sprintf("%s/api/v0/product/%s.json", s.upstreamURL, url.PathEscape(barcode))
	s.forward(w, r, u, "Failed to fetch product")
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": staticCategories})
}

// forward performs the upstream GET and relays the JSON body verbatim.
func (s *Server) forward(w http.ResponseWriter, r *http.Request, upstream, failMsg string) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, upstream, nil)
	if err != nil {
		s.fail(w, failMsg, err)
		return
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.fail(w, failMsg, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.fail(w, failMsg, fmt.Errorf("upstream status %d", resp.StatusCode))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.logger.Warn("response relay interrupted", zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	s.logger.Error("proxy request failed", zap.String("reason", msg), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   msg,
		"message": err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func defaulted(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
