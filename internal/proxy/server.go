// Package proxy implements the relay daemon: a small HTTP service that
// forwards provider API calls and streams media bytes on behalf of
// clients that cannot reach the origins directly.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/clipsave/clipsave"
)

// apiTable maps each platform to the third-party API the resolve
// endpoint forwards to.
var apiTable = map[clipsave.Platform]string{
	clipsave.PlatformTikTok:    "https://www.tikwm.com/api/?url=%s",
	clipsave.PlatformYouTube:   "https://api.youtubedownloader.com/video?url=%s",
	clipsave.PlatformInstagram: "https://api.instagramdownloader.net/download?url=%s",
}

type Config struct {
	Client *http.Client
	// RequestTimeout bounds each upstream call.
	RequestTimeout time.Duration
}

type Server struct {
	config Config
	log    *zap.SugaredLogger
}

func NewServer(config Config) *Server {
	if config.Client == nil {
		config.Client = http.DefaultClient
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 30 * time.Second
	}
	return &Server{
		config: config,
		log:    zap.S().Named("proxy"),
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(allowAnyOrigin)
	r.Post("/api/resolve", s.handleResolve)
	r.Post("/api/download", s.handleDownloadInfo)
	r.Get("/api/fetch", s.handleFetch)
	r.Get("/health", s.handleHealth)
	return r
}

type resolveRequest struct {
	URL      string `json:"url"`
	Platform string `json:"platform"`
}

// handleResolve forwards the source URL to the platform's third-party
// API and relays the JSON response untouched.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	platform := clipsave.Platform(req.Platform)
	if platform == "" {
		platform = clipsave.Classify(req.URL).Platform
	}
	endpoint, ok := apiTable[platform]
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported platform")
		return
	}
	apiURL := fmt.Sprintf(endpoint, url.QueryEscape(req.URL))
	upstream, err := s.get(r, apiURL)
	if err != nil {
		s.log.Warnw("upstream call failed", "platform", platform, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	defer upstream.Body.Close()
	if upstream.StatusCode < 200 || upstream.StatusCode >= 300 {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("API responded with status: %d", upstream.StatusCode))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.Copy(w, upstream.Body)
}

type downloadInfoRequest struct {
	URL     string `json:"url"`
	Quality string `json:"quality"`
}

type downloadInfoResponse struct {
	Success     bool   `json:"success"`
	Title       string `json:"title"`
	DownloadURL string `json:"download_url"`
	Quality     string `json:"quality"`
	Platform    string `json:"platform"`
	NoWatermark bool   `json:"no_watermark"`
}

// handleDownloadInfo implements the download-info provider shape: given
// a URL and quality, it answers with a descriptor-like JSON object. The
// download link is served back through this daemon's fetch relay.
func (s *Server) handleDownloadInfo(w http.ResponseWriter, r *http.Request) {
	var req downloadInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}
	if req.Quality == "" {
		req.Quality = "720"
	}
	c := clipsave.Classify(req.URL)
	if c.Platform == clipsave.PlatformUnknown {
		writeError(w, http.StatusBadRequest, "unsupported platform")
		return
	}
	resp := downloadInfoResponse{
		Success:     true,
		Title:       clipsave.PlaceholderTitle(c.Platform),
		DownloadURL: "/api/fetch?url=" + url.QueryEscape(req.URL),
		Quality:     req.Quality,
		Platform:    string(c.Platform),
		NoWatermark: true,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// handleFetch streams the named media URL back to the caller, so clients
// blocked by the origin can still retrieve bytes.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	mediaURL := r.URL.Query().Get("url")
	if mediaURL == "" {
		writeError(w, http.StatusBadRequest, "url parameter is required")
		return
	}
	parsed, err := url.Parse(mediaURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		writeError(w, http.StatusBadRequest, "invalid url parameter")
		return
	}
	upstream, err := s.get(r, mediaURL)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	defer upstream.Body.Close()
	if upstream.StatusCode < 200 || upstream.StatusCode >= 300 {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("upstream responded with status: %d", upstream.StatusCode))
		return
	}
	if ct := upstream.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	filename := clipsave.FilenameFromURL(mediaURL)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if upstream.ContentLength > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", upstream.ContentLength))
	}
	if _, err := io.Copy(w, upstream.Body); err != nil {
		s.log.Debugw("fetch relay interrupted", "url", mediaURL, "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) get(r *http.Request, target string) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	resp, err := s.config.Client.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelReadCloser ties the upstream request's timeout cancel func to
// the response body so the context lives until the body is drained.
type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// allowAnyOrigin replicates the permissive CORS headers of the endpoints
// this daemon replaces.
func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
