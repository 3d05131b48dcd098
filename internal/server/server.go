// Package server exposes the document-to-game pipeline over HTTP: upload a
// document, pick a game type, and fetch the generated game for preview or
// download. Generated games are held in memory for the server's lifetime.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gamedoc/internal/docload"
	"github.com/hyperifyio/gamedoc/internal/gametype"
	"github.com/hyperifyio/gamedoc/internal/summarize"
	"github.com/hyperifyio/gamedoc/internal/workflow"
)

// GameRunner runs the pipeline for one uploaded document.
// *workflow.Controller satisfies it.
type GameRunner interface {
	Run(ctx context.Context, docPath string, gt gametype.Type) (workflow.Outcome, error)
}

const (
	defaultMaxUploadBytes = 32 << 20
	defaultRunTimeout     = 5 * time.Minute
)

type Server struct {
	flow GameRunner
	// MaxUploadBytes caps the request body; zero means 32 MiB.
	MaxUploadBytes int64
	// RunTimeout bounds one generation run; zero means 5 minutes.
	RunTimeout time.Duration

	store *gameStore
}

func New(flow GameRunner) (*Server, error) {
	if flow == nil {
		return nil, errors.New("game runner required")
	}
	return &Server{flow: flow, store: newStore()}, nil
}

// gameStore keeps finished games keyed by ID. Access is serialized; runs are
// long but the store operations are tiny.
type gameStore struct {
	mu    sync.Mutex
	games map[string]*gameRecord
}

type gameRecord struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	GameType  string    `json:"game_type"`
	Title     string    `json:"title"`
	Approved  bool      `json:"approved"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`

	HTML string `json:"-"`
}

func newStore() *gameStore {
	return &gameStore{games: make(map[string]*gameRecord)}
}

func (s *gameStore) set(id string, rec *gameRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[id] = rec
}

func (s *gameStore) get(id string) (*gameRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.games[id]
	return rec, ok
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/games", s.handleGameCreate)
	mux.HandleFunc("/api/games/", s.handleGameByID)
	mux.HandleFunc("/games/", s.handleGamePage)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/", s.handleIndex)
	return logMiddleware(mux)
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("addr", addr).Msg("serving")
	return srv.ListenAndServe()
}

// --- Handlers ---

type gameCreatedResp struct {
	gameRecord
	PreviewURL  string `json:"preview_url"`
	DownloadURL string `json:"download_url"`
}

func (s *Server) handleGameCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	maxBytes := s.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	gt, err := gametype.Parse(r.FormValue("game_type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	tempPath, err := saveUpload(file, header.Filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer os.Remove(tempPath)

	timeout := s.RunTimeout
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	outcome, err := s.flow.Run(ctx, tempPath, gt)
	if err != nil {
		http.Error(w, err.Error(), statusForRunError(err))
		return
	}

	rec := &gameRecord{
		ID:        uuid.NewString(),
		FileName:  filepath.Base(header.Filename),
		GameType:  string(gt),
		Approved:  outcome.Approved,
		Attempts:  outcome.Attempts,
		CreatedAt: time.Now().UTC(),
		HTML:      outcome.HTML,
	}
	if outcome.Spec != nil {
		rec.Title = outcome.Spec.Title
	}
	s.store.set(rec.ID, rec)
	log.Info().Str("id", rec.ID).Str("game_type", rec.GameType).
		Str("file", rec.FileName).Bool("approved", rec.Approved).
		Msg("game stored")

	writeJSON(w, gameCreatedResp{
		gameRecord:  *rec,
		PreviewURL:  "/games/" + rec.ID,
		DownloadURL: "/games/" + rec.ID + "/download",
	})
}

func (s *Server) handleGameByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/games/")
	rec, ok := s.store.get(id)
	if !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	writeJSON(w, gameCreatedResp{
		gameRecord:  *rec,
		PreviewURL:  "/games/" + rec.ID,
		DownloadURL: "/games/" + rec.ID + "/download",
	})
}

// handleGamePage serves /games/{id} as an inline preview and
// /games/{id}/download as an attachment.
func (s *Server) handleGamePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/games/")
	id, download := rest, false
	if cut, ok := strings.CutSuffix(rest, "/download"); ok {
		id, download = cut, true
	}
	rec, ok := s.store.get(id)
	if !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	if download {
		name := downloadName(rec)
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, rec.HTML)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, indexHTML)
}

// --- Helpers ---

// saveUpload copies the upload to a temp file, keeping the original extension
// so the document loader can dispatch on it.
func saveUpload(file io.Reader, name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	f, err := os.CreateTemp("", "gamedoc-upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, file); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("save upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// statusForRunError separates caller mistakes (bad documents) from pipeline
// failures so clients can tell which side to fix.
func statusForRunError(err error) int {
	switch {
	case errors.Is(err, docload.ErrUnsupportedFormat),
		errors.Is(err, docload.ErrNoText),
		errors.Is(err, summarize.ErrEmptySummary):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func downloadName(rec *gameRecord) string {
	stem := strings.TrimSuffix(rec.FileName, filepath.Ext(rec.FileName))
	stem = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, stem)
	if stem == "" {
		stem = "document"
	}
	return "game_" + rec.GameType + "_" + stem + ".html"
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().Str("method", r.Method).Str("path", r.URL.Path).
			Int("status", rec.status).Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
