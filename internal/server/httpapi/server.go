// Package httpapi exposes the content pipeline over a JSON REST API. All
// endpoints under /api are protected by a Bearer token issued for the org
// this instance serves.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/postline/postline/internal/logging"
	"github.com/postline/postline/internal/pipeline"
	"github.com/postline/postline/internal/platform"
	"github.com/postline/postline/internal/publish"
	"github.com/postline/postline/internal/server/models"
	"github.com/postline/postline/internal/server/repositories/accounts"
	"github.com/postline/postline/internal/server/services"
)

// Publisher is the slice of the publish orchestrator the API needs.
type Publisher interface {
	Publish(ctx context.Context, postID string) (*publish.Outcome, error)
}

// MediaStore hands out presigned upload and download URLs. Nil disables the
// media endpoints.
type MediaStore interface {
	PresignedPutURL(ctx context.Context, orgID string) (string, string, error)
	PresignedGetURL(ctx context.Context, key string) (string, error)
}

type Server struct {
	postService *services.PostService
	machine     *pipeline.Machine
	publisher   Publisher
	accounts    accounts.Repository
	media       MediaStore
	log         logging.Logger
	secretKey   []byte
	orgID       string
}

func NewServer(
	postService *services.PostService,
	machine *pipeline.Machine,
	publisher Publisher,
	accountsRepo accounts.Repository,
	media MediaStore,
	log logging.Logger,
	secretKey []byte,
	orgID string,
) *Server {
	return &Server{
		postService: postService,
		machine:     machine,
		publisher:   publisher,
		accounts:    accountsRepo,
		media:       media,
		log:         log,
		secretKey:   secretKey,
		orgID:       orgID,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/posts", s.requireAuth(s.handleCreatePost))
	mux.HandleFunc("GET /api/posts", s.requireAuth(s.handleListPosts))
	mux.HandleFunc("GET /api/posts/{id}", s.requireAuth(s.handleGetPost))
	mux.HandleFunc("PUT /api/posts/{id}/content", s.requireAuth(s.handleUpdateContent))
	mux.HandleFunc("POST /api/posts/{id}/approve-idea", s.requireAuth(s.handleApproveIdea))
	mux.HandleFunc("POST /api/posts/{id}/approve", s.requireAuth(s.handleApprove))
	mux.HandleFunc("POST /api/posts/{id}/approve-photos", s.requireAuth(s.handleApprovePhotos))
	mux.HandleFunc("POST /api/posts/{id}/start-generation", s.requireAuth(s.handleStartGeneration))
	mux.HandleFunc("POST /api/posts/{id}/attach-media", s.requireAuth(s.handleAttachMedia))
	mux.HandleFunc("POST /api/posts/{id}/reject", s.requireAuth(s.handleReject))
	mux.HandleFunc("POST /api/posts/{id}/schedule", s.requireAuth(s.handleSchedule))
	mux.HandleFunc("POST /api/posts/{id}/publish", s.requireAuth(s.handlePublish))
	mux.HandleFunc("POST /api/posts/bulk-move", s.requireAuth(s.handleBulkMove))
	mux.HandleFunc("POST /api/posts/check-duplicate", s.requireAuth(s.handleCheckDuplicate))

	mux.HandleFunc("GET /api/accounts", s.requireAuth(s.handleListAccounts))
	mux.HandleFunc("PUT /api/accounts/{platform}", s.requireAuth(s.handleUpsertAccount))

	mux.HandleFunc("POST /api/media/upload-url", s.requireAuth(s.handleMediaUploadURL))

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createPostRequest struct {
	Text         string     `json:"text"`
	Platforms    []string   `json:"platforms"`
	MediaURLs    []string   `json:"mediaUrls"`
	ScheduledFor *time.Time `json:"scheduledFor"`
}

func parsePlatforms(names []string) ([]platform.Platform, bool) {
	out := make([]platform.Platform, 0, len(names))
	for _, name := range names {
		p, err := platform.Parse(name)
		if err != nil {
			return nil, false
		}
		out = append(out, p)
	}
	return out, true
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if !decodeBody(w, r, &req) {
		return
	}
	platforms, ok := parsePlatforms(req.Platforms)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown platform"})
		return
	}

	p, dup, err := s.postService.Create(r.Context(), services.CreatePostParams{
		OrgID:     s.orgID,
		Text:      req.Text,
		Platforms: platforms,
		MediaURLs: req.MediaURLs,
		Schedule:  req.ScheduledFor,
	})
	if err != nil {
		if dup.IsDuplicate {
			writeJSON(w, http.StatusConflict, dup)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	window := 30 * 24 * time.Hour
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid window"})
			return
		}
		window = d
	}
	list, err := s.postService.ListRecent(r.Context(), s.orgID, window)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.postService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type updateContentRequest struct {
	ExpectedVersion int64    `json:"expectedVersion"`
	Text            string   `json:"text"`
	Platforms       []string `json:"platforms"`
	MediaURLs       []string `json:"mediaUrls"`
}

func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	var req updateContentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	platforms, ok := parsePlatforms(req.Platforms)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown platform"})
		return
	}
	p, err := s.postService.UpdateContent(r.Context(), r.PathValue("id"),
		req.ExpectedVersion, req.Text, platforms, req.MediaURLs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleApproveIdea(w http.ResponseWriter, r *http.Request) {
	s.respondTransition(w, func() (*models.Post, error) {
		return s.machine.ApproveIdea(r.Context(), r.PathValue("id"))
	})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.respondTransition(w, func() (*models.Post, error) {
		return s.machine.Approve(r.Context(), r.PathValue("id"))
	})
}

func (s *Server) handleApprovePhotos(w http.ResponseWriter, r *http.Request) {
	s.respondTransition(w, func() (*models.Post, error) {
		return s.machine.ApprovePhotos(r.Context(), r.PathValue("id"))
	})
}

func (s *Server) handleStartGeneration(w http.ResponseWriter, r *http.Request) {
	s.respondTransition(w, func() (*models.Post, error) {
		return s.machine.StartGeneration(r.Context(), r.PathValue("id"))
	})
}

func (s *Server) handleAttachMedia(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MediaURLs []string `json:"mediaUrls"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.respondTransition(w, func() (*models.Post, error) {
		return s.machine.AttachGeneratedMedia(r.Context(), r.PathValue("id"), req.MediaURLs)
	})
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.respondTransition(w, func() (*models.Post, error) {
		return s.machine.Reject(r.Context(), r.PathValue("id"), req.Reason)
	})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		At time.Time `json:"at"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.respondTransition(w, func() (*models.Post, error) {
		return s.machine.Schedule(r.Context(), r.PathValue("id"), req.At)
	})
}

func (s *Server) respondTransition(w http.ResponseWriter, op func() (*models.Post, error)) {
	p, err := op()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	out, err := s.publisher.Publish(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type bulkMoveRequest struct {
	PostIDs []string `json:"postIds"`
	To      string   `json:"to"`
}

type bulkMoveResult struct {
	PostID string `json:"postId"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleBulkMove(w http.ResponseWriter, r *http.Request) {
	var req bulkMoveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	results := s.machine.BulkMove(r.Context(), req.PostIDs, models.Status(req.To))
	out := make([]bulkMoveResult, 0, len(results))
	for _, res := range results {
		item := bulkMoveResult{PostID: res.PostID, OK: res.Err == nil}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		out = append(out, item)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCheckDuplicate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text      string   `json:"text"`
		Platforms []string `json:"platforms"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	platforms, ok := parsePlatforms(req.Platforms)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown platform"})
		return
	}
	dup := s.postService.CheckDuplicate(r.Context(), s.orgID, req.Text, platforms)
	writeJSON(w, http.StatusOK, dup)
}

type accountView struct {
	Platform  string    `json:"platform"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := s.accounts.ListByOrg(r.Context(), s.orgID)
	if err != nil {
		writeError(w, err)
		return
	}
	// Credentials never leave the server.
	out := make([]accountView, 0, len(list))
	for _, a := range list {
		out = append(out, accountView{
			Platform:  string(a.Platform),
			Enabled:   a.Enabled,
			UpdatedAt: a.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpsertAccount(w http.ResponseWriter, r *http.Request) {
	p, err := platform.Parse(r.PathValue("platform"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown platform"})
		return
	}
	var req struct {
		Credentials map[string]any `json:"credentials"`
		Enabled     bool           `json:"enabled"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	raw, err := json.Marshal(req.Credentials)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid credentials"})
		return
	}
	// Round-trip through the typed decoder so malformed blobs are rejected
	// at setup time, not at publish time.
	if _, err := platform.DecodeCredentials(p, raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	a := &models.PlatformAccount{
		ID:          uuid.NewString(),
		OrgID:       s.orgID,
		Platform:    p,
		Credentials: raw,
		Enabled:     req.Enabled,
		CreatedAt:   time.Now(),
	}
	if err := s.accounts.Upsert(r.Context(), a); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountView{
		Platform:  string(a.Platform),
		Enabled:   a.Enabled,
		UpdatedAt: a.UpdatedAt,
	})
}

func (s *Server) handleMediaUploadURL(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "media storage not configured"})
		return
	}
	key, url, err := s.media.PresignedPutURL(r.Context(), s.orgID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "uploadUrl": url})
}
