package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"footagelens/internal/ai"
	"footagelens/internal/database"
	"footagelens/internal/models"
	"footagelens/internal/storage"
)

var allowedExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".webm": true,
}

// Describer produces an analysis for a staged video file.
type Describer interface {
	Describe(ctx context.Context, videoPath string) (*ai.Description, error)
}

// Responder answers a question grounded on an analysis and prior turns.
type Responder interface {
	Reply(ctx context.Context, analysis string, history []models.ConversationTurn, userInput string) (string, error)
}

// HistoryStore holds per-video analysis context and conversation turns.
type HistoryStore interface {
	SeedAnalysis(ctx context.Context, videoID, analysis string) error
	Analysis(ctx context.Context, videoID string) (string, bool, error)
	AppendTurn(ctx context.Context, videoID string, turn models.ConversationTurn) error
	Turns(ctx context.Context, videoID string, limit int) ([]models.ConversationTurn, error)
}

type App struct {
	Staging       storage.Staging
	FootageRepo   *database.FootageRepository
	History       HistoryStore
	Describer     Describer
	Responder     Responder
	MaxUploadSize int64
	HistoryLimit  int
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

// AnalyzeHandler accepts a multipart video upload, runs analysis, and
// returns the result with a fresh video id. The staged file is removed once
// analysis finishes, success or not.
func (app *App) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "File too large or malformed upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No selected file")
		return
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		writeError(w, http.StatusBadRequest, "File type not allowed")
		return
	}

	videoPath, err := app.Staging.Stage(file, header.Filename)
	if err != nil {
		slog.Error("failed to stage upload", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}
	defer func() {
		if err := app.Staging.Discard(videoPath); err != nil {
			slog.Warn("failed to discard staged video", "path", videoPath, "error", err)
		}
	}()

	description, err := app.Describer.Describe(r.Context(), videoPath)
	if err != nil {
		slog.Error("video analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	name := description.Name
	if name == "" {
		name = r.FormValue("name")
	}
	label := description.Label
	if label == "" {
		label = r.FormValue("label")
	}

	videoID := uuid.New().String()
	if err := app.History.SeedAnalysis(r.Context(), videoID, description.Analysis); err != nil {
		slog.Error("failed to seed conversation context", "video_id", videoID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store analysis")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"video_id": videoID,
		"result":   description.Analysis,
		"name":     name,
		"label":    label,
	})
}

// FootagesHandler lists every footage owned by the given email.
func (app *App) FootagesHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Missing email")
		return
	}

	footages, err := app.FootageRepo.ListFootagesByEmail(r.Context(), req.Email)
	if err != nil {
		slog.Error("failed to list footages", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load footages")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"footages": footages})
}

// AddFootageHandler persists a newly analyzed footage for an email.
func (app *App) AddFootageHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Label    string `json:"label"`
		Analysis string `json:"analysis"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusUnprocessableEntity, "email is required")
		return
	}
	if req.Analysis == "" {
		writeError(w, http.StatusUnprocessableEntity, "analysis is required")
		return
	}

	footage := models.NewFootage(req.Email, req.Name, req.Label, req.Analysis)
	if err := app.FootageRepo.InsertFootage(r.Context(), footage); err != nil {
		slog.Error("failed to insert footage", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save footage")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "id": footage.ID})
}

// ConversationHandler answers a question scoped to a video id. Fresh
// analyses are answered from the history store; persisted footages are
// seeded into it on first contact. Unknown ids get a 404.
func (app *App) ConversationHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VideoID   string `json:"video_id"`
		UserInput string `json:"user_input"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.VideoID == "" || req.UserInput == "" {
		writeError(w, http.StatusBadRequest, "Missing video_id or user_input")
		return
	}

	ctx := r.Context()

	analysis, found, err := app.History.Analysis(ctx, req.VideoID)
	if err != nil {
		slog.Error("failed to load conversation context", "video_id", req.VideoID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load conversation context")
		return
	}
	if !found {
		footage, err := app.FootageRepo.GetFootageByID(ctx, req.VideoID)
		if err != nil {
			writeError(w, http.StatusNotFound, "Unknown video id")
			return
		}
		analysis = footage.Analysis
		if err := app.History.SeedAnalysis(ctx, req.VideoID, analysis); err != nil {
			slog.Warn("failed to seed conversation context", "video_id", req.VideoID, "error", err)
		}
	}

	history, err := app.History.Turns(ctx, req.VideoID, app.HistoryLimit)
	if err != nil {
		slog.Warn("failed to load conversation history", "video_id", req.VideoID, "error", err)
		history = nil
	}

	answer, err := app.Responder.Reply(ctx, analysis, history, req.UserInput)
	if err != nil {
		slog.Error("conversation reply failed", "video_id", req.VideoID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	for _, turn := range []models.ConversationTurn{
		{Role: models.RoleUser, Content: req.UserInput},
		{Role: models.RoleAssistant, Content: answer},
	} {
		if err := app.History.AppendTurn(ctx, req.VideoID, turn); err != nil {
			slog.Warn("failed to record conversation turn", "video_id", req.VideoID, "error", err)
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": answer})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
