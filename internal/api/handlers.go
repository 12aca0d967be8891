package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pantry-chef/internal/app"
	"pantry-chef/internal/apperrors"
	"pantry-chef/internal/metrics"
	"pantry-chef/internal/recognition"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Recipes   int               `json:"recipes"`
	System    metrics.SysHealth `json:"system"`
}

// AnalyzeImageResponse is the body of a successful image analysis.
type AnalyzeImageResponse struct {
	Predictions []recognition.Prediction `json:"predictions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Recipes:   len(s.app.Recipes()),
		System:    metrics.GetSysHealth(s.storePath),
	})
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.app.Recipes())
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	rec, err := s.app.Recipe(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req app.SearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	results, err := s.app.Search(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req app.GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := s.app.Generate(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyzeImage(w http.ResponseWriter, r *http.Request) {
	image, err := readUpload(w, r, "image")
	if err != nil {
		writeError(w, r, err)
		return
	}
	preds, err := s.app.AnalyzeImage(r.Context(), image)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, AnalyzeImageResponse{Predictions: preds})
}

// readUpload returns the bytes of a multipart file field. A missing or empty
// field yields nil so the caller reports it.
func readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+(64<<10))
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.WithDetails(apperrors.CodeValidation, "Image exceeds the 5 MiB limit",
				map[string]any{"maxBytes": maxUploadBytes})
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.CodeValidation, "Invalid multipart body", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.CodeValidation, "Invalid multipart body", err)
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		return nil, apperrors.WithDetails(apperrors.CodeValidation, "Image exceeds the 5 MiB limit",
			map[string]any{"maxBytes": maxUploadBytes})
	}
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, "Failed to read image", err)
	}
	return data, nil
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.app.Preferences(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req app.PreferencesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	prefs, err := s.app.UpdatePreferences(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := s.app.Favorites(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, favorites)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	favorites, err := s.app.ToggleFavorite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, favorites)
}

func (s *Server) handleListRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := s.app.Ratings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ratings)
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	var req app.RateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ratings, err := s.app.Rate(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ratings)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := s.app.Suggestions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, suggestions)
}

// handleRecognitionUsage reports recognition calls per day, ?days=7 by default.
func (s *Server) handleRecognitionUsage(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 365 {
			writeError(w, r, apperrors.New(apperrors.CodeValidation, "days must be between 1 and 365"))
			return
		}
		days = n
	}
	usage, err := s.app.RecognitionUsage(r.Context(), days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, usage)
}
