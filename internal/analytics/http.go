package analytics

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dianoite/quiz-analytics/internal/challenge"
	"github.com/dianoite/quiz-analytics/internal/session"
	httperrors "github.com/dianoite/quiz-analytics/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for session tracking and analytics.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for the analytics service.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "analytics_http").Logger(),
	}
}

type startSessionRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
}

// StartSession handles POST /v1/sessions/start
func (h *HTTPHandlers) StartSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.UserID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "user_id is required", "user_id")
		return
	}

	view := h.service.StartSession(req.UserID, req.SessionID)
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"session_id": view.ID,
		"user_id":    view.UserID,
		"start_time": view.StartTime,
		"active":     view.Active,
	})
}

type challengeStartRequest struct {
	SessionID string            `json:"session_id"`
	Challenge *challenge.Static `json:"challenge"`
}

// LogChallengeStart handles POST /v1/sessions/challenge
func (h *HTTPHandlers) LogChallengeStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req challengeStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.SessionID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "session_id is required", "session_id")
		return
	}
	if req.Challenge == nil || req.Challenge.ChallengeID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "challenge with challenge_id is required", "challenge")
		return
	}

	view, err := h.service.LogChallengeStart(req.SessionID, req.Challenge)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"challenge": req.Challenge.Snapshot(),
		"session_context": map[string]interface{}{
			"challenges_in_session":   view.ChallengesAttempted,
			"interactions_in_session": len(view.Interactions),
			"session_duration":        view.Duration,
		},
	})
}

type completeChallengeRequest struct {
	SessionID   string   `json:"session_id"`
	ChallengeID string   `json:"challenge_id"`
	IsCorrect   *bool    `json:"is_correct"`
	TimeTaken   *float64 `json:"time_taken,omitempty"`
	TimeLimit   *float64 `json:"time_limit,omitempty"`
	Difficulty  int      `json:"difficulty,omitempty"`
}

// CompleteChallenge handles POST /v1/sessions/complete
func (h *HTTPHandlers) CompleteChallenge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req completeChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.SessionID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "session_id is required", "session_id")
		return
	}
	if req.ChallengeID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "challenge_id is required", "challenge_id")
		return
	}
	if req.IsCorrect == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "is_correct is required", "is_correct")
		return
	}

	outcome, err := h.service.CompleteChallenge(req.SessionID, CompletionRequest{
		ChallengeID: req.ChallengeID,
		IsCorrect:   *req.IsCorrect,
		TimeTaken:   req.TimeTaken,
		TimeLimit:   req.TimeLimit,
		Difficulty:  req.Difficulty,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, outcome)
}

type attemptRequest struct {
	SessionID   string `json:"session_id"`
	ChallengeID string `json:"challenge_id"`
}

// IncrementAttempts handles POST /v1/sessions/attempt
func (h *HTTPHandlers) IncrementAttempts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req attemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.SessionID == "" || req.ChallengeID == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeMissingField, "session_id and challenge_id are required")
		return
	}

	attempts, err := h.service.IncrementAttempts(req.SessionID, req.ChallengeID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"challenge_id": req.ChallengeID,
		"attempts":     attempts,
	})
}

type interactionRequest struct {
	SessionID string                 `json:"session_id"`
	EventType string                 `json:"event_type"`
	EventData map[string]interface{} `json:"event_data,omitempty"`
}

// LogInteraction handles POST /v1/sessions/interaction
func (h *HTTPHandlers) LogInteraction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.SessionID == "" || req.EventType == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeMissingField, "session_id and event_type are required")
		return
	}

	if err := h.service.LogInteraction(req.SessionID, req.EventType, req.EventData); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"logged": true})
}

type endSessionRequest struct {
	SessionID string `json:"session_id"`
}

// EndSession handles POST /v1/sessions/end
func (h *HTTPHandlers) EndSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req endSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.SessionID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "session_id is required", "session_id")
		return
	}

	summary, err := h.service.EndSession(req.SessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"session_summary": summary})
}

// GetSession handles GET /v1/sessions/{id}
func (h *HTTPHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.PathValue("id")
	if sessionID == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeMissingField, "session id is required")
		return
	}

	summary, err := h.service.SessionSummary(sessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, summary)
}

// GetUserReport handles GET /v1/users/{id}/report
func (h *HTTPHandlers) GetUserReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.PathValue("id")
	if userID == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeMissingField, "user id is required")
		return
	}

	h.respondJSON(w, http.StatusOK, h.service.UserReport(userID))
}

// GetUserStats handles GET /v1/users/{id}/stats
func (h *HTTPHandlers) GetUserStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.PathValue("id")
	st, ok := h.service.UserStats(userID)
	if !ok {
		httperrors.RespondNotFound(w, httperrors.ErrCodeUserNotFound, "No stats recorded for user")
		return
	}

	h.respondJSON(w, http.StatusOK, st)
}

type exportRequest struct {
	StudentID string `json:"studentId"`
}

// ExportAnalytics handles POST /v1/analytics
func (h *HTTPHandlers) ExportAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.StudentID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "studentId is required", "studentId")
		return
	}

	h.respondJSON(w, http.StatusOK, h.service.ExportAnalytics(req.StudentID))
}

func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, err.Error())
	default:
		h.logger.Error().Err(err).Msg("unexpected service error")
		httperrors.RespondInternalError(w, "internal error")
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && !strings.Contains(err.Error(), "broken pipe") {
		h.logger.Warn().Err(err).Msg("encode response")
	}
}
