// Package http implements the REST API of Hifz Progress Hub.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hifz-hub/hifz-progress-hub/internal/application/command"
	"github.com/hifz-hub/hifz-progress-hub/internal/application/query"
	"github.com/hifz-hub/hifz-progress-hub/internal/application/saga"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/child"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/content"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/identity"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/progress"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/shared"
	"github.com/hifz-hub/hifz-progress-hub/internal/infrastructure/auth"
	"github.com/hifz-hub/hifz-progress-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Hifz Progress Hub API",
		"version":     "v1",
		"description": "Progress tracking for children memorizing the Quran",
		"endpoints": map[string]string{
			"health":       "/health",
			"children":     "/api/v1/children",
			"attempts":     "/api/v1/progress/attempts",
			"sync":         "/api/v1/progress/sync",
			"achievements": "/api/v1/achievements",
			"surahs":       "/api/v1/content/surahs",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// Default health response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTH HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// currentParent resolves the authenticated parent of the request.
func (s *Server) currentParent(r *http.Request) (*identity.Parent, error) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok || id.ExternalID == "" {
		return nil, identity.ErrUnauthenticated
	}

	parent, err := s.deps.Parents.GetByExternalID(r.Context(), id.ExternalID)
	if err != nil {
		return nil, err
	}
	return parent, nil
}

// authorizeChild verifies the child profile belongs to the parent.
func (s *Server) authorizeChild(r *http.Request, parentID, childID string) error {
	c, err := s.deps.Children.GetByID(r.Context(), childID)
	if err != nil {
		return err
	}
	if c.ParentID != parentID {
		return shared.ErrForbidden
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeDomainError translates application and domain errors into HTTP
// responses. Unmapped errors turn into a 500 without leaking internals.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, identity.ErrUnauthenticated):
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Authentication is required")

	case errors.Is(err, shared.ErrForbidden):
		writeJSONError(w, http.StatusForbidden, "forbidden", "This profile belongs to another account")

	case errors.Is(err, child.ErrChildNotFound),
		errors.Is(err, identity.ErrParentNotFound),
		errors.Is(err, progress.ErrAttemptNotFound),
		errors.Is(err, content.ErrSurahNotFound),
		errors.Is(err, content.ErrVerseNotFound),
		errors.Is(err, content.ErrWordNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, identity.ErrParentExists):
		writeJSONError(w, http.StatusConflict, "already_registered", "This account is already onboarded")

	case errors.Is(err, command.ErrTooManyChildren):
		writeJSONError(w, http.StatusConflict, "too_many_children", err.Error())

	case errors.Is(err, child.ErrChildDeleted):
		writeJSONError(w, http.StatusConflict, "child_deleted", "This profile has been deleted")

	case errors.Is(err, child.ErrInvalidName),
		errors.Is(err, child.ErrInvalidAge),
		errors.Is(err, child.ErrInvalidAvatarToken),
		errors.Is(err, progress.ErrInvalidAccuracy),
		errors.Is(err, progress.ErrInvalidWordID),
		errors.Is(err, progress.ErrInvalidDeviceAttemptID),
		errors.Is(err, progress.ErrChildMismatch),
		errors.Is(err, progress.ErrSyncBatchTooLarge),
		errors.Is(err, content.ErrInvalidSurahNumber),
		errors.Is(err, identity.ErrInvalidParentName),
		errors.Is(err, identity.ErrInvalidPIN),
		errors.Is(err, identity.ErrConsentRequired),
		isValidationError(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())

	default:
		s.logger.Error("request failed",
			logger.Err(err),
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// isValidationError catches the "field is required" errors the command
// and query constructors return as plain errors.
func isValidationError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "is required") || strings.Contains(msg, "batch is empty")
}

// decodeBody decodes a JSON request body with a 1MB size cap.
func decodeBody(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return err
	}
	defer r.Body.Close()
	return json.Unmarshal(body, dst)
}

// ══════════════════════════════════════════════════════════════════════════════
// ONBOARDING HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// onboardingRequest is the payload of POST /api/v1/onboarding.
type onboardingRequest struct {
	ParentName   string `json:"parent_name"`
	PIN          string `json:"pin"`
	ConsentGiven bool   `json:"consent_given"`

	FirstChild *struct {
		Name   string `json:"name"`
		Age    int    `json:"age"`
		Avatar string `json:"avatar"`
	} `json:"first_child,omitempty"`
}

// onboardingResponse is the result of a successful onboarding.
type onboardingResponse struct {
	ParentID    string          `json:"parent_id"`
	ParentName  string          `json:"parent_name"`
	FirstChild  *query.ChildDTO `json:"first_child,omitempty"`
	OnboardedAt time.Time       `json:"onboarded_at"`
}

// handleOnboarding handles POST /api/v1/onboarding
func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		s.writeDomainError(w, r, identity.ErrUnauthenticated)
		return
	}

	var req onboardingRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	input := saga.OnboardingInput{
		ExternalID:   id.ExternalID,
		ParentName:   req.ParentName,
		PIN:          req.PIN,
		ConsentGiven: req.ConsentGiven,
	}
	if req.FirstChild != nil {
		input.FirstChild = &saga.FirstChildInput{
			Name:   req.FirstChild.Name,
			Age:    req.FirstChild.Age,
			Avatar: req.FirstChild.Avatar,
		}
	}

	result, err := s.deps.OnboardingSaga.Execute(r.Context(), input)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp := onboardingResponse{
		ParentID:    result.Parent.ID,
		ParentName:  result.Parent.Name,
		OnboardedAt: result.OnboardedAt,
	}
	if result.FirstChild != nil {
		dto := query.NewChildDTO(result.FirstChild)
		resp.FirstChild = &dto
	}

	writeJSON(w, http.StatusCreated, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// CHILD PROFILE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// createChildRequest is the payload of POST /api/v1/children.
type createChildRequest struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Avatar string `json:"avatar"`
}

// handleListChildren handles GET /api/v1/children
func (s *Server) handleListChildren(w http.ResponseWriter, r *http.Request) {
	parent, err := s.currentParent(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := s.deps.ListChildrenHandler.Handle(r.Context(), query.ListChildrenQuery{
		ParentID: parent.ID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleCreateChild handles POST /api/v1/children
func (s *Server) handleCreateChild(w http.ResponseWriter, r *http.Request) {
	parent, err := s.currentParent(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var req createChildRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	result, err := s.deps.CreateChildHandler.Handle(r.Context(), command.CreateChildCommand{
		ParentID: parent.ID,
		Name:     req.Name,
		Age:      req.Age,
		Avatar:   req.Avatar,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, query.NewChildDTO(result.Child))
}

// handleDeleteChild handles DELETE /api/v1/children/{id}
func (s *Server) handleDeleteChild(w http.ResponseWriter, r *http.Request) {
	parent, err := s.currentParent(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	childID := r.PathValue("id")
	if childID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Child ID is required")
		return
	}

	err = s.deps.DeleteChildHandler.Handle(r.Context(), command.DeleteChildCommand{
		ParentID: parent.ID,
		ChildID:  childID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS READ HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetSummary handles GET /api/v1/children/{id}/summary
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	parent, err := s.currentParent(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	childID := r.PathValue("id")

	result, err := s.deps.GetSummaryHandler.Handle(r.Context(), query.GetSummaryQuery{
		ChildID:   childID,
		ParentID:  parent.ID,
		SkipCache: getQueryParamBool(r, "fresh"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetXPStatus handles GET /api/v1/children/{id}/xp
func (s *Server) handleGetXPStatus(w http.ResponseWriter, r *http.Request) {
	parent, err := s.currentParent(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	childID := r.PathValue("id")
	if err := s.authorizeChild(r, parent.ID, childID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := s.deps.GetXPStatusHandler.Handle(r.Context(), query.GetXPStatusQuery{
		ChildID: childID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetChildStats handles GET /api/v1/children/{id}/stats
func (s *Server) handleGetChildStats(w http.ResponseWriter, r *http.Request) {
	parent, err := s.currentParent(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := s.deps.GetChildStatsHandler.Handle(r.Context(), query.GetChildStatsQuery{
		ChildID:    r.PathValue("id"),
		ParentID:   parent.ID,
		WindowDays: getQueryParamInt(r, "days", 7),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetChildAchievements handles GET /api/v1/children/{id}/achievements
func (s *Server) handleGetChildAchievements(w http.ResponseWriter, r *http.Request) {
	parent, err := s.currentParent(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	childID := r.PathValue("id")
	if err := s.authorizeChild(r, parent.ID, childID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := s.deps.GetChildAchievementsHandler.Handle(r.Context(), query.GetChildAchievementsQuery{
		ChildID:       childID,
		IncludeLocked: getQueryParamBool(r, "include_locked"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS WRITE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// submitAttemptRequest is the payload of POST /api/v1/progress/attempts.
type submitAttemptRequest struct {
	ChildID         string    `json:"child_id"`
	WordID          int       `json:"word_id"`
	SurahNumber     int       `json:"surah_number"`
	VerseNumber     int       `json:"verse_number"`
	Accuracy        float64   `json:"accuracy"`
	DeviceAttemptID string    `json:"device_attempt_id"`
	SessionID       string    `json:"session_id,omitempty"`
	AttemptedAt     time.Time `json:"attempted_at,omitempty"`
}

// submitAttemptResponse is the outcome of one recorded attempt.
type submitAttemptResponse struct {
	AttemptID            string   `json:"attempt_id"`
	Duplicate            bool     `json:"duplicate"`
	Status               string   `json:"status"`
	MasteryStreak        int      `json:"mastery_streak"`
	XPEarned             int      `json:"xp_earned"`
	TotalXP              int      `json:"total_xp"`
	Level                int      `json:"level"`
	LeveledUp            bool     `json:"leveled_up"`
	CurrentStreak        int      `json:"current_streak"`
	UnlockedAchievements []string `json:"unlocked_achievements,omitempty"`
}

// handleSubmitAttempt handles POST /api/v1/progress/attempts
func (s *Server) handleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	parent, err := s.currentParent(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var req submitAttemptRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	if err := s.authorizeChild(r, parent.ID, req.ChildID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := s.deps.SubmitAttemptHandler.Handle(r.Context(), command.SubmitAttemptCommand{
		ChildID:         req.ChildID,
		WordID:          req.WordID,
		SurahNumber:     req.SurahNumber,
		VerseNumber:     req.VerseNumber,
		Accuracy:        req.Accuracy,
		DeviceAttemptID: req.DeviceAttemptID,
		SessionID:       req.SessionID,
		AttemptedAt:     req.AttemptedAt,
		CorrelationID:   getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	// A duplicate returns the original outcome with 200, a fresh
	// attempt gets 201. The client telescopes both into "synced".
	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}

	writeJSON(w, status, submitAttemptResponse{
		AttemptID:            result.AttemptID,
		Duplicate:            result.Duplicate,
		Status:               string(result.Status),
		MasteryStreak:        result.MasteryStreak,
		XPEarned:             result.XPEarned,
		TotalXP:              result.TotalXP,
		Level:                result.Level,
		LeveledUp:            result.LeveledUp,
		CurrentStreak:        result.CurrentStreak,
		UnlockedAchievements: result.UnlockedAchievements,
	})
}

// syncAttemptsRequest is the payload of POST /api/v1/progress/sync.
type syncAttemptsRequest struct {
	ChildID  string                 `json:"child_id"`
	Attempts []submitAttemptRequest `json:"attempts"`
}

// syncAttemptsResponse is the outcome of an offline sync batch.
type syncAttemptsResponse struct {
	CreatedCount         int      `json:"created_count"`
	DuplicateCount       int      `json:"duplicate_count"`
	XPEarned             int      `json:"xp_earned"`
	TotalXP              int      `json:"total_xp"`
	Level                int      `json:"level"`
	CurrentStreak        int      `json:"current_streak"`
	UnlockedAchievements []string `json:"unlocked_achievements,omitempty"`
}

// handleSyncAttempts handles POST /api/v1/progress/sync
func (s *Server) handleSyncAttempts(w http.ResponseWriter, r *http.Request) {
	parent, err := s.currentParent(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var req syncAttemptsRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	if err := s.authorizeChild(r, parent.ID, req.ChildID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	entries := make([]command.SyncAttemptEntry, 0, len(req.Attempts))
	for _, a := range req.Attempts {
		entries = append(entries, command.SyncAttemptEntry{
			ChildID:         a.ChildID,
			WordID:          a.WordID,
			SurahNumber:     a.SurahNumber,
			VerseNumber:     a.VerseNumber,
			Accuracy:        a.Accuracy,
			DeviceAttemptID: a.DeviceAttemptID,
			SessionID:       a.SessionID,
			AttemptedAt:     a.AttemptedAt,
		})
	}

	result, err := s.deps.SyncAttemptsHandler.Handle(r.Context(), command.SyncAttemptsCommand{
		ChildID:       req.ChildID,
		Attempts:      entries,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, syncAttemptsResponse{
		CreatedCount:         result.CreatedCount,
		DuplicateCount:       result.DuplicateCount,
		XPEarned:             result.XPEarned,
		TotalXP:              result.TotalXP,
		Level:                result.Level,
		CurrentStreak:        result.CurrentStreak,
		UnlockedAchievements: result.UnlockedAchievements,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// REFERENCE DATA HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListCatalog handles GET /api/v1/achievements
func (s *Server) handleListCatalog(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.ListCatalogHandler.Handle(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// surahResponse is a surah catalog entry.
type surahResponse struct {
	Number          int    `json:"number"`
	NameArabic      string `json:"name_arabic"`
	NameSimple      string `json:"name_simple"`
	NameTranslated  string `json:"name_translated"`
	VerseCount      int    `json:"verse_count"`
	RevelationPlace string `json:"revelation_place"`
}

// handleListSurahs handles GET /api/v1/content/surahs
func (s *Server) handleListSurahs(w http.ResponseWriter, r *http.Request) {
	surahs, err := s.deps.Content.ListSurahs(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result := make([]surahResponse, 0, len(surahs))
	for _, su := range surahs {
		result = append(result, surahResponse{
			Number:          su.Number,
			NameArabic:      su.NameArabic,
			NameSimple:      su.NameSimple,
			NameTranslated:  su.NameTranslated,
			VerseCount:      su.VerseCount,
			RevelationPlace: su.RevelationPlace,
		})
	}

	writeJSON(w, http.StatusOK, result)
}

// verseResponse is one verse of a surah.
type verseResponse struct {
	ID          int    `json:"id"`
	SurahNumber int    `json:"surah_number"`
	VerseNumber int    `json:"verse_number"`
	TextUthmani string `json:"text_uthmani"`
	Translation string `json:"translation,omitempty"`
	WordCount   int    `json:"word_count"`
}

// handleListVerses handles GET /api/v1/content/surahs/{number}/verses
func (s *Server) handleListVerses(w http.ResponseWriter, r *http.Request) {
	number := getPathInt(r, "number")
	if !content.IsValidSurahNumber(number) {
		s.writeDomainError(w, r, content.ErrInvalidSurahNumber)
		return
	}

	verses, err := s.deps.Content.ListVerses(r.Context(), number)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result := make([]verseResponse, 0, len(verses))
	for _, v := range verses {
		result = append(result, verseResponse{
			ID:          v.ID,
			SurahNumber: v.SurahNumber,
			VerseNumber: v.VerseNumber,
			TextUthmani: v.TextUthmani,
			Translation: v.Translation,
			WordCount:   v.WordCount,
		})
	}

	writeJSON(w, http.StatusOK, result)
}

// wordResponse is one word of a verse.
type wordResponse struct {
	ID              int    `json:"id"`
	VerseID         int    `json:"verse_id"`
	Position        int    `json:"position"`
	TextUthmani     string `json:"text_uthmani"`
	Transliteration string `json:"transliteration,omitempty"`
	Translation     string `json:"translation,omitempty"`
}

// handleListWords handles GET /api/v1/content/verses/{id}/words
func (s *Server) handleListWords(w http.ResponseWriter, r *http.Request) {
	verseID := getPathInt(r, "id")
	if verseID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Verse ID must be a positive integer")
		return
	}

	words, err := s.deps.Content.ListWords(r.Context(), verseID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result := make([]wordResponse, 0, len(words))
	for _, word := range words {
		result = append(result, wordResponse{
			ID:              word.ID,
			VerseID:         word.VerseID,
			Position:        word.Position,
			TextUthmani:     word.TextUthmani,
			Transliteration: word.Transliteration,
			Translation:     word.Translation,
		})
	}

	writeJSON(w, http.StatusOK, result)
}

// getPathInt parses an integer path segment, returning 0 on failure.
func getPathInt(r *http.Request, key string) int {
	result, err := strconv.Atoi(r.PathValue(key))
	if err != nil {
		return 0
	}
	return result
}
