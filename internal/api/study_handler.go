// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apiMiddleware "github.com/flashdeck/study-api/internal/api/middleware"
	"github.com/flashdeck/study-api/internal/api/shared"
	"github.com/flashdeck/study-api/internal/domain"
	"github.com/flashdeck/study-api/internal/platform/logger"
	"github.com/flashdeck/study-api/internal/service/study"
)

// StudyHandler handles study-session HTTP requests: deck stats, next-card
// selection, and review submission.
type StudyHandler struct {
	studyService study.StudyService
	logger       *slog.Logger
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(studyService study.StudyService, log *slog.Logger) *StudyHandler {
	if studyService == nil {
		panic("studyService cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &StudyHandler{
		studyService: studyService,
		logger:       log.With(slog.String("component", "study_handler")),
	}
}

// GetDeckStats handles GET /study/decks/{deckID}/stats requests.
func (h *StudyHandler) GetDeckStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := apiMiddleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	deckID, err := uuid.Parse(chi.URLParam(r, "deckID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID format")
		return
	}

	stats, err := h.studyService.GetStats(r.Context(), deckID, userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("retrieved deck stats",
		slog.String("deck_id", deckID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// GetNextCard handles GET /study/decks/{deckID}/next requests.
// Query parameters: mode (required), shuffle (optional; quiz and exam
// default to true), session_cards (optional comma-separated card IDs).
// Responds 204 when the deck has nothing actionable under the mode.
func (h *StudyHandler) GetNextCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := apiMiddleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	deckID, err := uuid.Parse(chi.URLParam(r, "deckID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID format")
		return
	}

	mode, err := domain.ParseStudyMode(r.URL.Query().Get("mode"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid study mode")
		return
	}

	shuffle, err := parseShuffle(r.URL.Query().Get("shuffle"), mode)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid shuffle value")
		return
	}

	sessionCards, err := parseSessionCards(r.URL.Query().Get("session_cards"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session_cards value")
		return
	}

	card, err := h.studyService.NextCard(r.Context(), study.NextCardRequest{
		DeckID:       deckID,
		UserID:       userID,
		Mode:         mode,
		Shuffle:      shuffle,
		SessionCards: sessionCards,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	// Nothing actionable right now: normal outcome, not a failure.
	if card == nil {
		log.Debug("no cards available",
			slog.String("deck_id", deckID.String()),
			slog.String("mode", string(mode)))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// SubmitReview handles POST /study/reviews requests.
func (h *StudyHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := apiMiddleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation error", err)
		return
	}

	outcome, err := h.studyService.SubmitReview(r.Context(), study.SubmitRequest{
		CardID:  req.CardID,
		UserID:  userID,
		Mode:    domain.StudyMode(req.Mode),
		Quality: req.Quality,
		Answer:  req.Answer,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("submitted review",
		slog.String("card_id", req.CardID.String()),
		slog.String("user_id", userID.String()),
		slog.String("mode", req.Mode))
	shared.RespondWithJSON(w, r, http.StatusOK, outcomeToResponse(outcome))
}

// outcomeToResponse flattens the per-mode outcome into the response body for
// the mode that produced it.
func outcomeToResponse(outcome *study.SubmitOutcome) interface{} {
	switch {
	case outcome.Spaced != nil:
		return outcome.Spaced
	case outcome.Fast != nil:
		return outcome.Fast
	default:
		return outcome.Quiz
	}
}

// parseShuffle interprets the shuffle query parameter. Quiz and exam shuffle
// by default; the other modes are deterministic unless asked.
func parseShuffle(raw string, mode domain.StudyMode) (bool, error) {
	if raw == "" {
		return mode.IsAssessment(), nil
	}
	return strconv.ParseBool(raw)
}

// parseSessionCards parses a comma-separated list of card IDs.
func parseSessionCards(raw string) ([]uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}
