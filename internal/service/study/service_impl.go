package study

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/study-api/internal/domain"
	"github.com/flashdeck/study-api/internal/domain/srs"
	"github.com/flashdeck/study-api/internal/platform/logger"
	"github.com/flashdeck/study-api/internal/store"
)

// createRetryAttempts bounds the first-review race retry loop before the
// conflict surfaces as transient.
const createRetryAttempts = 3

// Verify interface compliance at compile time
var _ StudyService = (*studyServiceImpl)(nil)

// studyServiceImpl implements the StudyService interface.
type studyServiceImpl struct {
	db          *sql.DB
	deckStore   store.DeckStore
	cardStore   store.CardStore
	reviewStore store.ReviewStore
	srsService  srs.Service
	logger      *slog.Logger

	// now is injectable for tests; defaults to time.Now. The scheduler works
	// in the clock's location, so "today" means the local calendar day.
	now func() time.Time
}

// NewStudyService creates a new StudyService implementation.
func NewStudyService(
	db *sql.DB,
	deckStore store.DeckStore,
	cardStore store.CardStore,
	reviewStore store.ReviewStore,
	srsService srs.Service,
	log *slog.Logger,
) StudyService {
	if deckStore == nil {
		panic("deckStore cannot be nil")
	}
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if reviewStore == nil {
		panic("reviewStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &studyServiceImpl{
		db:          db,
		deckStore:   deckStore,
		cardStore:   cardStore,
		reviewStore: reviewStore,
		srsService:  srsService,
		logger:      log.With(slog.String("component", "study_service")),
		now:         time.Now,
	}
}

// GetStats implements StudyService.GetStats.
func (s *studyServiceImpl) GetStats(
	ctx context.Context,
	deckID, userID uuid.UUID,
) (*DeckStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.verifyDeck(ctx, deckID, userID); err != nil {
		return nil, err
	}

	total, err := s.cardStore.CountByDeck(ctx, deckID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count cards: %w", err)
	}
	if total == 0 {
		return &DeckStats{}, nil
	}

	reviewed, err := s.reviewStore.CountReviewedCards(ctx, deckID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviewed cards: %w", err)
	}

	now := s.now()
	due, err := s.reviewStore.CountDue(ctx, deckID, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count due records: %w", err)
	}

	done, err := s.reviewStore.CountReviewedSince(ctx, deckID, userID, startOfDay(now))
	if err != nil {
		return nil, fmt.Errorf("failed to count records reviewed today: %w", err)
	}

	stats := &DeckStats{
		New:      total - reviewed,
		ToReview: due,
		Done:     done,
	}

	log.Debug("computed deck stats",
		slog.String("deck_id", deckID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("new", stats.New),
		slog.Int("to_review", stats.ToReview),
		slog.Int("done", stats.Done))
	return stats, nil
}

// NextCard implements StudyService.NextCard.
// Mode policies: spaced serves overdue work first, then unseen cards; fast
// serves everything untouched today; quiz and exam serve the whole deck
// minus the session exclusions.
func (s *studyServiceImpl) NextCard(
	ctx context.Context,
	req NextCardRequest,
) (*StudyCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.verifyDeck(ctx, req.DeckID, req.UserID); err != nil {
		return nil, err
	}

	var card *domain.Card
	var err error

	switch req.Mode {
	case domain.StudyModeSpaced:
		card, err = s.cardStore.NextDue(ctx, req.DeckID, req.UserID, s.now(), req.Shuffle)
		if errors.Is(err, store.ErrCardNotFound) {
			// No due cards: fall back to the backlog of unseen material.
			card, err = s.cardStore.NextNew(ctx, req.DeckID, req.UserID, req.Shuffle)
		}
	case domain.StudyModeFast:
		card, err = s.cardStore.NextUnreviewedToday(
			ctx, req.DeckID, req.UserID, startOfDay(s.now()), req.Shuffle)
	case domain.StudyModeQuiz, domain.StudyModeExam:
		card, err = s.cardStore.NextInDeck(
			ctx, req.DeckID, req.UserID, req.SessionCards, req.Shuffle)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}

	if err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			log.Debug("no cards available",
				slog.String("deck_id", req.DeckID.String()),
				slog.String("mode", string(req.Mode)))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pick next card: %w", err)
	}

	return s.annotate(ctx, card, req.UserID)
}

// SubmitReview implements StudyService.SubmitReview.
func (s *studyServiceImpl) SubmitReview(
	ctx context.Context,
	req SubmitRequest,
) (*SubmitOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validateSubmit(req); err != nil {
		log.Warn("rejected review submission",
			slog.String("card_id", req.CardID.String()),
			slog.String("mode", string(req.Mode)),
			slog.String("error", err.Error()))
		return nil, err
	}

	card, err := s.cardStore.GetByID(ctx, req.CardID)
	if err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	if card.UserID != req.UserID {
		log.Warn("user does not own card",
			slog.String("user_id", req.UserID.String()),
			slog.String("card_id", req.CardID.String()))
		return nil, ErrCardNotFound
	}

	var outcome *SubmitOutcome
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		outcome, err = s.applyReview(ctx, s.reviewStore.WithTx(tx), card, req)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrInvalidQuality) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}

	log.Debug("processed review submission",
		slog.String("card_id", req.CardID.String()),
		slog.String("user_id", req.UserID.String()),
		slog.String("mode", string(req.Mode)))
	return outcome, nil
}

// applyReview runs the fetch-or-create-then-mutate cycle for one submission
// inside the caller's transaction. The existing row is locked with
// GetForUpdate; a lost first-review race re-reads the winner's row rather
// than creating a duplicate, bounded by createRetryAttempts.
func (s *studyServiceImpl) applyReview(
	ctx context.Context,
	reviews store.ReviewStore,
	card *domain.Card,
	req SubmitRequest,
) (*SubmitOutcome, error) {
	now := s.now()

	for attempt := 0; attempt < createRetryAttempts; attempt++ {
		rec, err := reviews.GetForUpdate(ctx, card.ID, req.UserID)
		created := false
		if errors.Is(err, store.ErrReviewNotFound) {
			rec, err = domain.NewReviewRecord(card.ID, req.UserID)
			if err != nil {
				return nil, fmt.Errorf("failed to build review record: %w", err)
			}
			created = true
		} else if err != nil {
			return nil, fmt.Errorf("failed to get review record: %w", err)
		}

		outcome, err := s.mutate(rec, card, req, created, now)
		if err != nil {
			return nil, err
		}

		if created {
			err = reviews.Create(ctx, rec)
			if errors.Is(err, store.ErrReviewExists) {
				// Lost the first-review race; re-read and update instead.
				continue
			}
		} else {
			err = reviews.Update(ctx, rec)
		}
		if err != nil {
			return nil, err
		}

		return outcome, nil
	}

	return nil, ErrConflict
}

// mutate applies the per-mode state transition to the record in place and
// returns the outcome to report. Only spaced mode runs the interval
// calculator; quiz and exam record an assessment without perturbing the
// spaced-repetition schedule.
func (s *studyServiceImpl) mutate(
	rec *domain.ReviewRecord,
	card *domain.Card,
	req SubmitRequest,
	created bool,
	now time.Time,
) (*SubmitOutcome, error) {
	rec.LastReviewed = now
	rec.UpdatedAt = now

	switch req.Mode {
	case domain.StudyModeSpaced:
		result, err := s.srsService.Advance(
			rec.EaseFactor, rec.Interval, rec.Repetitions, *req.Quality, now)
		if err != nil {
			if errors.Is(err, srs.ErrInvalidQuality) {
				return nil, ErrInvalidQuality
			}
			return nil, fmt.Errorf("failed to advance review state: %w", err)
		}

		rec.EaseFactor = result.EaseFactor
		rec.Interval = result.Interval
		rec.Repetitions = result.Repetitions
		rec.DueDate = &result.DueDate
		rec.Quality = req.Quality

		return &SubmitOutcome{Spaced: &SpacedOutcome{
			NextReviewInDays: result.Interval,
			EaseFactor:       result.EaseFactor,
			Repetitions:      result.Repetitions,
		}}, nil

	case domain.StudyModeFast:
		if created {
			quality := domain.FastReviewQuality
			rec.Quality = &quality
		}

		return &SubmitOutcome{Fast: &FastOutcome{Reviewed: true}}, nil

	case domain.StudyModeQuiz, domain.StudyModeExam:
		correct := answersMatch(card.Answer, *req.Answer)
		quality := domain.MinQuality
		if correct {
			quality = domain.MaxQuality
		}
		rec.Quality = &quality

		return &SubmitOutcome{Quiz: &QuizOutcome{
			Correct:        correct,
			ExpectedAnswer: card.Answer,
		}}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}
}

// annotate attaches the user's review standing to a picked card.
func (s *studyServiceImpl) annotate(
	ctx context.Context,
	card *domain.Card,
	userID uuid.UUID,
) (*StudyCard, error) {
	sc := &StudyCard{
		ID:       card.ID,
		DeckID:   card.DeckID,
		Question: card.Question,
		Answer:   card.Answer,
	}

	rec, err := s.reviewStore.Get(ctx, card.ID, userID)
	if err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			sc.IsNew = true
			return sc, nil
		}
		return nil, fmt.Errorf("failed to get review record: %w", err)
	}

	sc.DueDate = rec.DueDate
	return sc, nil
}

// verifyDeck checks deck existence and ownership. Both failure shapes
// surface as ErrDeckNotFound so callers cannot probe for other users' decks.
func (s *studyServiceImpl) verifyDeck(ctx context.Context, deckID, userID uuid.UUID) error {
	deck, err := s.deckStore.GetByID(ctx, deckID)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return ErrDeckNotFound
		}
		return fmt.Errorf("failed to get deck: %w", err)
	}

	if deck.UserID != userID {
		return ErrDeckNotFound
	}

	return nil
}

// validateSubmit rejects malformed submissions before any mutation.
func validateSubmit(req SubmitRequest) error {
	switch req.Mode {
	case domain.StudyModeSpaced:
		if req.Quality == nil {
			return ErrQualityRequired
		}
		if *req.Quality < domain.MinQuality || *req.Quality > domain.MaxQuality {
			return ErrInvalidQuality
		}
	case domain.StudyModeFast:
		// Fast mode ignores quality and answer.
	case domain.StudyModeQuiz, domain.StudyModeExam:
		if req.Answer == nil {
			return ErrAnswerRequired
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}

	return nil
}

// answersMatch grades a quiz response: case-insensitive, whitespace-trimmed
// exact equality against the stored answer.
func answersMatch(expected, given string) bool {
	return strings.EqualFold(strings.TrimSpace(expected), strings.TrimSpace(given))
}

// startOfDay truncates an instant to midnight of its calendar day.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
