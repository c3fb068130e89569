package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dreamscape/identity-system/internal/core/domain"
	"github.com/dreamscape/identity-system/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis). A nil checker
// disables deduplication.
type DedupChecker interface {
	IsDuplicate(ctx context.Context, username, kind string, ts time.Time) (bool, error)
	Mark(ctx context.Context, username, kind string, ts time.Time) error
}

type activityService struct {
	users ports.UserRepository
	dedup DedupChecker
	log   zerolog.Logger
}

// NewActivityService returns an ActivityService that applies collaborator
// activity reports to user statistics.
func NewActivityService(users ports.UserRepository, dedup DedupChecker, log zerolog.Logger) ports.ActivityService {
	return &activityService{users: users, dedup: dedup, log: log}
}

// Process validates, deduplicates, and applies a single activity event.
func (s *activityService) Process(ctx context.Context, in ports.ActivityInput) error {
	if !domain.ValidStatistic(in.Kind) {
		return domain.NewValidationError("kind", fmt.Sprintf("unknown statistic %q", in.Kind))
	}
	if in.Amount <= 0 {
		return domain.NewValidationError("amount", "must be positive")
	}

	// Idempotency check: silently skip duplicates.
	if s.dedup != nil {
		isDup, err := s.dedup.IsDuplicate(ctx, in.Username, in.Kind, in.Timestamp)
		if err != nil {
			s.log.Warn().Err(err).Str("username", in.Username).Msg("dedup check failed, processing anyway")
		} else if isDup {
			s.log.Debug().Str("username", in.Username).Str("kind", in.Kind).Msg("duplicate activity skipped")
			return nil
		}
	}

	// The user must exist; activity against unknown accounts is a caller bug,
	// not something to upsert.
	if _, err := s.users.FindByUsername(ctx, in.Username); err != nil {
		return fmt.Errorf("process activity: %w", err)
	}

	// Mark before writing so a crash between mark and write drops the event
	// rather than double-counting it on redelivery.
	if s.dedup != nil {
		if markErr := s.dedup.Mark(ctx, in.Username, in.Kind, in.Timestamp); markErr != nil {
			s.log.Warn().Err(markErr).Str("username", in.Username).Msg("failed to set dedup key")
		}
	}

	if err := s.users.IncrementStatistic(ctx, in.Username, in.Kind, in.Amount); err != nil {
		return fmt.Errorf("process activity: increment: %w", err)
	}

	s.log.Info().
		Str("username", in.Username).
		Str("kind", in.Kind).
		Int64("amount", in.Amount).
		Str("source", in.Source).
		Msg("activity applied")

	return nil
}
