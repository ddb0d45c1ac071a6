package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forumkit/lottery-draw-backend/internal/config"
	"github.com/forumkit/lottery-draw-backend/internal/models"
	"github.com/forumkit/lottery-draw-backend/internal/repositories"
	"github.com/forumkit/lottery-draw-backend/internal/template"
	"github.com/forumkit/lottery-draw-backend/pkg/forum"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure CreationServiceImpl implements CreationService
var _ CreationService = (*CreationServiceImpl)(nil)

// CreationServiceImpl creates lottery records from thread templates
type CreationServiceImpl struct {
	lotteryRepo repositories.LotteryRepository
	forumClient forum.Client
	cfg         *config.Config
}

// NewCreationService creates a new CreationServiceImpl
func NewCreationService(lotteryRepo repositories.LotteryRepository, forumClient forum.Client, cfg *config.Config) *CreationServiceImpl {
	return &CreationServiceImpl{
		lotteryRepo: lotteryRepo,
		forumClient: forumClient,
		cfg:         cfg,
	}
}

// HandleThreadCreated inspects a new thread and creates a lottery when its
// originating post carries a valid template. Template parsing runs on
// user-authored content and must never crash or fail the caller: every
// error is logged here and swallowed.
func (s *CreationServiceImpl) HandleThreadCreated(ctx context.Context, threadID int64) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while creating lottery", "threadId", threadID, "panic", r)
		}
	}()

	if err := s.createFromTemplate(ctx, threadID); err != nil {
		slog.Error("lottery creation failed", "error", err, "threadId", threadID)
	}
}

func (s *CreationServiceImpl) createFromTemplate(ctx context.Context, threadID int64) error {
	thread, err := s.forumClient.GetThread(ctx, threadID)
	if err != nil {
		return fmt.Errorf("failed to fetch thread: %w", err)
	}

	if !s.matchesTriggerFilters(thread) {
		slog.Debug("thread does not match trigger filters", "threadId", threadID)
		return nil
	}

	// Idempotency: retries and duplicate events are a no-op, not an error.
	if _, err := s.lotteryRepo.FindByThreadID(ctx, threadID); err == nil {
		slog.Warn("lottery already exists for thread", "threadId", threadID)
		return nil
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to check for existing lottery: %w", err)
	}

	post, err := s.forumClient.GetFirstPost(ctx, threadID)
	if err != nil {
		return fmt.Errorf("failed to fetch originating post: %w", err)
	}

	sections := template.Parse(post.Raw)
	lotteryConfig, err := template.Validate(sections, template.Limits{
		MaxWinners:      s.cfg.Lottery.MaxWinners,
		MaxHorizonDays:  s.cfg.Lottery.MaxHorizonDays,
		MinParticipants: s.cfg.Lottery.MinParticipants,
	})
	if err != nil {
		// A malformed template is not the author's explicit request for a
		// lottery: log the rejection and abstain.
		var verr *template.ValidationError
		if errors.As(err, &verr) {
			slog.Warn("lottery template rejected", "threadId", threadID, "kind", verr.Kind, "field", verr.Field, "detail", verr.Detail)
			return nil
		}
		return err
	}

	lottery := &models.Lottery{
		ThreadID:      threadID,
		PostID:        post.ID,
		CreatedByID:   thread.AuthorID,
		CreatedByName: thread.AuthorName,
		Config:        *lotteryConfig,
		Status:        models.LotteryStatusRunning,
	}
	if err := s.lotteryRepo.Create(ctx, lottery); err != nil {
		if errors.Is(err, repositories.ErrDuplicateLottery) {
			slog.Warn("lottery already exists for thread", "threadId", threadID)
			return nil
		}
		return fmt.Errorf("failed to persist lottery: %w", err)
	}

	if err := s.forumClient.AddTag(ctx, threadID, s.cfg.Lottery.RunningTag); err != nil {
		slog.Error("failed to tag thread", "error", err, "threadId", threadID, "tag", s.cfg.Lottery.RunningTag)
	}

	slog.Info("lottery created", "lotteryId", lottery.ID, "threadId", threadID, "name", lotteryConfig.Name, "drawType", lotteryConfig.DrawType)
	return nil
}

// matchesTriggerFilters applies the configured category/tag allow-lists. An
// empty list matches everything.
func (s *CreationServiceImpl) matchesTriggerFilters(thread *forum.Thread) bool {
	categories := s.cfg.Lottery.TriggerCategories
	categoryMatch := len(categories) == 0
	for _, id := range categories {
		if id == thread.CategoryID {
			categoryMatch = true
			break
		}
	}

	tags := s.cfg.Lottery.TriggerTags
	tagMatch := len(tags) == 0
	for _, want := range tags {
		for _, have := range thread.Tags {
			if strings.EqualFold(want, have) {
				tagMatch = true
				break
			}
		}
	}

	return categoryMatch && tagMatch
}
