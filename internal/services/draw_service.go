package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/forumkit/lottery-draw-backend/internal/config"
	"github.com/forumkit/lottery-draw-backend/internal/models"
	"github.com/forumkit/lottery-draw-backend/internal/repositories"
	"github.com/forumkit/lottery-draw-backend/pkg/forum"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure DrawServiceImpl implements DrawService
var _ DrawService = (*DrawServiceImpl)(nil)

// DrawServiceImpl performs the draw for a fired lottery: winner selection,
// the atomic state transition, and the best-effort announcement phase.
type DrawServiceImpl struct {
	lotteryRepo      repositories.LotteryRepository
	notificationRepo repositories.NotificationRepository
	forumClient      forum.Client
	cfg              *config.Config
	newRand          func() *rand.Rand
}

// NewDrawService creates a new DrawServiceImpl
func NewDrawService(
	lotteryRepo repositories.LotteryRepository,
	notificationRepo repositories.NotificationRepository,
	forumClient forum.Client,
	cfg *config.Config,
) *DrawServiceImpl {
	return &DrawServiceImpl{
		lotteryRepo:      lotteryRepo,
		notificationRepo: notificationRepo,
		forumClient:      forumClient,
		cfg:              cfg,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// PerformDraw runs one firing of a lottery. The conditional status update is
// the single point of truth for "this lottery has been drawn": everything
// before it may be retried on a later tick, everything after it is
// best-effort and only logged on failure.
func (s *DrawServiceImpl) PerformDraw(ctx context.Context, lottery *models.Lottery) error {
	if lottery.Status != models.LotteryStatusRunning {
		slog.Debug("draw skipped, lottery not running", "lotteryId", lottery.ID, "status", lottery.Status)
		return nil
	}

	replies, err := s.forumClient.GetReplies(ctx, lottery.ThreadID)
	if err != nil {
		return fmt.Errorf("failed to fetch replies for thread %d: %w", lottery.ThreadID, err)
	}

	eligible := EligibleParticipants(replies, lottery.CreatedByID)
	if floor := lottery.Config.MinParticipants; floor > 0 && len(eligible) < floor {
		if lottery.Config.OnInsufficient == models.InsufficientCancel {
			return s.cancel(ctx, lottery, fmt.Sprintf("insufficient participants (%d of %d required)", len(eligible), floor))
		}
		slog.Info("participant floor not met, drawing anyway", "lotteryId", lottery.ID, "eligible", len(eligible), "floor", floor)
	}

	winners := SelectWinners(lottery, replies, s.fallbackPolicy(), s.newRand())
	if len(winners) == 0 {
		// Never post an announcement with no content.
		return s.cancel(ctx, lottery, "no qualifying participants")
	}

	ok, err := s.lotteryRepo.FinalizeDraw(ctx, lottery.ID, winners)
	if err != nil {
		// The record stays running; the next tick retries the whole firing.
		return fmt.Errorf("failed to finalize draw for lottery %s: %w", lottery.ID.Hex(), err)
	}
	if !ok {
		slog.Debug("draw already finalized elsewhere", "lotteryId", lottery.ID)
		return nil
	}

	// The draw is authoritative from here on: failures below are logged for
	// the operator and never retried, to avoid duplicate announcements.
	if err := s.forumClient.PostMessage(ctx, lottery.ThreadID, s.winnerAnnouncement(lottery, winners)); err != nil {
		slog.Error("failed to post winner announcement", "error", err, "lotteryId", lottery.ID, "threadId", lottery.ThreadID)
	}
	s.notifyWinners(ctx, lottery, winners)
	s.swapTag(ctx, lottery.ThreadID, s.cfg.Lottery.RunningTag, s.cfg.Lottery.DrawnTag)
	if s.cfg.Lottery.CloseOnFinish {
		if err := s.forumClient.CloseThread(ctx, lottery.ThreadID); err != nil {
			slog.Error("failed to close thread", "error", err, "lotteryId", lottery.ID, "threadId", lottery.ThreadID)
		}
	}

	slog.Info("lottery drawn", "lotteryId", lottery.ID, "threadId", lottery.ThreadID, "winnerCount", len(winners), "drawnAt", time.Now())
	return nil
}

// cancel transitions the record to cancelled and announces it. Shares the
// conditional-update guard with finalization, so a concurrent finisher wins.
func (s *DrawServiceImpl) cancel(ctx context.Context, lottery *models.Lottery, reason string) error {
	ok, err := s.lotteryRepo.CancelDraw(ctx, lottery.ID, reason)
	if err != nil {
		return fmt.Errorf("failed to cancel lottery %s: %w", lottery.ID.Hex(), err)
	}
	if !ok {
		slog.Debug("cancel skipped, lottery already finalized", "lotteryId", lottery.ID)
		return nil
	}

	message := fmt.Sprintf("The drawing for **%s** has been cancelled: %s.", lottery.Config.Name, reason)
	if err := s.forumClient.PostMessage(ctx, lottery.ThreadID, message); err != nil {
		slog.Error("failed to post cancellation announcement", "error", err, "lotteryId", lottery.ID)
	}
	s.swapTag(ctx, lottery.ThreadID, s.cfg.Lottery.RunningTag, s.cfg.Lottery.CancelledTag)

	slog.Info("lottery cancelled", "lotteryId", lottery.ID, "threadId", lottery.ThreadID, "reason", reason)
	return nil
}

// notifyWinners delivers private notifications and records every attempt, so
// failed deliveries stay visible for a manual re-announce
func (s *DrawServiceImpl) notifyWinners(ctx context.Context, lottery *models.Lottery, winners []models.LotteryWinner) {
	title := fmt.Sprintf("You won the lottery: %s", lottery.Config.Name)
	for _, winner := range winners {
		body := fmt.Sprintf("Congratulations @%s! Your reply #%d won **%s** in thread %d.\n\nPrize: %s",
			winner.Username, winner.PostNumber, lottery.Config.Name, lottery.ThreadID, lottery.Config.Prize)

		notification := &models.Notification{
			LotteryID: lottery.ID,
			ThreadID:  lottery.ThreadID,
			UserID:    winner.UserID,
			Username:  winner.Username,
			Title:     title,
			Body:      body,
			Status:    models.NotificationStatusPending,
		}
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			slog.Error("failed to record winner notification", "error", err, "lotteryId", lottery.ID, "username", winner.Username)
		}

		status, lastError := models.NotificationStatusSent, ""
		if err := s.forumClient.NotifyUser(ctx, winner.Username, title, body); err != nil {
			status, lastError = models.NotificationStatusFailed, err.Error()
			slog.Error("failed to notify winner", "error", err, "lotteryId", lottery.ID, "username", winner.Username)
		}
		if !notification.ID.IsZero() {
			if err := s.notificationRepo.UpdateStatus(ctx, notification.ID, status, lastError); err != nil {
				slog.Error("failed to update notification status", "error", err, "notificationId", notification.ID)
			}
		}
	}
}

func (s *DrawServiceImpl) swapTag(ctx context.Context, threadID int64, from, to string) {
	if err := s.forumClient.RemoveTag(ctx, threadID, from); err != nil {
		slog.Error("failed to remove tag", "error", err, "threadId", threadID, "tag", from)
	}
	if err := s.forumClient.AddTag(ctx, threadID, to); err != nil {
		slog.Error("failed to add tag", "error", err, "threadId", threadID, "tag", to)
	}
}

func (s *DrawServiceImpl) winnerAnnouncement(lottery *models.Lottery, winners []models.LotteryWinner) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The drawing for **%s** is complete!\n\nCongratulations to the winners:\n", lottery.Config.Name)
	for _, winner := range winners {
		fmt.Fprintf(&b, "- @%s (#%d)\n", winner.Username, winner.PostNumber)
	}
	fmt.Fprintf(&b, "\nPrize: %s", lottery.Config.Prize)
	return b.String()
}

func (s *DrawServiceImpl) fallbackPolicy() models.FallbackPolicy {
	if models.FallbackPolicy(s.cfg.Lottery.FallbackPolicy) == models.FallbackNext {
		return models.FallbackNext
	}
	return models.FallbackVoid
}
