package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/forumkit/lottery-draw-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrDuplicateLottery is returned when a lottery already exists for a thread
var ErrDuplicateLottery = errors.New("a lottery already exists for this thread")

// LotteryRepository defines the interface for lottery data operations
type LotteryRepository interface {
	Create(ctx context.Context, lottery *models.Lottery) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Lottery, error)
	FindByThreadID(ctx context.Context, threadID int64) (*models.Lottery, error)
	FindByStatus(ctx context.Context, status models.LotteryStatus) ([]*models.Lottery, error)
	FindAll(ctx context.Context) ([]*models.Lottery, error)
	// FindDueCandidates returns running lotteries worth evaluating at the
	// given instant: every reply-count lottery, plus time lotteries whose
	// draw time has elapsed.
	FindDueCandidates(ctx context.Context, now time.Time) ([]*models.Lottery, error)
	// FinalizeDraw atomically persists the winners and moves the record from
	// running to finished. Returns false when the record was no longer
	// running, i.e. another finalizer won the race.
	FinalizeDraw(ctx context.Context, id primitive.ObjectID, winners []models.LotteryWinner) (bool, error)
	// CancelDraw atomically moves the record from running to cancelled.
	// Returns false when the record was no longer running.
	CancelDraw(ctx context.Context, id primitive.ObjectID, reason string) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

// NotificationRepository defines the interface for winner-notification records
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status, lastError string) error
	FindByLotteryID(ctx context.Context, lotteryID primitive.ObjectID) ([]*models.Notification, error)
	FindByStatus(ctx context.Context, status string) ([]*models.Notification, error)
}

// AdminUserRepository defines the interface for admin user data operations
type AdminUserRepository interface {
	Create(ctx context.Context, adminUser *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error)
}
