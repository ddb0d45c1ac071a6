package services

import (
	"context"
	"sync"
	"time"

	"github.com/forumkit/lottery-draw-backend/internal/config"
	"github.com/forumkit/lottery-draw-backend/internal/models"
	"github.com/forumkit/lottery-draw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// fakeLotteryRepo is an in-memory LotteryRepository with the same
// conditional-update semantics as the mongo implementation: finalize and
// cancel succeed only against a running record.
type fakeLotteryRepo struct {
	mu        sync.Mutex
	lotteries map[primitive.ObjectID]*models.Lottery
	createErr error
}

var _ repositories.LotteryRepository = (*fakeLotteryRepo)(nil)

func newFakeLotteryRepo() *fakeLotteryRepo {
	return &fakeLotteryRepo{lotteries: make(map[primitive.ObjectID]*models.Lottery)}
}

func (r *fakeLotteryRepo) Create(ctx context.Context, lottery *models.Lottery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.lotteries {
		if existing.ThreadID == lottery.ThreadID {
			return repositories.ErrDuplicateLottery
		}
	}
	lottery.ID = primitive.NewObjectID()
	lottery.CreatedAt = time.Now()
	lottery.UpdatedAt = lottery.CreatedAt
	copied := *lottery
	r.lotteries[lottery.ID] = &copied
	return nil
}

func (r *fakeLotteryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Lottery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lottery, ok := r.lotteries[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *lottery
	return &copied, nil
}

func (r *fakeLotteryRepo) FindByThreadID(ctx context.Context, threadID int64) (*models.Lottery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, lottery := range r.lotteries {
		if lottery.ThreadID == threadID {
			copied := *lottery
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeLotteryRepo) FindByStatus(ctx context.Context, status models.LotteryStatus) ([]*models.Lottery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Lottery
	for _, lottery := range r.lotteries {
		if lottery.Status == status {
			copied := *lottery
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakeLotteryRepo) FindAll(ctx context.Context) ([]*models.Lottery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Lottery
	for _, lottery := range r.lotteries {
		copied := *lottery
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeLotteryRepo) FindDueCandidates(ctx context.Context, now time.Time) ([]*models.Lottery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Lottery
	for _, lottery := range r.lotteries {
		if lottery.Status != models.LotteryStatusRunning {
			continue
		}
		switch lottery.Config.DrawType {
		case models.DrawTypeByReply:
			copied := *lottery
			result = append(result, &copied)
		case models.DrawTypeByTime:
			if lottery.Config.DrawAt != nil && !now.Before(*lottery.Config.DrawAt) {
				copied := *lottery
				result = append(result, &copied)
			}
		}
	}
	return result, nil
}

func (r *fakeLotteryRepo) FinalizeDraw(ctx context.Context, id primitive.ObjectID, winners []models.LotteryWinner) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lottery, ok := r.lotteries[id]
	if !ok || lottery.Status != models.LotteryStatusRunning {
		return false, nil
	}
	lottery.Status = models.LotteryStatusFinished
	lottery.Winners = winners
	lottery.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeLotteryRepo) CancelDraw(ctx context.Context, id primitive.ObjectID, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lottery, ok := r.lotteries[id]
	if !ok || lottery.Status != models.LotteryStatusRunning {
		return false, nil
	}
	lottery.Status = models.LotteryStatusCancelled
	lottery.CancelledReason = reason
	lottery.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeLotteryRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *fakeLotteryRepo) insert(lottery *models.Lottery) *models.Lottery {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lottery.ID.IsZero() {
		lottery.ID = primitive.NewObjectID()
	}
	copied := *lottery
	r.lotteries[lottery.ID] = &copied
	return lottery
}

// fakeNotificationRepo records notification writes in memory
type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*models.Notification
}

var _ repositories.NotificationRepository = (*fakeNotificationRepo)(nil)

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.ID = primitive.NewObjectID()
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *fakeNotificationRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			n.Status = status
			n.LastError = lastError
		}
	}
	return nil
}

func (r *fakeNotificationRepo) FindByLotteryID(ctx context.Context, lotteryID primitive.ObjectID) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Notification
	for _, n := range r.notifications {
		if n.LotteryID == lotteryID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) FindByStatus(ctx context.Context, status string) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Notification
	for _, n := range r.notifications {
		if n.Status == status {
			result = append(result, n)
		}
	}
	return result, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Lottery: config.LotteryConfig{
			MaxWinners:     50,
			MaxHorizonDays: 90,
			FallbackPolicy: "void",
			RunningTag:     "lottery-running",
			DrawnTag:       "lottery-drawn",
			CancelledTag:   "lottery-cancelled",
			CloseOnFinish:  true,
		},
	}
}
