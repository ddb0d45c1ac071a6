package services

import (
	"context"
	"fmt"

	"github.com/forumkit/lottery-draw-backend/internal/models"
	"github.com/forumkit/lottery-draw-backend/internal/repositories"
	"github.com/forumkit/lottery-draw-backend/pkg/forum"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time check to ensure LotteryServiceImpl implements LotteryService
var _ LotteryService = (*LotteryServiceImpl)(nil)

// LotteryServiceImpl exposes read access to lottery records
type LotteryServiceImpl struct {
	lotteryRepo repositories.LotteryRepository
	forumClient forum.Client
}

// NewLotteryService creates a new LotteryServiceImpl
func NewLotteryService(lotteryRepo repositories.LotteryRepository, forumClient forum.Client) *LotteryServiceImpl {
	return &LotteryServiceImpl{
		lotteryRepo: lotteryRepo,
		forumClient: forumClient,
	}
}

// GetByID retrieves a lottery by ID
func (s *LotteryServiceImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Lottery, error) {
	return s.lotteryRepo.FindByID(ctx, id)
}

// GetByThreadID retrieves the lottery owned by a thread
func (s *LotteryServiceImpl) GetByThreadID(ctx context.Context, threadID int64) (*models.Lottery, error) {
	return s.lotteryRepo.FindByThreadID(ctx, threadID)
}

// GetByStatus retrieves lotteries by lifecycle status
func (s *LotteryServiceImpl) GetByStatus(ctx context.Context, status models.LotteryStatus) ([]*models.Lottery, error) {
	return s.lotteryRepo.FindByStatus(ctx, status)
}

// GetAll retrieves every lottery
func (s *LotteryServiceImpl) GetAll(ctx context.Context) ([]*models.Lottery, error) {
	return s.lotteryRepo.FindAll(ctx)
}

// ParticipatingUserCount returns the number of distinct qualifying
// participants currently in the lottery's thread
func (s *LotteryServiceImpl) ParticipatingUserCount(ctx context.Context, lottery *models.Lottery) (int, error) {
	replies, err := s.forumClient.GetReplies(ctx, lottery.ThreadID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch replies for thread %d: %w", lottery.ThreadID, err)
	}
	return len(EligibleParticipants(replies, lottery.CreatedByID)), nil
}
