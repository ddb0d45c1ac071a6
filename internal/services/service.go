package services

import (
	"context"

	"github.com/forumkit/lottery-draw-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreationService turns qualifying new threads into running lottery records
type CreationService interface {
	// HandleThreadCreated inspects a freshly created thread and, when its
	// originating post carries a valid lottery template, persists a running
	// lottery. Malformed templates are a silent no-op; nothing propagates.
	HandleThreadCreated(ctx context.Context, threadID int64)
}

// DrawService performs the draw for a fired lottery
type DrawService interface {
	PerformDraw(ctx context.Context, lottery *models.Lottery) error
}

// LotteryService exposes read access to lottery records
type LotteryService interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Lottery, error)
	GetByThreadID(ctx context.Context, threadID int64) (*models.Lottery, error)
	GetByStatus(ctx context.Context, status models.LotteryStatus) ([]*models.Lottery, error)
	GetAll(ctx context.Context) ([]*models.Lottery, error)
	// ParticipatingUserCount returns the number of distinct qualifying
	// participants currently in the lottery's thread.
	ParticipatingUserCount(ctx context.Context, lottery *models.Lottery) (int, error)
}

// AuthService authenticates operators of the protected API
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error) // returns a signed JWT
}
