package mongodb

import (
	"context"
	"time"

	"github.com/forumkit/lottery-draw-backend/internal/models"
	"github.com/forumkit/lottery-draw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LotteryRepository implements the repositories.LotteryRepository interface
type LotteryRepository struct {
	collection *mongo.Collection
}

// NewLotteryRepository creates a new LotteryRepository
func NewLotteryRepository(db *mongo.Database) repositories.LotteryRepository {
	return &LotteryRepository{
		collection: db.Collection("lotteries"),
	}
}

// EnsureIndexes creates the uniqueness constraint and the scheduler's
// secondary lookup paths
func (r *LotteryRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "threadId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "config.drawAt", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "config.drawReplyCount", Value: 1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create creates a new lottery; a concurrent create for the same thread
// surfaces as ErrDuplicateLottery via the unique index
func (r *LotteryRepository) Create(ctx context.Context, lottery *models.Lottery) error {
	lottery.CreatedAt = time.Now()
	lottery.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, lottery)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repositories.ErrDuplicateLottery
		}
		return err
	}
	lottery.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a lottery by ID
func (r *LotteryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Lottery, error) {
	var lottery models.Lottery
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&lottery)
	if err != nil {
		return nil, err
	}
	return &lottery, nil
}

// FindByThreadID finds the lottery owned by a thread
func (r *LotteryRepository) FindByThreadID(ctx context.Context, threadID int64) (*models.Lottery, error) {
	var lottery models.Lottery
	err := r.collection.FindOne(ctx, bson.M{"threadId": threadID}).Decode(&lottery)
	if err != nil {
		return nil, err // Returns mongo.ErrNoDocuments if not found
	}
	return &lottery, nil
}

// FindByStatus finds lotteries by lifecycle status
func (r *LotteryRepository) FindByStatus(ctx context.Context, status models.LotteryStatus) ([]*models.Lottery, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lotteries []*models.Lottery
	if err := cursor.All(ctx, &lotteries); err != nil {
		return nil, err
	}
	if lotteries == nil {
		lotteries = []*models.Lottery{}
	}
	return lotteries, nil
}

// FindAll returns every lottery, newest first
func (r *LotteryRepository) FindAll(ctx context.Context) ([]*models.Lottery, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lotteries []*models.Lottery
	if err := cursor.All(ctx, &lotteries); err != nil {
		return nil, err
	}
	if lotteries == nil {
		lotteries = []*models.Lottery{}
	}
	return lotteries, nil
}

// FindDueCandidates returns running lotteries that may fire now. Time-based
// lotteries are pre-filtered on the elapsed draw time; reply-count lotteries
// always need a live count lookup and are returned unconditionally.
func (r *LotteryRepository) FindDueCandidates(ctx context.Context, now time.Time) ([]*models.Lottery, error) {
	filter := bson.M{
		"status": models.LotteryStatusRunning,
		"$or": bson.A{
			bson.M{"config.drawType": models.DrawTypeByReply},
			bson.M{"config.drawType": models.DrawTypeByTime, "config.drawAt": bson.M{"$lte": now}},
		},
	}
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lotteries []*models.Lottery
	if err := cursor.All(ctx, &lotteries); err != nil {
		return nil, err
	}
	if lotteries == nil {
		lotteries = []*models.Lottery{}
	}
	return lotteries, nil
}

// FinalizeDraw conditionally transitions running -> finished, persisting the
// result payload in the same write. The status filter is the mutual
// exclusion guard: zero modified documents means another finalizer won.
func (r *LotteryRepository) FinalizeDraw(ctx context.Context, id primitive.ObjectID, winners []models.LotteryWinner) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.LotteryStatusRunning},
		bson.M{"$set": bson.M{
			"status":    models.LotteryStatusFinished,
			"winners":   winners,
			"updatedAt": time.Now(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// CancelDraw conditionally transitions running -> cancelled
func (r *LotteryRepository) CancelDraw(ctx context.Context, id primitive.ObjectID, reason string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.LotteryStatusRunning},
		bson.M{"$set": bson.M{
			"status":          models.LotteryStatusCancelled,
			"cancelledReason": reason,
			"updatedAt":       time.Now(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
