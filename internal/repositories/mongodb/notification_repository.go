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

// NotificationRepository implements the repositories.NotificationRepository interface
type NotificationRepository struct {
	collection *mongo.Collection
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *mongo.Database) repositories.NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

// Create creates a new notification record
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	notification.CreatedAt = time.Now()
	notification.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, notification)
	if err != nil {
		return err
	}
	notification.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// UpdateStatus updates a notification's delivery status
func (r *NotificationRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status, lastError string) error {
	update := bson.M{
		"status":    status,
		"lastError": lastError,
		"updatedAt": time.Now(),
	}
	if status == models.NotificationStatusSent {
		update["sentAt"] = time.Now()
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

// FindByLotteryID finds all notification records for a lottery
func (r *NotificationRepository) FindByLotteryID(ctx context.Context, lotteryID primitive.ObjectID) ([]*models.Notification, error) {
	return r.find(ctx, bson.M{"lotteryId": lotteryID})
}

// FindByStatus finds notification records by delivery status
func (r *NotificationRepository) FindByStatus(ctx context.Context, status string) ([]*models.Notification, error) {
	return r.find(ctx, bson.M{"status": status})
}

func (r *NotificationRepository) find(ctx context.Context, filter bson.M) ([]*models.Notification, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []*models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	return notifications, nil
}
