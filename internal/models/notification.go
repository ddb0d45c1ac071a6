package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification status values
const (
	NotificationStatusPending = "PENDING"
	NotificationStatusSent    = "SENT"
	NotificationStatusFailed  = "FAILED"
)

// Notification records one private winner-notification delivery attempt.
// Failed deliveries stay queryable so an operator can re-announce by hand;
// the engine itself never retries them.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	LotteryID primitive.ObjectID `bson:"lotteryId" json:"lotteryId"`
	ThreadID  int64              `bson:"threadId" json:"threadId"`
	UserID    int64              `bson:"userId" json:"userId"`
	Username  string             `bson:"username" json:"username"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body" json:"body"`
	Status    string             `bson:"status" json:"status"`
	LastError string             `bson:"lastError,omitempty" json:"lastError,omitempty"`
	SentAt    time.Time          `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
