package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LotteryStatus represents the lifecycle state of a lottery
type LotteryStatus string

const (
	LotteryStatusRunning   LotteryStatus = "running"
	LotteryStatusFinished  LotteryStatus = "finished"
	LotteryStatusCancelled LotteryStatus = "cancelled"
)

// DrawType represents how a lottery decides it is ready to draw
type DrawType string

const (
	DrawTypeByTime  DrawType = "by_time"
	DrawTypeByReply DrawType = "by_reply"
)

// FallbackPolicy controls what happens when a configured floor is missing
// or authored by the lottery creator
type FallbackPolicy string

const (
	FallbackVoid FallbackPolicy = "void"
	FallbackNext FallbackPolicy = "next"
)

// InsufficientPolicy controls the draw when fewer participants than the
// configured floor showed up
type InsufficientPolicy string

const (
	InsufficientDrawAnyway InsufficientPolicy = "draw_anyway"
	InsufficientCancel     InsufficientPolicy = "cancel"
)

// LotteryConfig is the validated, immutable configuration parsed from the
// originating post's template
type LotteryConfig struct {
	Name            string             `bson:"name" json:"name"`
	Prize           string             `bson:"prize" json:"prize"`
	WinnerCount     int                `bson:"winnerCount" json:"winnerCount"`
	DrawType        DrawType           `bson:"drawType" json:"drawType"`
	DrawAt          *time.Time         `bson:"drawAt,omitempty" json:"drawAt,omitempty"`
	DrawReplyCount  int                `bson:"drawReplyCount,omitempty" json:"drawReplyCount,omitempty"`
	SpecificFloors  []int              `bson:"specificFloors,omitempty" json:"specificFloors,omitempty"`
	MinParticipants int                `bson:"minParticipants,omitempty" json:"minParticipants,omitempty"`
	OnInsufficient  InsufficientPolicy `bson:"onInsufficient,omitempty" json:"onInsufficient,omitempty"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	ExtraInfo       string             `bson:"extraInfo,omitempty" json:"extraInfo,omitempty"`
}

// IsFixedPosition reports whether winners are picked by exact floor numbers
// rather than by random sampling
func (c *LotteryConfig) IsFixedPosition() bool {
	return len(c.SpecificFloors) > 0
}

// LotteryWinner is one entry of the result payload
type LotteryWinner struct {
	UserID     int64  `bson:"userId" json:"userId"`
	Username   string `bson:"username" json:"username"`
	PostNumber int    `bson:"postNumber" json:"postNumber"`
}

// Lottery is the persisted lottery record: one per owning thread
type Lottery struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ThreadID        int64              `bson:"threadId" json:"threadId"`
	PostID          int64              `bson:"postId" json:"postId"`
	CreatedByID     int64              `bson:"createdById" json:"createdById"`
	CreatedByName   string             `bson:"createdByName" json:"createdByName"`
	Config          LotteryConfig      `bson:"config" json:"config"`
	Status          LotteryStatus      `bson:"status" json:"status"`
	Winners         []LotteryWinner    `bson:"winners,omitempty" json:"winners,omitempty"`
	CancelledReason string             `bson:"cancelledReason,omitempty" json:"cancelledReason,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
