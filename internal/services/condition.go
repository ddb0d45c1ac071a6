package services

import (
	"time"

	"github.com/forumkit/lottery-draw-backend/internal/models"
)

// ShouldDraw reports whether a lottery's trigger condition has fired. It is
// a pure predicate: callers restrict it to running records and may evaluate
// it as often as they like. The reply count excludes the originating post.
func ShouldDraw(lottery *models.Lottery, now time.Time, replyCount int) bool {
	switch lottery.Config.DrawType {
	case models.DrawTypeByTime:
		return lottery.Config.DrawAt != nil && !now.Before(*lottery.Config.DrawAt)
	case models.DrawTypeByReply:
		return lottery.Config.DrawReplyCount > 0 && replyCount >= lottery.Config.DrawReplyCount
	default:
		return false
	}
}
