package forum

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a thread or post does not exist on the platform
var ErrNotFound = errors.New("forum: not found")

// Thread is a discussion topic hosting the originating post and replies
type Thread struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	CategoryID int      `json:"categoryId"`
	Tags       []string `json:"tags"`
	AuthorID   int64    `json:"authorId"`
	AuthorName string   `json:"authorName"`
	Closed     bool     `json:"closed"`
}

// Post is a single contribution within a thread. Number 1 is the
// originating post; replies start at 2.
type Post struct {
	ID         int64     `json:"id"`
	ThreadID   int64     `json:"threadId"`
	Number     int       `json:"number"`
	AuthorID   int64     `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Raw        string    `json:"raw"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Client is the discussion-platform collaborator. The lottery engine only
// reads thread/post data and performs the handful of side effects below;
// everything else about the platform is out of scope.
type Client interface {
	// GetThread fetches a thread by id.
	GetThread(ctx context.Context, threadID int64) (*Thread, error)
	// GetFirstPost fetches the originating post of a thread, raw text included.
	GetFirstPost(ctx context.Context, threadID int64) (*Post, error)
	// GetReplies fetches all posts with Number > 1 in chronological order.
	GetReplies(ctx context.Context, threadID int64) ([]*Post, error)
	// ReplyCount returns the number of posts excluding the originating post.
	ReplyCount(ctx context.Context, threadID int64) (int, error)

	// AddTag applies a label to a thread. Adding an already-present tag is a no-op.
	AddTag(ctx context.Context, threadID int64, tag string) error
	// RemoveTag removes a label from a thread. Removing an absent tag is a no-op.
	RemoveTag(ctx context.Context, threadID int64, tag string) error
	// PostMessage posts a system-authored public reply into a thread.
	PostMessage(ctx context.Context, threadID int64, raw string) error
	// NotifyUser delivers a private message to one user.
	NotifyUser(ctx context.Context, username, title, body string) error
	// CloseThread locks a thread against further contributions.
	CloseThread(ctx context.Context, threadID int64) error
}
