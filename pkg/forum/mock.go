package forum

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockClient is an in-memory platform used in tests and mock mode
type MockClient struct {
	mu       sync.Mutex
	threads  map[int64]*Thread
	posts    map[int64][]*Post // threadID -> posts ordered by Number
	messages map[int64][]string
	privMsgs map[string][]string // username -> bodies
	failNext map[string]error    // operation name -> forced error
	nextID   int64
}

// Compile-time check to ensure MockClient implements Client
var _ Client = (*MockClient)(nil)

// NewMockClient creates a new MockClient
func NewMockClient() *MockClient {
	return &MockClient{
		threads:  make(map[int64]*Thread),
		posts:    make(map[int64][]*Post),
		messages: make(map[int64][]string),
		privMsgs: make(map[string][]string),
		failNext: make(map[string]error),
		nextID:   1000,
	}
}

// SeedThread registers a thread and its originating post
func (m *MockClient) SeedThread(thread *Thread, firstPostRaw string, createdAt time.Time) *Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threads[thread.ID] = thread
	m.nextID++
	post := &Post{
		ID:         m.nextID,
		ThreadID:   thread.ID,
		Number:     1,
		AuthorID:   thread.AuthorID,
		AuthorName: thread.AuthorName,
		Raw:        firstPostRaw,
		CreatedAt:  createdAt,
	}
	m.posts[thread.ID] = []*Post{post}
	return post
}

// SeedReply appends a reply at the next post number
func (m *MockClient) SeedReply(threadID, authorID int64, authorName, raw string, createdAt time.Time) *Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	post := &Post{
		ID:         m.nextID,
		ThreadID:   threadID,
		Number:     len(m.posts[threadID]) + 1,
		AuthorID:   authorID,
		AuthorName: authorName,
		Raw:        raw,
		CreatedAt:  createdAt,
	}
	m.posts[threadID] = append(m.posts[threadID], post)
	return post
}

// FailWith forces the named operation to return err on its next invocations
func (m *MockClient) FailWith(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext[op] = err
}

func (m *MockClient) forcedErr(op string) error {
	if err, ok := m.failNext[op]; ok {
		return err
	}
	return nil
}

// GetThread fetches a thread by id
func (m *MockClient) GetThread(ctx context.Context, threadID int64) (*Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.forcedErr("GetThread"); err != nil {
		return nil, err
	}
	thread, ok := m.threads[threadID]
	if !ok {
		return nil, ErrNotFound
	}
	return thread, nil
}

// GetFirstPost fetches the originating post of a thread
func (m *MockClient) GetFirstPost(ctx context.Context, threadID int64) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.forcedErr("GetFirstPost"); err != nil {
		return nil, err
	}
	posts := m.posts[threadID]
	if len(posts) == 0 {
		return nil, ErrNotFound
	}
	return posts[0], nil
}

// GetReplies fetches all replies of a thread in chronological order
func (m *MockClient) GetReplies(ctx context.Context, threadID int64) ([]*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.forcedErr("GetReplies"); err != nil {
		return nil, err
	}
	posts := m.posts[threadID]
	var replies []*Post
	for _, p := range posts {
		if p.Number > 1 {
			replies = append(replies, p)
		}
	}
	sort.SliceStable(replies, func(i, j int) bool {
		return replies[i].CreatedAt.Before(replies[j].CreatedAt)
	})
	return replies, nil
}

// ReplyCount returns the reply count, excluding the originating post
func (m *MockClient) ReplyCount(ctx context.Context, threadID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.forcedErr("ReplyCount"); err != nil {
		return 0, err
	}
	posts, ok := m.posts[threadID]
	if !ok {
		return 0, ErrNotFound
	}
	count := len(posts) - 1
	if count < 0 {
		count = 0
	}
	return count, nil
}

// AddTag applies a label to a thread; adding a present tag is a no-op
func (m *MockClient) AddTag(ctx context.Context, threadID int64, tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.forcedErr("AddTag"); err != nil {
		return err
	}
	thread, ok := m.threads[threadID]
	if !ok {
		return ErrNotFound
	}
	for _, t := range thread.Tags {
		if t == tag {
			return nil
		}
	}
	thread.Tags = append(thread.Tags, tag)
	return nil
}

// RemoveTag removes a label from a thread; removing an absent tag is a no-op
func (m *MockClient) RemoveTag(ctx context.Context, threadID int64, tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.forcedErr("RemoveTag"); err != nil {
		return err
	}
	thread, ok := m.threads[threadID]
	if !ok {
		return ErrNotFound
	}
	var tags []string
	for _, t := range thread.Tags {
		if t != tag {
			tags = append(tags, t)
		}
	}
	thread.Tags = tags
	return nil
}

// PostMessage posts a system-authored public reply into a thread
func (m *MockClient) PostMessage(ctx context.Context, threadID int64, raw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.forcedErr("PostMessage"); err != nil {
		return err
	}
	if _, ok := m.threads[threadID]; !ok {
		return ErrNotFound
	}
	m.messages[threadID] = append(m.messages[threadID], raw)
	return nil
}

// NotifyUser delivers a private message to one user
func (m *MockClient) NotifyUser(ctx context.Context, username, title, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.forcedErr("NotifyUser"); err != nil {
		return err
	}
	m.privMsgs[username] = append(m.privMsgs[username], title+"\n"+body)
	return nil
}

// CloseThread locks a thread against further contributions
func (m *MockClient) CloseThread(ctx context.Context, threadID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.forcedErr("CloseThread"); err != nil {
		return err
	}
	thread, ok := m.threads[threadID]
	if !ok {
		return ErrNotFound
	}
	thread.Closed = true
	return nil
}

// Messages returns the public messages posted into a thread
func (m *MockClient) Messages(threadID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages[threadID]...)
}

// PrivateMessages returns the private messages delivered to a user
func (m *MockClient) PrivateMessages(username string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.privMsgs[username]...)
}

// Tags returns a thread's current tags
func (m *MockClient) Tags(threadID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if thread, ok := m.threads[threadID]; ok {
		return append([]string(nil), thread.Tags...)
	}
	return nil
}
