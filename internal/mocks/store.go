package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/project-board-api/internal/models"
	"github.com/project-board-api/internal/repository"
)

// MockStore is an in-memory database shared by the mock repositories. It
// emulates the foreign keys and cascades of the real schema and rolls back
// when a transaction function fails.
type MockStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	Users           map[string]*models.UserAccount
	Articles        map[int64]*models.Article
	Hashtags        map[int64]*models.Hashtag
	ArticleHashtags map[int64]map[int64]struct{}
	Comments        map[int64]*models.Comment

	// FailOn injects an error into the named operation, e.g. "Article.Create"
	FailOn map[string]error
	// Writes counts successful mutating operations
	Writes int
	// TxCount counts started transactions
	TxCount int

	nextArticleID int64
	nextHashtagID int64
	nextCommentID int64
}

// NewMockStore creates an empty store
func NewMockStore() *MockStore {
	return &MockStore{
		Users:           make(map[string]*models.UserAccount),
		Articles:        make(map[int64]*models.Article),
		Hashtags:        make(map[int64]*models.Hashtag),
		ArticleHashtags: make(map[int64]map[int64]struct{}),
		Comments:        make(map[int64]*models.Comment),
		FailOn:          make(map[string]error),
	}
}

// NewRepositories returns repositories backed by a fresh store
func NewRepositories() (*repository.Repositories, *MockStore) {
	store := NewMockStore()
	return store.Repositories(), store
}

// Repositories returns repositories backed by this store
func (s *MockStore) Repositories() *repository.Repositories {
	repos := s.bound()
	repos.RunInTx = s.runInTx
	return repos
}

func (s *MockStore) bound() *repository.Repositories {
	return &repository.Repositories{
		User:    &MockUserAccountRepository{store: s},
		Article: &MockArticleRepository{store: s},
		Hashtag: &MockHashtagRepository{store: s},
		Comment: &MockCommentRepository{store: s},
	}
}

func (s *MockStore) runInTx(ctx context.Context, fn func(*repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.TxCount++
	snap := s.snapshot()
	s.mu.Unlock()

	if err := fn(s.bound()); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MockStore) fail(op string) error {
	return s.FailOn[op]
}

type storeSnapshot struct {
	users           map[string]models.UserAccount
	articles        map[int64]models.Article
	hashtags        map[int64]models.Hashtag
	articleHashtags map[int64][]int64
	comments        map[int64]models.Comment
	writes          int
	next            [3]int64
}

func (s *MockStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		users:           make(map[string]models.UserAccount, len(s.Users)),
		articles:        make(map[int64]models.Article, len(s.Articles)),
		hashtags:        make(map[int64]models.Hashtag, len(s.Hashtags)),
		articleHashtags: make(map[int64][]int64, len(s.ArticleHashtags)),
		comments:        make(map[int64]models.Comment, len(s.Comments)),
		writes:          s.Writes,
		next:            [3]int64{s.nextArticleID, s.nextHashtagID, s.nextCommentID},
	}
	for k, v := range s.Users {
		snap.users[k] = *v
	}
	for k, v := range s.Articles {
		snap.articles[k] = *v
	}
	for k, v := range s.Hashtags {
		snap.hashtags[k] = *v
	}
	for k, set := range s.ArticleHashtags {
		for id := range set {
			snap.articleHashtags[k] = append(snap.articleHashtags[k], id)
		}
	}
	for k, v := range s.Comments {
		snap.comments[k] = *v
	}
	return snap
}

func (s *MockStore) restore(snap storeSnapshot) {
	s.Users = make(map[string]*models.UserAccount, len(snap.users))
	for k, v := range snap.users {
		v := v
		s.Users[k] = &v
	}
	s.Articles = make(map[int64]*models.Article, len(snap.articles))
	for k, v := range snap.articles {
		v := v
		s.Articles[k] = &v
	}
	s.Hashtags = make(map[int64]*models.Hashtag, len(snap.hashtags))
	for k, v := range snap.hashtags {
		v := v
		s.Hashtags[k] = &v
	}
	s.ArticleHashtags = make(map[int64]map[int64]struct{}, len(snap.articleHashtags))
	for k, ids := range snap.articleHashtags {
		set := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		s.ArticleHashtags[k] = set
	}
	s.Comments = make(map[int64]*models.Comment, len(snap.comments))
	for k, v := range snap.comments {
		v := v
		s.Comments[k] = &v
	}
	s.Writes = snap.writes
	s.nextArticleID, s.nextHashtagID, s.nextCommentID = snap.next[0], snap.next[1], snap.next[2]
}

// HashtagNames returns the names of all stored hashtags, sorted
func (s *MockStore) HashtagNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.Hashtags))
	for _, h := range s.Hashtags {
		names = append(names, h.HashtagName)
	}
	sort.Strings(names)
	return names
}

// ArticleHashtagNames returns the names linked to an article, sorted
func (s *MockStore) ArticleHashtagNames(articleID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := []string{}
	for id := range s.ArticleHashtags[articleID] {
		if h, ok := s.Hashtags[id]; ok {
			names = append(names, h.HashtagName)
		}
	}
	sort.Strings(names)
	return names
}

// HashtagID returns the ID of the named hashtag, or 0
func (s *MockStore) HashtagID(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, h := range s.Hashtags {
		if h.HashtagName == name {
			return id
		}
	}
	return 0
}

// Seed helpers write directly to the store without counting writes.

// SeedUser stores a user account
func (s *MockStore) SeedUser(u *models.UserAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.Users[u.UserID] = &cp
}

// SeedComment stores a comment as is and returns its ID
func (s *MockStore) SeedComment(c *models.Comment) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		s.nextCommentID++
		c.ID = s.nextCommentID
	} else if c.ID > s.nextCommentID {
		s.nextCommentID = c.ID
	}
	cp := *c
	cp.User = nil
	cp.ChildComments = nil
	s.Comments[c.ID] = &cp
	return c.ID
}
