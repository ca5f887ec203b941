package mocks

import (
	"context"
	"sort"
	"strings"

	"github.com/project-board-api/internal/models"
	"github.com/project-board-api/internal/repository"
)

var (
	_ repository.UserAccountRepository = (*MockUserAccountRepository)(nil)
	_ repository.ArticleRepository     = (*MockArticleRepository)(nil)
	_ repository.HashtagRepository     = (*MockHashtagRepository)(nil)
	_ repository.CommentRepository     = (*MockCommentRepository)(nil)
)

// MockUserAccountRepository is a mock implementation of UserAccountRepository
type MockUserAccountRepository struct {
	store *MockStore
}

func (m *MockUserAccountRepository) Create(ctx context.Context, user *models.UserAccount) error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("User.Create"); err != nil {
		return err
	}
	if _, exists := s.Users[user.UserID]; exists {
		return models.ErrConflict
	}
	if user.Email != "" {
		for _, u := range s.Users {
			if u.Email == user.Email {
				return models.ErrConflict
			}
		}
	}
	cp := *user
	s.Users[user.UserID] = &cp
	s.Writes++
	return nil
}

func (m *MockUserAccountRepository) GetByID(ctx context.Context, userID string) (*models.UserAccount, error) {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("User.GetByID"); err != nil {
		return nil, err
	}
	u, ok := s.Users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserAccountRepository) Reference(userID string) *models.UserAccount {
	return &models.UserAccount{UserID: userID}
}

func (m *MockUserAccountRepository) Count(ctx context.Context) (int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return len(m.store.Users), nil
}

func (m *MockUserAccountRepository) StreamAll(ctx context.Context, callback func(*models.UserAccount) error) error {
	m.store.mu.Lock()
	users := make([]*models.UserAccount, 0, len(m.store.Users))
	for _, u := range m.store.Users {
		cp := *u
		users = append(users, &cp)
	}
	m.store.mu.Unlock()

	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	for _, u := range users {
		if err := callback(u); err != nil {
			return err
		}
	}
	return nil
}

// MockArticleRepository is a mock implementation of ArticleRepository
type MockArticleRepository struct {
	store *MockStore
}

// load returns a detached copy with owner and hashtags; caller holds the lock
func (m *MockArticleRepository) load(stored *models.Article) *models.Article {
	s := m.store
	cp := *stored
	cp.ClearHashtags()
	if u, ok := s.Users[cp.UserID]; ok {
		uc := *u
		cp.User = &uc
	}
	tags := make([]*models.Hashtag, 0, len(s.ArticleHashtags[cp.ID]))
	for id := range s.ArticleHashtags[cp.ID] {
		if h, ok := s.Hashtags[id]; ok {
			hc := *h
			tags = append(tags, &hc)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].HashtagName < tags[j].HashtagName })
	cp.AddHashtags(tags)
	return &cp
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Article.Create"); err != nil {
		return err
	}
	if _, ok := s.Users[article.UserID]; !ok {
		return models.ErrNotFound
	}
	s.nextArticleID++
	article.ID = s.nextArticleID
	cp := *article
	cp.User = nil
	cp.ClearHashtags()
	s.Articles[article.ID] = &cp
	s.Writes++
	return nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Article.Update"); err != nil {
		return err
	}
	stored, ok := s.Articles[article.ID]
	if !ok {
		return models.ErrNotFound
	}
	stored.Title = article.Title
	stored.Content = article.Content
	stored.ModifiedAt = article.ModifiedAt
	stored.ModifiedBy = article.ModifiedBy
	s.Writes++
	return nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id int64) error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Article.Delete"); err != nil {
		return err
	}
	if _, ok := s.Articles[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.Articles, id)
	delete(s.ArticleHashtags, id)
	for cid, c := range s.Comments {
		if c.ArticleID == id {
			delete(s.Comments, cid)
		}
	}
	s.Writes++
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Article.GetByID"); err != nil {
		return nil, err
	}
	stored, ok := s.Articles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return m.load(stored), nil
}

func (m *MockArticleRepository) Reference(id int64) *models.Article {
	return &models.Article{ID: id}
}

func (m *MockArticleRepository) Search(ctx context.Context, searchType models.SearchType, keyword string, p models.Pageable) (*models.Page[*models.Article], error) {
	kw := strings.ToLower(keyword)
	return m.page(p, func(a *models.Article) bool {
		if keyword == "" {
			return true
		}
		switch searchType {
		case models.SearchTypeTitle:
			return strings.Contains(strings.ToLower(a.Title), kw)
		case models.SearchTypeContent:
			return strings.Contains(strings.ToLower(a.Content), kw)
		case models.SearchTypeID:
			return strings.Contains(strings.ToLower(a.UserID), kw)
		case models.SearchTypeNickname:
			return a.User != nil && strings.Contains(strings.ToLower(a.User.Nickname), kw)
		}
		return true
	})
}

func (m *MockArticleRepository) SearchByHashtagNames(ctx context.Context, names []string, p models.Pageable) (*models.Page[*models.Article], error) {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	return m.page(p, func(a *models.Article) bool {
		for _, n := range a.HashtagNames() {
			if _, ok := wanted[n]; ok {
				return true
			}
		}
		return false
	})
}

func (m *MockArticleRepository) page(p models.Pageable, match func(*models.Article) bool) (*models.Page[*models.Article], error) {
	p = p.Normalize()
	s := m.store
	s.mu.Lock()
	var all []*models.Article
	for _, stored := range s.Articles {
		a := m.load(stored)
		if match(a) {
			all = append(all, a)
		}
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		var cmp int
		switch p.Sort {
		case "title":
			cmp = strings.Compare(a.Title, b.Title)
		case "userId":
			cmp = strings.Compare(a.UserID, b.UserID)
		default:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		}
		if cmp == 0 {
			switch {
			case a.ID < b.ID:
				cmp = -1
			case a.ID > b.ID:
				cmp = 1
			}
		}
		if p.Ascending {
			return cmp < 0
		}
		return cmp > 0
	})

	total := int64(len(all))
	start := p.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + p.Size
	if end > len(all) {
		end = len(all)
	}
	return models.NewPage(all[start:end], p, total), nil
}

func (m *MockArticleRepository) AttachHashtags(ctx context.Context, articleID int64, hashtagIDs []int64) error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Article.AttachHashtags"); err != nil {
		return err
	}
	if len(hashtagIDs) == 0 {
		return nil
	}
	if _, ok := s.Articles[articleID]; !ok {
		return models.ErrNotFound
	}
	set, ok := s.ArticleHashtags[articleID]
	if !ok {
		set = make(map[int64]struct{})
		s.ArticleHashtags[articleID] = set
	}
	for _, id := range hashtagIDs {
		if _, ok := s.Hashtags[id]; !ok {
			return models.ErrNotFound
		}
		set[id] = struct{}{}
	}
	s.Writes++
	return nil
}

func (m *MockArticleRepository) ClearHashtags(ctx context.Context, articleID int64) error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Article.ClearHashtags"); err != nil {
		return err
	}
	delete(s.ArticleHashtags, articleID)
	s.Writes++
	return nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return len(m.store.Articles), nil
}

func (m *MockArticleRepository) StreamAll(ctx context.Context, callback func(*models.Article) error) error {
	m.store.mu.Lock()
	articles := make([]*models.Article, 0, len(m.store.Articles))
	for _, stored := range m.store.Articles {
		articles = append(articles, m.load(stored))
	}
	m.store.mu.Unlock()

	sort.Slice(articles, func(i, j int) bool { return articles[i].ID < articles[j].ID })
	for _, a := range articles {
		if err := callback(a); err != nil {
			return err
		}
	}
	return nil
}

// MockHashtagRepository is a mock implementation of HashtagRepository
type MockHashtagRepository struct {
	store *MockStore
}

func (m *MockHashtagRepository) Create(ctx context.Context, h *models.Hashtag) error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Hashtag.Create"); err != nil {
		return err
	}
	for _, existing := range s.Hashtags {
		if existing.HashtagName == h.HashtagName {
			*h = *existing
			return nil
		}
	}
	s.nextHashtagID++
	h.ID = s.nextHashtagID
	cp := *h
	s.Hashtags[h.ID] = &cp
	s.Writes++
	return nil
}

func (m *MockHashtagRepository) GetByID(ctx context.Context, id int64) (*models.Hashtag, error) {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.Hashtags[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (m *MockHashtagRepository) FindByName(ctx context.Context, name string) (*models.Hashtag, error) {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.Hashtags {
		if h.HashtagName == name {
			cp := *h
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *MockHashtagRepository) FindByNames(ctx context.Context, names []string) ([]*models.Hashtag, error) {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Hashtag.FindByNames"); err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	found := []*models.Hashtag{}
	for _, h := range s.Hashtags {
		if _, ok := wanted[h.HashtagName]; ok {
			cp := *h
			found = append(found, &cp)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].HashtagName < found[j].HashtagName })
	return found, nil
}

func (m *MockHashtagRepository) FindAllNames(ctx context.Context) ([]string, error) {
	return m.store.HashtagNames(), nil
}

func (m *MockHashtagRepository) DeleteIfOrphaned(ctx context.Context, id int64) (bool, error) {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Hashtag.DeleteIfOrphaned"); err != nil {
		return false, err
	}
	if _, ok := s.Hashtags[id]; !ok {
		return false, nil
	}
	for _, set := range s.ArticleHashtags {
		if _, ok := set[id]; ok {
			return false, nil
		}
	}
	delete(s.Hashtags, id)
	s.Writes++
	return true, nil
}

func (m *MockHashtagRepository) Count(ctx context.Context) (int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return len(m.store.Hashtags), nil
}

func (m *MockHashtagRepository) StreamAll(ctx context.Context, callback func(*models.Hashtag) error) error {
	m.store.mu.Lock()
	hashtags := make([]*models.Hashtag, 0, len(m.store.Hashtags))
	for _, h := range m.store.Hashtags {
		cp := *h
		hashtags = append(hashtags, &cp)
	}
	m.store.mu.Unlock()

	sort.Slice(hashtags, func(i, j int) bool { return hashtags[i].HashtagName < hashtags[j].HashtagName })
	for _, h := range hashtags {
		if err := callback(h); err != nil {
			return err
		}
	}
	return nil
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	store *MockStore
}

// load returns a detached copy with its author; caller holds the lock
func (m *MockCommentRepository) load(stored *models.Comment) *models.Comment {
	cp := *stored
	cp.ChildComments = nil
	if u, ok := m.store.Users[cp.UserID]; ok {
		uc := *u
		cp.User = &uc
	}
	return &cp
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Comment.Create"); err != nil {
		return err
	}
	if _, ok := s.Articles[comment.ArticleID]; !ok {
		return models.ErrNotFound
	}
	if _, ok := s.Users[comment.UserID]; !ok {
		return models.ErrNotFound
	}
	if comment.ParentCommentID != nil {
		if _, ok := s.Comments[*comment.ParentCommentID]; !ok {
			return models.ErrNotFound
		}
	}
	s.nextCommentID++
	comment.ID = s.nextCommentID
	cp := *comment
	cp.User = nil
	cp.ChildComments = nil
	s.Comments[comment.ID] = &cp
	s.Writes++
	return nil
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Comment.Update"); err != nil {
		return err
	}
	stored, ok := s.Comments[comment.ID]
	if !ok {
		return models.ErrNotFound
	}
	stored.Content = comment.Content
	stored.ModifiedAt = comment.ModifiedAt
	stored.ModifiedBy = comment.ModifiedBy
	s.Writes++
	return nil
}

func (m *MockCommentRepository) Delete(ctx context.Context, id int64) error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Comment.Delete"); err != nil {
		return err
	}
	if _, ok := s.Comments[id]; !ok {
		return models.ErrNotFound
	}
	m.deleteCascade(id)
	s.Writes++
	return nil
}

func (m *MockCommentRepository) deleteCascade(id int64) {
	delete(m.store.Comments, id)
	for cid, c := range m.store.Comments {
		if c.ParentCommentID != nil && *c.ParentCommentID == id {
			m.deleteCascade(cid)
		}
	}
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Comment.GetByID"); err != nil {
		return nil, err
	}
	stored, ok := s.Comments[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return m.load(stored), nil
}

func (m *MockCommentRepository) Reference(id int64) *models.Comment {
	return &models.Comment{ID: id}
}

func (m *MockCommentRepository) FindByArticleID(ctx context.Context, articleID int64) ([]*models.Comment, error) {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	comments := []*models.Comment{}
	for _, c := range s.Comments {
		if c.ArticleID == articleID {
			comments = append(comments, m.load(c))
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return len(m.store.Comments), nil
}

func (m *MockCommentRepository) StreamAll(ctx context.Context, callback func(*models.Comment) error) error {
	m.store.mu.Lock()
	comments := make([]*models.Comment, 0, len(m.store.Comments))
	for _, c := range m.store.Comments {
		comments = append(comments, m.load(c))
	}
	m.store.mu.Unlock()

	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	for _, c := range comments {
		if err := callback(c); err != nil {
			return err
		}
	}
	return nil
}
