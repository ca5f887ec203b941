package models

import (
	"time"
)

const (
	MaxTitleLength   = 255
	MaxContentLength = 10000
)

// Article represents an article on the board
type Article struct {
	ID      int64        `json:"id" db:"id"`
	UserID  string       `json:"userId" db:"user_id"`
	User    *UserAccount `json:"user,omitempty" db:"-"`
	Title   string       `json:"title" db:"title"`
	Content string       `json:"content" db:"content"`
	AuditFields

	// hashtags keeps insertion order; membership follows Hashtag.SameAs
	hashtags []*Hashtag
}

// NewArticle creates an article owned by user. The owner cannot be changed
// afterwards: repositories never write user_id on update.
func NewArticle(user *UserAccount, title, content string) *Article {
	a := &Article{
		UserID:  user.UserID,
		User:    user,
		Title:   title,
		Content: content,
	}
	a.Stamp(user.UserID, time.Now())
	return a
}

// Hashtags returns the attached hashtags in insertion order
func (a *Article) Hashtags() []*Hashtag {
	return a.hashtags
}

// AddHashtag attaches h unless an equal hashtag is already attached.
func (a *Article) AddHashtag(h *Hashtag) {
	if h == nil {
		return
	}
	for _, existing := range a.hashtags {
		if existing.SameAs(h) {
			return
		}
	}
	a.hashtags = append(a.hashtags, h)
}

// AddHashtags attaches every hashtag in hs.
func (a *Article) AddHashtags(hs []*Hashtag) {
	for _, h := range hs {
		a.AddHashtag(h)
	}
}

// ClearHashtags detaches all hashtags in memory.
func (a *Article) ClearHashtags() {
	a.hashtags = nil
}

// HashtagIDs returns the IDs of persisted attached hashtags.
func (a *Article) HashtagIDs() []int64 {
	ids := make([]int64, 0, len(a.hashtags))
	for _, h := range a.hashtags {
		if h.IsPersisted() {
			ids = append(ids, h.ID)
		}
	}
	return ids
}

// HashtagNames returns the names of the attached hashtags in insertion order.
func (a *Article) HashtagNames() []string {
	names := make([]string, 0, len(a.hashtags))
	for _, h := range a.hashtags {
		names = append(names, h.HashtagName)
	}
	return names
}

// IsOwnedBy reports whether userID owns the article
func (a *Article) IsOwnedBy(userID string) bool {
	return a.UserID == userID
}

// ArticleDto is the presentation shape of an article
type ArticleDto struct {
	ID           int64          `json:"id"`
	User         UserAccountDto `json:"user"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	HashtagNames []string       `json:"hashtags"`
	AuditFields
}

// ArticleDtoFrom converts a loaded article.
func ArticleDtoFrom(a *Article) ArticleDto {
	user := UserAccountDtoFrom(a.User)
	if user.UserID == "" {
		user.UserID = a.UserID
	}
	return ArticleDto{
		ID:           a.ID,
		User:         user,
		Title:        a.Title,
		Content:      a.Content,
		HashtagNames: a.HashtagNames(),
		AuditFields:  a.AuditFields,
	}
}

// ArticleRequest carries user input for creating or updating an article.
// The hashtags are derived from Content; there is no separate tag field.
type ArticleRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required,max=10000"`
}

// ArticleUpdateRequest allows partial updates; empty fields are left unchanged.
type ArticleUpdateRequest struct {
	Title   string `json:"title" validate:"omitempty,max=255"`
	Content string `json:"content" validate:"omitempty,max=10000"`
}

// ArticleWithCommentsResponse is the detail view of an article
type ArticleWithCommentsResponse struct {
	ID           int64              `json:"id"`
	Title        string             `json:"title"`
	Content      string             `json:"content"`
	HashtagNames []string           `json:"hashtags"`
	CreatedAt    time.Time          `json:"createdAt"`
	Email        string             `json:"email"`
	Nickname     string             `json:"nickname"`
	UserID       string             `json:"userId"`
	Comments     []*CommentResponse `json:"articleComments"`
}
