package models

import (
	"time"
)

// MaxCommentLength is the maximum allowed characters in a comment body
const MaxCommentLength = 500

// Comment represents a comment on an article. A nil ParentCommentID marks a
// top-level comment.
type Comment struct {
	ID              int64        `json:"id" db:"id"`
	ArticleID       int64        `json:"articleId" db:"article_id"`
	UserID          string       `json:"userId" db:"user_id"`
	User            *UserAccount `json:"user,omitempty" db:"-"`
	ParentCommentID *int64       `json:"parentCommentId,omitempty" db:"parent_comment_id"`
	Content         string       `json:"content" db:"content"`
	AuditFields

	// ChildComments is derived from parent_comment_id and never stored
	ChildComments []*Comment `json:"-" db:"-"`
}

// NewComment creates a top-level comment on article by user.
func NewComment(article *Article, user *UserAccount, content string) *Comment {
	c := &Comment{
		ArticleID: article.ID,
		UserID:    user.UserID,
		User:      user,
		Content:   content,
	}
	c.Stamp(user.UserID, time.Now())
	return c
}

// AddChildComment attaches child as a reply, stamping its parent ID from c.
func (c *Comment) AddChildComment(child *Comment) {
	id := c.ID
	child.ParentCommentID = &id
	c.ChildComments = append(c.ChildComments, child)
}

// HasParent reports whether the comment is a reply
func (c *Comment) HasParent() bool {
	return c.ParentCommentID != nil
}

// IsOwnedBy reports whether userID wrote the comment
func (c *Comment) IsOwnedBy(userID string) bool {
	return c.UserID == userID
}

// CommentDto is the presentation shape of a comment
type CommentDto struct {
	ID              int64          `json:"id"`
	ArticleID       int64          `json:"articleId"`
	User            UserAccountDto `json:"user"`
	ParentCommentID *int64         `json:"parentCommentId,omitempty"`
	Content         string         `json:"content"`
	AuditFields
}

// CommentDtoFrom converts a loaded comment.
func CommentDtoFrom(c *Comment) CommentDto {
	user := UserAccountDtoFrom(c.User)
	if user.UserID == "" {
		user.UserID = c.UserID
	}
	return CommentDto{
		ID:              c.ID,
		ArticleID:       c.ArticleID,
		User:            user,
		ParentCommentID: c.ParentCommentID,
		Content:         c.Content,
		AuditFields:     c.AuditFields,
	}
}

// CommentRequest carries user input for a new comment or reply
type CommentRequest struct {
	ArticleID       int64  `json:"articleId" validate:"required,gt=0"`
	ParentCommentID *int64 `json:"parentCommentId,omitempty" validate:"omitempty,gt=0"`
	Content         string `json:"content" validate:"required,max=500"`
}

// CommentUpdateRequest carries the new body of a comment
type CommentUpdateRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}

// CommentResponse is a node of the two-level comment tree
type CommentResponse struct {
	ID              int64              `json:"id"`
	Content         string             `json:"content"`
	CreatedAt       time.Time          `json:"createdAt"`
	Email           string             `json:"email"`
	Nickname        string             `json:"nickname"`
	UserID          string             `json:"userId"`
	ParentCommentID *int64             `json:"parentCommentId,omitempty"`
	ChildComments   []*CommentResponse `json:"childComments"`
}

// CommentResponseFrom converts a dto into a tree node with no children yet.
func CommentResponseFrom(dto *CommentDto) *CommentResponse {
	return &CommentResponse{
		ID:              dto.ID,
		Content:         dto.Content,
		CreatedAt:       dto.CreatedAt,
		Email:           dto.User.Email,
		Nickname:        dto.User.DisplayName(),
		UserID:          dto.User.UserID,
		ParentCommentID: dto.ParentCommentID,
		ChildComments:   []*CommentResponse{},
	}
}

// HasParent reports whether the node is a reply
func (r *CommentResponse) HasParent() bool {
	return r.ParentCommentID != nil
}
