package service_test

import (
	"context"
	"testing"

	"github.com/project-board-api/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_SaveComment(t *testing.T) {
	env := newTestEnv(t)
	a := env.saveArticle(t, "uno", "title", "content")

	root := env.saveComment(t, "dos", a.ID, nil, "first")
	assert.Equal(t, a.ID, root.ArticleID)
	assert.Nil(t, root.ParentCommentID)
	assert.Equal(t, "dos", root.User.UserID)
	assert.Equal(t, "dos", root.CreatedBy)

	reply := env.saveComment(t, "uno", a.ID, &root.ID, "reply")
	require.NotNil(t, reply.ParentCommentID)
	assert.Equal(t, root.ID, *reply.ParentCommentID)
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.CommentsCreatedTotal))
}

func TestCommentService_SaveComment_MissingReferencesAreIgnored(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.saveArticle(t, "uno", "title", "content")
	missing := int64(404)

	tests := []struct {
		name string
		user string
		req  models.CommentRequest
	}{
		{"missing article", "uno", models.CommentRequest{ArticleID: 404, Content: "x"}},
		{"missing user", "ghost", models.CommentRequest{ArticleID: a.ID, Content: "x"}},
		{"missing parent", "uno", models.CommentRequest{ArticleID: a.ID, ParentCommentID: &missing, Content: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writes := env.store.Writes
			req := tt.req
			dto, err := env.services.Comment.SaveComment(ctx, tt.user, &req)
			assert.NoError(t, err)
			assert.Nil(t, dto)
			assert.Equal(t, writes, env.store.Writes)
			assert.Empty(t, env.store.Comments)
		})
	}
}

func TestCommentService_SaveComment_ParentOnOtherArticle(t *testing.T) {
	env := newTestEnv(t)
	a := env.saveArticle(t, "uno", "a", "content")
	b := env.saveArticle(t, "uno", "b", "content")
	parent := env.saveComment(t, "uno", a.ID, nil, "on a")

	_, err := env.services.Comment.SaveComment(context.Background(), "uno", &models.CommentRequest{
		ArticleID:       b.ID,
		ParentCommentID: &parent.ID,
		Content:         "on b",
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Len(t, env.store.Comments, 1)
}

func TestCommentService_SaveComment_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.Comment.SaveComment(context.Background(), "uno", &models.CommentRequest{ArticleID: 1, Content: "   "})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCommentService_UpdateComment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.saveArticle(t, "uno", "title", "content")
	c := env.saveComment(t, "dos", a.ID, nil, "before")

	assert.ErrorIs(t, env.services.Comment.UpdateComment(ctx, "uno", c.ID, &models.CommentUpdateRequest{Content: "nope"}), models.ErrForbidden)
	require.NoError(t, env.services.Comment.UpdateComment(ctx, "dos", c.ID, &models.CommentUpdateRequest{Content: "after"}))
	assert.NoError(t, env.services.Comment.UpdateComment(ctx, "dos", 404, &models.CommentUpdateRequest{Content: "x"}))

	comments, err := env.services.Comment.SearchComments(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "after", comments[0].Content)
	assert.Equal(t, "dos", comments[0].ModifiedBy)
}

func TestCommentService_DeleteComment_CascadesReplies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.saveArticle(t, "uno", "title", "content")
	root := env.saveComment(t, "uno", a.ID, nil, "root")
	env.saveComment(t, "dos", a.ID, &root.ID, "reply")
	other := env.saveComment(t, "dos", a.ID, nil, "other")

	assert.ErrorIs(t, env.services.Comment.DeleteComment(ctx, "dos", root.ID), models.ErrForbidden)
	require.NoError(t, env.services.Comment.DeleteComment(ctx, "uno", root.ID))
	assert.NoError(t, env.services.Comment.DeleteComment(ctx, "uno", root.ID))

	tree, err := env.services.Comment.GetCommentTree(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, other.ID, tree[0].ID)
}

func TestCommentService_GetCommentTree_MissingArticle(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.Comment.GetCommentTree(context.Background(), 404)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
