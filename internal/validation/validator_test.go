package validation

import (
	"strings"
	"testing"

	"github.com/project-board-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func fields(errs []ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateArticle(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name       string
		req        models.ArticleRequest
		wantFields []string
	}{
		{
			name: "valid article",
			req:  models.ArticleRequest{Title: "new article", Content: "body #java"},
		},
		{
			name:       "missing title",
			req:        models.ArticleRequest{Content: "body"},
			wantFields: []string{"title"},
		},
		{
			name:       "markup only content",
			req:        models.ArticleRequest{Title: "t", Content: "<script>alert(1)</script>"},
			wantFields: []string{"content"},
		},
		{
			name:       "title too long",
			req:        models.ArticleRequest{Title: strings.Repeat("a", 256), Content: "body"},
			wantFields: []string{"title"},
		},
		{
			name:       "content too long",
			req:        models.ArticleRequest{Title: "t", Content: strings.Repeat("a", models.MaxContentLength+1)},
			wantFields: []string{"content"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			errs := v.ValidateArticle(&req)
			if len(tt.wantFields) == 0 {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.wantFields, fields(errs))
		})
	}
}

func TestValidateArticle_SanitizesInPlace(t *testing.T) {
	v := NewValidator()
	req := models.ArticleRequest{
		Title:   "  <b>hello</b>  ",
		Content: "<p>tagged <i>#golang</i></p>",
	}

	errs := v.ValidateArticle(&req)
	assert.Empty(t, errs)
	assert.Equal(t, "hello", req.Title)
	assert.Equal(t, "tagged #golang", req.Content)
}

func TestSanitize(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain prose", in: `I'm learning "Go" #golang & a<b`, want: `I'm learning "Go" #golang & a<b`},
		{name: "comparison", in: "1 < 2 > 0", want: "1 < 2 > 0"},
		{name: "entity text kept literally", in: "&lt;script&gt; &amp; &#39;", want: "&lt;script&gt; &amp; &#39;"},
		{name: "markup stripped", in: "<p>tagged <i>#golang</i></p>", want: "tagged #golang"},
		{name: "script removed", in: "<script>alert('x')</script>safe", want: "safe"},
		{name: "hangul", in: " 안녕 #스프링 ", want: "안녕 #스프링"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Sanitize(tt.in))
		})
	}
}

func TestValidateComment_LengthOfPlainText(t *testing.T) {
	v := NewValidator()
	content := strings.Repeat(`"'&`, models.MaxCommentLength/3)
	req := models.CommentRequest{ArticleID: 1, Content: content}

	assert.Empty(t, v.ValidateComment(&req))
	assert.Equal(t, content, req.Content)
}

func TestValidateArticleUpdate(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateArticleUpdate(&models.ArticleUpdateRequest{Title: "only title"}))
	assert.Empty(t, v.ValidateArticleUpdate(&models.ArticleUpdateRequest{Content: "only content"}))
	assert.Equal(t, []string{"title"}, fields(v.ValidateArticleUpdate(&models.ArticleUpdateRequest{})))
}

func TestValidateComment(t *testing.T) {
	v := NewValidator()
	parent := int64(0)

	tests := []struct {
		name       string
		req        models.CommentRequest
		wantFields []string
	}{
		{"valid", models.CommentRequest{ArticleID: 1, Content: "nice"}, nil},
		{"missing article", models.CommentRequest{Content: "nice"}, []string{"articleId"}},
		{"missing content", models.CommentRequest{ArticleID: 1}, []string{"content"}},
		{"non positive parent", models.CommentRequest{ArticleID: 1, ParentCommentID: &parent, Content: "x"}, []string{"parentCommentId"}},
		{"too long", models.CommentRequest{ArticleID: 1, Content: strings.Repeat("a", models.MaxCommentLength+1)}, []string{"content"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			errs := v.ValidateComment(&req)
			if len(tt.wantFields) == 0 {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.wantFields, fields(errs))
		})
	}
}

func TestValidateSignup(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name       string
		req        models.SignupRequest
		wantFields []string
	}{
		{"valid", models.SignupRequest{UserID: "uno", Password: "asdf1234", Email: "uno@mail.com"}, nil},
		{"no email", models.SignupRequest{UserID: "uno", Password: "asdf1234"}, nil},
		{"bad email", models.SignupRequest{UserID: "uno", Password: "asdf1234", Email: "not-an-email"}, []string{"email"}},
		{"bad user id", models.SignupRequest{UserID: "u n", Password: "asdf1234"}, []string{"userId"}},
		{"short password", models.SignupRequest{UserID: "uno", Password: "abc"}, []string{"password"}},
		{"missing both", models.SignupRequest{}, []string{"userId", "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			errs := v.ValidateSignup(&req)
			if len(tt.wantFields) == 0 {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.wantFields, fields(errs))
		})
	}
}

func TestValidationErrorMessages(t *testing.T) {
	v := NewValidator()

	errs := v.Validate(&models.LoginRequest{UserID: "uno"})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "password", errs[0].Field)
		assert.Equal(t, "password is required", errs[0].Message)
		assert.Nil(t, errs[0].Value)
	}

	errs = v.ValidateSignup(&models.SignupRequest{UserID: "uno", Password: "asdf", Email: "nope"})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "invalid email format", errs[0].Message)
		assert.Equal(t, "nope", errs[0].Value)
	}
}

func TestErr(t *testing.T) {
	assert.NoError(t, Err(nil))

	err := Err([]ValidationError{{Field: "title", Message: "title is required"}})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	var details Errors
	if assert.ErrorAs(t, err, &details) {
		assert.Equal(t, "title", details[0].Field)
	}
	assert.Contains(t, err.Error(), "title is required")
}
