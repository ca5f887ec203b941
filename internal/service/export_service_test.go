package service_test

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/project-board-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportService_StreamUsersNDJSON(t *testing.T) {
	env := newTestEnv(t)
	w := httptest.NewRecorder()

	require.NoError(t, env.services.Export.StreamUsers(context.Background(), w, "ndjson"))
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))

	var ids []string
	scanner := bufio.NewScanner(w.Body)
	for scanner.Scan() {
		var u models.UserAccountDto
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &u))
		ids = append(ids, u.UserID)
	}
	assert.Equal(t, []string{"dos", "uno"}, ids)
	assert.NotContains(t, w.Body.String(), "not-a-hash")
	assert.NotContains(t, w.Body.String(), "@mail.com")
}

func TestExportService_StreamUsersCSV(t *testing.T) {
	env := newTestEnv(t)
	w := httptest.NewRecorder()

	require.NoError(t, env.services.Export.StreamUsers(context.Background(), w, "csv"))

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"user_id", "nickname", "memo", "created_at"}, records[0])
	assert.Equal(t, "dos", records[1][0])
	assert.NotContains(t, w.Body.String(), "@mail.com")
}

func TestExportService_StreamArticlesJSON(t *testing.T) {
	env := newTestEnv(t)
	env.saveArticle(t, "uno", "one", "#a")
	env.saveArticle(t, "dos", "two", "#b")
	w := httptest.NewRecorder()

	require.NoError(t, env.services.Export.StreamArticles(context.Background(), w, "json"))

	var articles []models.ArticleDto
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &articles))
	require.Len(t, articles, 2)
	assert.Equal(t, "one", articles[0].Title)
	assert.Equal(t, []string{"b"}, articles[1].HashtagNames)
	assert.Empty(t, articles[0].User.Email)
	assert.NotContains(t, w.Body.String(), "@mail.com")
}

func TestExportService_StreamCommentsAndHashtags(t *testing.T) {
	env := newTestEnv(t)
	a := env.saveArticle(t, "uno", "one", "#x #y")
	env.saveComment(t, "dos", a.ID, nil, "hi")

	w := httptest.NewRecorder()
	require.NoError(t, env.services.Export.StreamComments(context.Background(), w, "ndjson"))
	assert.Equal(t, 1, strings.Count(w.Body.String(), "\n"))
	assert.NotContains(t, w.Body.String(), "@mail.com")

	w = httptest.NewRecorder()
	require.NoError(t, env.services.Export.StreamHashtags(context.Background(), w, "json"))
	var hashtags []models.Hashtag
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hashtags))
	require.Len(t, hashtags, 2)
	assert.Equal(t, "x", hashtags[0].HashtagName)
}

func TestExportService_UnsupportedFormat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.ErrorIs(t, env.services.Export.StreamUsers(ctx, httptest.NewRecorder(), "xml"), models.ErrInvalidInput)
	assert.ErrorIs(t, env.services.Export.StreamArticles(ctx, httptest.NewRecorder(), "csv"), models.ErrInvalidInput)
}

func TestExportService_GetCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.saveArticle(t, "uno", "one", "#a #b")

	tests := []struct {
		resource string
		want     int
	}{
		{"users", 2},
		{"articles", 1},
		{"comments", 0},
		{"hashtags", 2},
	}
	for _, tt := range tests {
		got, err := env.services.Export.GetCount(ctx, tt.resource)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.resource)
	}

	_, err := env.services.Export.GetCount(ctx, "jobs")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

// BenchmarkStreamArticlesNDJSON measures export throughput over the mock store
func BenchmarkStreamArticlesNDJSON(b *testing.B) {
	const rows = 500
	env := newTestEnv(b)
	for i := 0; i < rows; i++ {
		env.saveArticle(b, "uno", "title", "body #go #board")
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		if err := env.services.Export.StreamArticles(context.Background(), w, "ndjson"); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(rows*b.N)/b.Elapsed().Seconds(), "rows/sec")
}
