package mocks

import (
	"context"
	"net/http"

	"github.com/project-board-api/internal/service"
)

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamUsersFunc    func(ctx context.Context, w http.ResponseWriter, format string) error
	StreamArticlesFunc func(ctx context.Context, w http.ResponseWriter, format string) error
	StreamCommentsFunc func(ctx context.Context, w http.ResponseWriter, format string) error
	StreamHashtagsFunc func(ctx context.Context, w http.ResponseWriter, format string) error
	Counts             map[string]int
	CountErr           error
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{
		Counts: map[string]int{
			"users":    0,
			"articles": 0,
			"comments": 0,
			"hashtags": 0,
		},
	}
}

func (m *MockExportService) StreamUsers(ctx context.Context, w http.ResponseWriter, format string) error {
	if m.StreamUsersFunc != nil {
		return m.StreamUsersFunc(ctx, w, format)
	}
	return nil
}

func (m *MockExportService) StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error {
	if m.StreamArticlesFunc != nil {
		return m.StreamArticlesFunc(ctx, w, format)
	}
	return nil
}

func (m *MockExportService) StreamComments(ctx context.Context, w http.ResponseWriter, format string) error {
	if m.StreamCommentsFunc != nil {
		return m.StreamCommentsFunc(ctx, w, format)
	}
	return nil
}

func (m *MockExportService) StreamHashtags(ctx context.Context, w http.ResponseWriter, format string) error {
	if m.StreamHashtagsFunc != nil {
		return m.StreamHashtagsFunc(ctx, w, format)
	}
	return nil
}

func (m *MockExportService) GetCount(ctx context.Context, resource string) (int, error) {
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	return m.Counts[resource], nil
}
