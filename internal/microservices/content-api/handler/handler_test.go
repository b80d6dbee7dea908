package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storyhub/internal/microservices/content-api/dto"
	"storyhub/internal/microservices/content-api/handler"
	"storyhub/internal/microservices/content-api/middleware"
	"storyhub/internal/microservices/content-api/models"
	"storyhub/internal/microservices/content-api/repository"
	"storyhub/internal/microservices/content-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testKey = "test-key-0123456789"

// --- MOCK SERVICES ---

type MockStoryService struct{ mock.Mock }

func (m *MockStoryService) List(ctx context.Context, filter repository.StoryFilter) ([]models.Story, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Story), args.Error(1)
}

func (m *MockStoryService) Get(ctx context.Context, id int64, includePages bool) (*models.Story, error) {
	args := m.Called(ctx, id, includePages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}

func (m *MockStoryService) StartPage(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStoryService) Tree(ctx context.Context, id int64) (*dto.StoryTreeResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.StoryTreeResponse), args.Error(1)
}

func (m *MockStoryService) Create(ctx context.Context, req *dto.CreateStoryRequest) (*models.Story, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}

func (m *MockStoryService) Update(ctx context.Context, id int64, req *dto.UpdateStoryRequest) (*models.Story, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}

func (m *MockStoryService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockPageService struct{ mock.Mock }

func (m *MockPageService) ListByStory(ctx context.Context, storyID int64) ([]models.Page, error) {
	args := m.Called(ctx, storyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Page), args.Error(1)
}

func (m *MockPageService) Create(ctx context.Context, storyID int64, req *dto.CreatePageRequest) (*models.Page, error) {
	args := m.Called(ctx, storyID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page), args.Error(1)
}

func (m *MockPageService) Get(ctx context.Context, id int64) (*models.Page, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page), args.Error(1)
}

func (m *MockPageService) Update(ctx context.Context, id int64, req *dto.UpdatePageRequest) (*models.Page, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page), args.Error(1)
}

func (m *MockPageService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockChoiceService struct{ mock.Mock }

func (m *MockChoiceService) Create(ctx context.Context, pageID int64, req *dto.CreateChoiceRequest) (*models.Choice, error) {
	args := m.Called(ctx, pageID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Choice), args.Error(1)
}

func (m *MockChoiceService) Get(ctx context.Context, id int64) (*models.Choice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Choice), args.Error(1)
}

func (m *MockChoiceService) Update(ctx context.Context, id int64, req *dto.UpdateChoiceRequest) (*models.Choice, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Choice), args.Error(1)
}

func (m *MockChoiceService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// --- SETUP ---

type mocks struct {
	stories *MockStoryService
	pages   *MockPageService
	choices *MockChoiceService
}

func setupRouter() (*gin.Engine, *mocks) {
	gin.SetMode(gin.TestMode)
	m := &mocks{
		stories: new(MockStoryService),
		pages:   new(MockPageService),
		choices: new(MockChoiceService),
	}

	r := gin.New()
	public := r.Group("/api/v1")
	writes := r.Group("/api/v1", middleware.APIKey(testKey))
	handler.NewStoryHandler(m.stories).RegisterRoutes(public, writes)
	handler.NewPageHandler(m.pages).RegisterRoutes(public, writes)
	handler.NewChoiceHandler(m.choices).RegisterRoutes(public, writes)
	return r, m
}

func do(r *gin.Engine, method, path string, body interface{}, withKey bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if withKey {
		req.Header.Set(middleware.APIKeyHeader, testKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// --- STORY TESTS ---

func TestStoryHandler_ListParsesFilters(t *testing.T) {
	r, m := setupRouter()
	expected := repository.StoryFilter{Status: "published", Search: "sea", Tags: []string{"mystery", "horror"}, AuthorID: "u1"}
	m.stories.On("List", mock.Anything, expected).Return([]models.Story{{ID: 1, Title: "A"}}, nil)

	w := do(r, http.MethodGet, "/api/v1/stories?status=published&search=sea&tags=Mystery,%20horror&author_id=u1", nil, false)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["total"])
	stories := body["stories"].([]interface{})
	assert.Equal(t, "A", stories[0].(map[string]interface{})["title"])
	assert.Equal(t, []interface{}{}, stories[0].(map[string]interface{})["tags"])
	m.stories.AssertExpectations(t)
}

func TestStoryHandler_ListRejectsBadStatus(t *testing.T) {
	r, m := setupRouter()
	w := do(r, http.MethodGet, "/api/v1/stories?status=archived", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.stories.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestStoryHandler_Get(t *testing.T) {
	r, m := setupRouter()
	m.stories.On("Get", mock.Anything, int64(7), true).Return(&models.Story{ID: 7, Title: "Empty"}, nil)
	m.stories.On("Get", mock.Anything, int64(8), false).Return(nil, service.ErrStoryNotFound)

	w := do(r, http.MethodGet, "/api/v1/stories/7?include_pages=true", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, decode(t, w)["pages"])

	w = do(r, http.MethodGet, "/api/v1/stories/8", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "story not found", decode(t, w)["error"])

	w = do(r, http.MethodGet, "/api/v1/stories/abc", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStoryHandler_StartPage(t *testing.T) {
	r, m := setupRouter()
	m.stories.On("StartPage", mock.Anything, int64(1)).Return(int64(11), nil)
	m.stories.On("StartPage", mock.Anything, int64(2)).Return(int64(0), service.ErrNoStartPage)

	w := do(r, http.MethodGet, "/api/v1/stories/1/start", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 11, decode(t, w)["page_id"])

	w = do(r, http.MethodGet, "/api/v1/stories/2/start", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "story has no start page", decode(t, w)["error"])
}

func TestStoryHandler_CreateRequiresKey(t *testing.T) {
	r, m := setupRouter()
	m.stories.On("Create", mock.Anything, mock.MatchedBy(func(req *dto.CreateStoryRequest) bool {
		return req.Title == "Dune Sea"
	})).Return(&models.Story{ID: 3, Title: "Dune Sea", Status: models.StatusDraft}, nil)

	w := do(r, http.MethodPost, "/api/v1/stories", gin.H{"title": "Dune Sea"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/v1/stories", gin.H{"title": "Dune Sea"}, true)
	assert.Equal(t, http.StatusCreated, w.Code)
	story := decode(t, w)["story"].(map[string]interface{})
	assert.EqualValues(t, 3, story["id"])
	assert.Equal(t, "draft", story["status"])
	m.stories.AssertNumberOfCalls(t, "Create", 1)
}

func TestStoryHandler_CreateValidation(t *testing.T) {
	r, m := setupRouter()

	w := do(r, http.MethodPost, "/api/v1/stories", gin.H{"description": "no title"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/stories", gin.H{"title": "x", "status": "archived"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.stories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestStoryHandler_BlankTitle(t *testing.T) {
	r, m := setupRouter()
	m.stories.On("Create", mock.Anything, mock.Anything).Return(nil, service.ErrTitleRequired)
	m.stories.On("Update", mock.Anything, int64(2), mock.Anything).Return(nil, service.ErrTitleRequired)

	w := do(r, http.MethodPost, "/api/v1/stories", gin.H{"title": "   "}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "title is required", decode(t, w)["error"])

	w = do(r, http.MethodPut, "/api/v1/stories/2", gin.H{"title": "  "}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "title is required", decode(t, w)["error"])
}

func TestStoryHandler_UpdateStartPage(t *testing.T) {
	r, m := setupRouter()
	m.stories.On("Update", mock.Anything, int64(4), mock.MatchedBy(func(req *dto.UpdateStoryRequest) bool {
		return req.StartPageID.Set && req.StartPageID.Value != nil && *req.StartPageID.Value == 99
	})).Return(nil, service.ErrStartPageNotInStory)
	m.stories.On("Update", mock.Anything, int64(5), mock.MatchedBy(func(req *dto.UpdateStoryRequest) bool {
		return req.StartPageID.Set && req.StartPageID.Value == nil
	})).Return(&models.Story{ID: 5}, nil)

	w := do(r, http.MethodPut, "/api/v1/stories/4", gin.H{"start_page_id": 99}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "start page must belong to the same story", decode(t, w)["error"])

	w = do(r, http.MethodPut, "/api/v1/stories/5", gin.H{"start_page_id": nil}, true)
	assert.Equal(t, http.StatusOK, w.Code)
	m.stories.AssertExpectations(t)
}

func TestStoryHandler_Delete(t *testing.T) {
	r, m := setupRouter()
	m.stories.On("Delete", mock.Anything, int64(1)).Return(nil)
	m.stories.On("Delete", mock.Anything, int64(2)).Return(errors.New("connection reset"))

	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/api/v1/stories/1", nil, true).Code)

	w := do(r, http.MethodDelete, "/api/v1/stories/2", nil, true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w)["error"])
}

func TestStoryHandler_Tree(t *testing.T) {
	r, m := setupRouter()
	m.stories.On("Tree", mock.Anything, int64(3)).Return(&dto.StoryTreeResponse{
		Story:              dto.StoryResponse{ID: 3},
		Pages:              []dto.PageResponse{},
		EndingPageIDs:      []int64{},
		UnreachablePageIDs: []int64{12},
		DeadEndPageIDs:     []int64{12},
	}, nil)

	w := do(r, http.MethodGet, "/api/v1/stories/3/tree", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, []interface{}{float64(12)}, body["unreachable_page_ids"])
}

// --- PAGE TESTS ---

func TestPageHandler_Create(t *testing.T) {
	r, m := setupRouter()
	m.pages.On("Create", mock.Anything, int64(1), mock.AnythingOfType("*dto.CreatePageRequest")).
		Return(&models.Page{ID: 10, StoryID: 1, Text: "You wake up."}, nil)
	m.pages.On("Create", mock.Anything, int64(2), mock.Anything).Return(nil, service.ErrStoryNotFound)

	w := do(r, http.MethodPost, "/api/v1/stories/1/pages", gin.H{"text": "You wake up."}, true)
	assert.Equal(t, http.StatusCreated, w.Code)
	page := decode(t, w)["page"].(map[string]interface{})
	assert.EqualValues(t, 10, page["id"])
	assert.Equal(t, []interface{}{}, page["choices"])

	w = do(r, http.MethodPost, "/api/v1/stories/2/pages", gin.H{"text": "x"}, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/api/v1/stories/1/pages", gin.H{"is_ending": true}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPageHandler_GetAndDelete(t *testing.T) {
	r, m := setupRouter()
	label := "Escape"
	m.pages.On("Get", mock.Anything, int64(5)).Return(&models.Page{
		ID: 5, StoryID: 1, IsEnding: true, EndingLabel: &label,
	}, nil)
	m.pages.On("Delete", mock.Anything, int64(6)).Return(service.ErrPageNotFound)

	w := do(r, http.MethodGet, "/api/v1/pages/5", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Escape", decode(t, w)["ending_label"])

	w = do(r, http.MethodDelete, "/api/v1/pages/6", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- CHOICE TESTS ---

func TestChoiceHandler_Create(t *testing.T) {
	r, m := setupRouter()
	m.choices.On("Create", mock.Anything, int64(1), mock.MatchedBy(func(req *dto.CreateChoiceRequest) bool {
		return req.NextPageID == 2
	})).Return(&models.Choice{ID: 4, PageID: 1, Text: "Go", NextPageID: 2}, nil)
	m.choices.On("Create", mock.Anything, int64(1), mock.MatchedBy(func(req *dto.CreateChoiceRequest) bool {
		return req.NextPageID == 30
	})).Return(nil, service.ErrNextPageNotInStory)

	w := do(r, http.MethodPost, "/api/v1/pages/1/choices", gin.H{"text": "Go", "next_page_id": 2}, true)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["choice"].(map[string]interface{})["next_page_id"])

	w = do(r, http.MethodPost, "/api/v1/pages/1/choices", gin.H{"text": "Go", "next_page_id": 30}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "next page must belong to the same story", decode(t, w)["error"])

	w = do(r, http.MethodPost, "/api/v1/pages/1/choices", gin.H{"text": "Go"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChoiceHandler_GetUpdateDelete(t *testing.T) {
	r, m := setupRouter()
	m.choices.On("Get", mock.Anything, int64(4)).Return(&models.Choice{ID: 4, PageID: 1, Text: "Go", NextPageID: 2}, nil)
	m.choices.On("Update", mock.Anything, int64(4), mock.Anything).Return(&models.Choice{ID: 4, PageID: 1, Text: "Run", NextPageID: 2}, nil)
	m.choices.On("Delete", mock.Anything, int64(9)).Return(service.ErrChoiceNotFound)

	w := do(r, http.MethodGet, "/api/v1/choices/4", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPut, "/api/v1/choices/4", gin.H{"text": "Run"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPut, "/api/v1/choices/4", gin.H{"text": "Run"}, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Run", decode(t, w)["choice"].(map[string]interface{})["text"])

	w = do(r, http.MethodDelete, "/api/v1/choices/9", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- HEALTH ---

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/ok", handler.NewHealthHandler(func(context.Context) error { return nil }).Health)
	r.GET("/down", handler.NewHealthHandler(func(context.Context) error { return errors.New("dial tcp: refused") }).Health)

	w := do(r, http.MethodGet, "/ok", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = do(r, http.MethodGet, "/down", nil, false)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
