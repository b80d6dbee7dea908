package client

// http_client.go talks to the storyhub web API on behalf of the CLI.

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"storyhub/cmd/cli/dto"

	json "github.com/goccy/go-json"
)

const sessionKeyHeader = "X-Session-Key"

// APIError is a non-2xx answer from the web API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

type HTTPClient struct {
	baseURL      string
	httpClient   *http.Client
	token        string
	refreshToken string
	sessionKey   string

	// onRefresh is called with the new pair after an expired access token was renewed.
	onRefresh func(*dto.AuthResponse)
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: apiURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// SetRefresh enables one transparent token refresh per request when the API answers 401.
func (c *HTTPClient) SetRefresh(refreshToken string, onRefresh func(*dto.AuthResponse)) {
	c.refreshToken = refreshToken
	c.onRefresh = onRefresh
}

func (c *HTTPClient) SetSessionKey(key string) {
	c.sessionKey = key
}

func (c *HTTPClient) do(method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}

	status, data, err := c.send(method, path, payload)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized && c.refreshToken != "" && c.token != "" {
		if err := c.refresh(); err == nil {
			if status, data, err = c.send(method, path, payload); err != nil {
				return err
			}
		}
	}

	if status < 200 || status >= 300 {
		return &APIError{StatusCode: status, Message: errorMessage(status, data)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func (c *HTTPClient) send(method, path string, payload []byte) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.sessionKey != "" {
		req.Header.Set(sessionKeyHeader, c.sessionKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}

func (c *HTTPClient) refresh() error {
	pair, err := c.Refresh(c.refreshToken)
	if err != nil {
		return err
	}
	c.token = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	if c.onRefresh != nil {
		c.onRefresh(pair)
	}
	return nil
}

func errorMessage(status int, data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return http.StatusText(status)
}

// --- Auth ---

func (c *HTTPClient) Register(request *dto.RegisterRequest) (*dto.User, error) {
	var result struct {
		User dto.User `json:"user"`
	}
	if err := c.do(http.MethodPost, "/api/auth/register", request, &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

func (c *HTTPClient) Login(request *dto.LoginRequest) (*dto.AuthResponse, error) {
	var result dto.AuthResponse
	if err := c.do(http.MethodPost, "/api/auth/login", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Refresh(refreshToken string) (*dto.AuthResponse, error) {
	var result dto.AuthResponse
	status, data, err := c.sendJSON(http.MethodPost, "/api/auth/refresh", dto.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &APIError{StatusCode: status, Message: errorMessage(status, data)}
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// sendJSON issues a request without the refresh retry, used by Refresh itself.
func (c *HTTPClient) sendJSON(method, path string, body interface{}) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}
	return c.send(method, path, payload)
}

func (c *HTTPClient) Logout(refreshToken string) error {
	return c.do(http.MethodPost, "/api/auth/logout", dto.RefreshTokenRequest{RefreshToken: refreshToken}, nil)
}

func (c *HTTPClient) Me() (*dto.User, error) {
	var result dto.User
	if err := c.do(http.MethodGet, "/api/me", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- Stories ---

func (c *HTTPClient) ListStories(search, tags string) (*dto.StoryList, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if tags != "" {
		q.Set("tags", tags)
	}
	path := "/api/stories"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result dto.StoryList
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetStory(id int64) (*dto.Story, error) {
	var result dto.Story
	if err := c.do(http.MethodGet, storyPath(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) StoryStats(id int64) (*dto.StoryStats, error) {
	var result dto.StoryStats
	if err := c.do(http.MethodGet, storyPath(id)+"/stats", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Rate(id int64, rating int, comment string) error {
	body := map[string]interface{}{"rating": rating, "comment": comment}
	return c.do(http.MethodPut, storyPath(id)+"/rating", body, nil)
}

func storyPath(id int64) string {
	return "/api/stories/" + strconv.FormatInt(id, 10)
}

// --- Play ---

func playPath(storyID int64) string {
	return "/api/play/" + strconv.FormatInt(storyID, 10)
}

func (c *HTTPClient) StartPlay(storyID int64, resume, preview bool) (*dto.PlayState, error) {
	q := url.Values{}
	q.Set("resume", strconv.FormatBool(resume))
	if preview {
		q.Set("preview", "true")
	}

	var result dto.PlayState
	if err := c.do(http.MethodPost, playPath(storyID)+"/start?"+q.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Choose(storyID, choiceID int64, preview bool) (*dto.PlayState, error) {
	path := playPath(storyID) + "/choose"
	if preview {
		path += "?preview=true"
	}

	var result dto.PlayState
	if err := c.do(http.MethodPost, path, map[string]int64{"choice_id": choiceID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) AbandonPlay(storyID int64) error {
	return c.do(http.MethodDelete, playPath(storyID)+"/session", nil, nil)
}

// --- Authoring ---

func (c *HTTPClient) CreateStory(request *dto.CreateStoryRequest) (*dto.Story, error) {
	var result struct {
		Story dto.Story `json:"story"`
	}
	if err := c.do(http.MethodPost, "/api/author/stories", request, &result); err != nil {
		return nil, err
	}
	return &result.Story, nil
}

func (c *HTTPClient) UpdateStory(id int64, request *dto.UpdateStoryRequest) (*dto.Story, error) {
	var result struct {
		Story dto.Story `json:"story"`
	}
	path := "/api/author/stories/" + strconv.FormatInt(id, 10)
	if err := c.do(http.MethodPut, path, request, &result); err != nil {
		return nil, err
	}
	return &result.Story, nil
}

func (c *HTTPClient) AddPage(storyID int64, request *dto.CreatePageRequest) (*dto.Page, error) {
	var result struct {
		Page dto.Page `json:"page"`
	}
	path := "/api/author/stories/" + strconv.FormatInt(storyID, 10) + "/pages"
	if err := c.do(http.MethodPost, path, request, &result); err != nil {
		return nil, err
	}
	return &result.Page, nil
}

func (c *HTTPClient) AddChoice(pageID int64, request *dto.CreateChoiceRequest) (*dto.Choice, error) {
	var result struct {
		Choice dto.Choice `json:"choice"`
	}
	path := "/api/author/pages/" + strconv.FormatInt(pageID, 10) + "/choices"
	if err := c.do(http.MethodPost, path, request, &result); err != nil {
		return nil, err
	}
	return &result.Choice, nil
}

func (c *HTTPClient) SetStartPage(storyID, pageID int64) (*dto.Story, error) {
	var result struct {
		Story dto.Story `json:"story"`
	}
	path := "/api/author/stories/" + strconv.FormatInt(storyID, 10) + "/start-page"
	if err := c.do(http.MethodPut, path, map[string]int64{"page_id": pageID}, &result); err != nil {
		return nil, err
	}
	return &result.Story, nil
}

func (c *HTTPClient) Tree(storyID int64) (*dto.Tree, error) {
	var result dto.Tree
	path := "/api/author/stories/" + strconv.FormatInt(storyID, 10) + "/tree"
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- Admin ---

func (c *HTTPClient) ListReports(status string) ([]dto.Report, error) {
	path := "/api/admin/reports"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	var result struct {
		Reports []dto.Report `json:"reports"`
	}
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Reports, nil
}

func (c *HTTPClient) ReviewReport(id int64, request *dto.ReviewReportRequest) (*dto.Report, error) {
	var result struct {
		Report dto.Report `json:"report"`
	}
	path := "/api/admin/reports/" + strconv.FormatInt(id, 10)
	if err := c.do(http.MethodPut, path, request, &result); err != nil {
		return nil, err
	}
	return &result.Report, nil
}

// SetSuspended suspends or reinstates a published story.
func (c *HTTPClient) SetSuspended(storyID int64, suspended bool) (*dto.Story, error) {
	action := "/unsuspend"
	if suspended {
		action = "/suspend"
	}

	var result struct {
		Story dto.Story `json:"story"`
	}
	path := "/api/admin/stories/" + strconv.FormatInt(storyID, 10) + action
	if err := c.do(http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result.Story, nil
}

func (c *HTTPClient) ChangeRole(userID, role string) (*dto.User, error) {
	var result dto.User
	path := "/api/admin/users/" + url.PathEscape(userID) + "/role"
	if err := c.do(http.MethodPut, path, dto.ChangeRoleRequest{Role: role}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
