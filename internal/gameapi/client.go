package gameapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shaiso/Autofarm/internal/domain"
	"github.com/shaiso/Autofarm/internal/telemetry"
)

const (
	// DefaultBaseURL — адрес backend'а игры.
	DefaultBaseURL = "https://api.catsdogs.live"

	// InitDataHeader — заголовок, в котором backend ждёт auth payload.
	InitDataHeader = "X-Telegram-Web-App-Data"

	defaultTimeout  = 30 * time.Second
	maxResponseBody = 1 << 20
	maxErrorBody    = 200
)

// Пути endpoint'ов backend'а.
const (
	pathUserInfo    = "/user/info"
	pathRegister    = "/auth/register"
	pathBalance     = "/user/balance"
	pathTasksList   = "/tasks/list"
	pathTasksClaim  = "/tasks/claim"
	pathRewardClaim = "/game/claim"
)

// Client — тонкая обёртка над REST API игры для одного аккаунта.
//
// Каждый запрос:
//   - несёт auth payload в заголовке X-Telegram-Web-App-Data
//   - ограничен таймаутом (таймаут — транзиентная ошибка, ErrTransport)
//   - проверяет код ответа: не 2xx → *StatusError (errors.Is(err, ErrTransport)),
//     401 и 403 дополнительно errors.Is(err, ErrUnauthorized)
//   - проверяет форму ответа: ErrDataParse
//
// Client безопасен для использования из нескольких горутин, но AccountWorker
// вызывает его строго последовательно.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration

	mu       sync.RWMutex
	initData string
}

// Config — конфигурация Client.
type Config struct {
	// BaseURL — адрес backend'а (default: DefaultBaseURL).
	BaseURL string

	// HTTPClient — HTTP-клиент, обычно с транспортом через прокси аккаунта.
	HTTPClient *http.Client

	// UserAgent — User-Agent аккаунта.
	UserAgent string

	// Timeout — таймаут одного запроса (default: 30s).
	Timeout time.Duration
}

// New создаёт Client.
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		userAgent:  cfg.UserAgent,
		timeout:    timeout,
	}
}

// SetInitData устанавливает auth payload для всех последующих запросов.
func (c *Client) SetInitData(initData string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initData = initData
}

// UserInfo возвращает профиль аккаунта.
// 404 и 400 означают, что аккаунт не зарегистрирован: ErrUnknownAccount.
func (c *Client) UserInfo(ctx context.Context) (*Profile, error) {
	body, err := c.do(ctx, http.MethodGet, pathUserInfo, nil)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) &&
			(statusErr.StatusCode == http.StatusNotFound || statusErr.StatusCode == http.StatusBadRequest) {
			return nil, fmt.Errorf("%w: %v", ErrUnknownAccount, err)
		}
		return nil, err
	}
	return parseProfile(body)
}

// registerRequest — тело POST /auth/register.
type registerRequest struct {
	InviterID int64 `json:"inviter_id"`
	Race      int   `json:"race"`
}

// defaultRace — сторона, за которую регистрируется аккаунт.
const defaultRace = 1

// Register регистрирует аккаунт с реферальным кодом пригласившего.
func (c *Client) Register(ctx context.Context, inviterID int64) error {
	_, err := c.do(ctx, http.MethodPost, pathRegister, registerRequest{
		InviterID: inviterID,
		Race:      defaultRace,
	})
	return err
}

// Balance возвращает балансы аккаунта.
func (c *Client) Balance(ctx context.Context) (Balance, error) {
	body, err := c.do(ctx, http.MethodGet, pathBalance, nil)
	if err != nil {
		return nil, err
	}
	return parseBalance(body)
}

// ListTasks возвращает список задач в порядке backend'а.
func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	body, err := c.do(ctx, http.MethodGet, pathTasksList, nil)
	if err != nil {
		return nil, err
	}
	return parseTasks(body)
}

// taskClaimRequest — тело POST /tasks/claim.
type taskClaimRequest struct {
	TaskID domain.TaskID `json:"task_id"`
}

// ClaimTask просит backend проверить задачу.
// Возвращает true, если backend подтвердил выполнение.
func (c *Client) ClaimTask(ctx context.Context, taskID domain.TaskID) (bool, error) {
	body, err := c.do(ctx, http.MethodPost, pathTasksClaim, taskClaimRequest{TaskID: taskID})
	if err != nil {
		return false, err
	}
	return parseTaskClaim(body)
}

// ClaimReward забирает награду по cooldown.
func (c *Client) ClaimReward(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, pathRewardClaim, nil)
	return err
}

// do выполняет запрос и возвращает тело успешного ответа.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	c.mu.RLock()
	initData := c.initData
	c.mu.RUnlock()

	if initData == "" {
		return nil, ErrNoInitData
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var bodyReader io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal body: %v", ErrTransport, err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrTransport, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(InitDataHeader, initData)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	telemetry.FromContext(ctx).Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), maxErrorBody),
		}
	}

	return body, nil
}

// truncate обрезает строку до указанной длины.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
