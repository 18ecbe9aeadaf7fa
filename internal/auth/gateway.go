package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultGatewayURL — адрес локального auth gateway.
	DefaultGatewayURL = "http://localhost:8700"

	// DefaultBotPeer — бот игры, для которого запрашивается webview.
	DefaultBotPeer = "catsdogs_game_bot"

	defaultGatewayTimeout = 30 * time.Second
	appShortName          = "join"
	appPlatform           = "android"
)

// Коды gateway, означающие мёртвую сессию.
var revokedCodes = map[string]struct{}{
	"SESSION_REVOKED":       {},
	"USER_DEACTIVATED":      {},
	"AUTH_KEY_UNREGISTERED": {},
	"UNAUTHORIZED":          {},
}

// Gateway — Provider и ChannelJoiner поверх HTTP auth gateway.
//
// Gateway — отдельный процесс, который держит сессии мессенджера и умеет
// выполнять handshake. Контракт:
//
//	POST /v1/webview        {session, api_id, api_hash, proxy, bot, short_name, platform, start_param}
//	                        → 200 {"url": "..."} или {"init_data": "..."}
//	POST /v1/channels/join  {session, api_id, api_hash, proxy, channel}
//	                        → 200
//
// Ошибки: 401/403/410 с {"error": {"code": "SESSION_REVOKED" | "USER_DEACTIVATED" |
// "AUTH_KEY_UNREGISTERED"}} → ErrSessionRevoked, всё остальное → ErrHandshake.
type Gateway struct {
	baseURL    string
	apiID      int
	apiHash    string
	bot        string
	referral   Referral
	httpClient *http.Client
	timeout    time.Duration
}

// GatewayConfig — конфигурация Gateway.
type GatewayConfig struct {
	// BaseURL — адрес gateway (default: DefaultGatewayURL).
	BaseURL string

	// APIID, APIHash — учётные данные приложения платформы.
	APIID   int
	APIHash string

	// Bot — username бота игры (default: DefaultBotPeer).
	Bot string

	// Referral — выбор start parameter.
	Referral Referral

	// HTTPClient — HTTP-клиент (default: новый клиент).
	HTTPClient *http.Client

	// Timeout — таймаут запроса (default: 30s).
	Timeout time.Duration
}

// NewGateway создаёт Gateway.
func NewGateway(cfg GatewayConfig) *Gateway {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultGatewayURL
	}

	bot := cfg.Bot
	if bot == "" {
		bot = DefaultBotPeer
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}

	return &Gateway{
		baseURL:    baseURL,
		apiID:      cfg.APIID,
		apiHash:    cfg.APIHash,
		bot:        bot,
		referral:   cfg.Referral,
		httpClient: httpClient,
		timeout:    timeout,
	}
}

// webviewRequest — тело POST /v1/webview.
type webviewRequest struct {
	Session    string `json:"session"`
	APIID      int    `json:"api_id"`
	APIHash    string `json:"api_hash"`
	Proxy      string `json:"proxy,omitempty"`
	Bot        string `json:"bot"`
	ShortName  string `json:"short_name"`
	Platform   string `json:"platform"`
	StartParam string `json:"start_param,omitempty"`
}

// webviewResponse — ответ POST /v1/webview.
type webviewResponse struct {
	URL      string `json:"url"`
	InitData string `json:"init_data"`
}

// joinRequest — тело POST /v1/channels/join.
type joinRequest struct {
	Session string `json:"session"`
	APIID   int    `json:"api_id"`
	APIHash string `json:"api_hash"`
	Proxy   string `json:"proxy,omitempty"`
	Channel string `json:"channel"`
}

// gatewayError — тело ошибки gateway.
type gatewayError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// InitData запрашивает webview у gateway и возвращает auth payload.
func (g *Gateway) InitData(ctx context.Context, session, proxy string) (string, error) {
	body, err := g.post(ctx, "/v1/webview", webviewRequest{
		Session:    session,
		APIID:      g.apiID,
		APIHash:    g.apiHash,
		Proxy:      proxy,
		Bot:        g.bot,
		ShortName:  appShortName,
		Platform:   appPlatform,
		StartParam: g.referral.Pick(),
	})
	if err != nil {
		return "", err
	}

	var resp webviewResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decode webview response: %v", ErrHandshake, err)
	}

	switch {
	case resp.InitData != "":
		if _, err := ParseInitData(resp.InitData); err != nil {
			return "", fmt.Errorf("%w: %v", ErrHandshake, err)
		}
		return resp.InitData, nil
	case resp.URL != "":
		initData, err := FromWebAppURL(resp.URL)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrHandshake, err)
		}
		return initData, nil
	default:
		return "", fmt.Errorf("%w: empty webview response", ErrHandshake)
	}
}

// JoinChannel подписывает аккаунт на канал.
func (g *Gateway) JoinChannel(ctx context.Context, session, proxy, channel string) error {
	_, err := g.post(ctx, "/v1/channels/join", joinRequest{
		Session: session,
		APIID:   g.apiID,
		APIHash: g.apiHash,
		Proxy:   proxy,
		Channel: ChannelRef(channel),
	})
	return err
}

// post выполняет запрос к gateway и классифицирует ошибки.
func (g *Gateway) post(ctx context.Context, path string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal body: %v", ErrHandshake, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrHandshake, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrHandshake, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return body, nil
	}

	var gwErr gatewayError
	_ = json.Unmarshal(body, &gwErr)
	code := strings.ToUpper(gwErr.Error.Code)

	if isRevokedStatus(resp.StatusCode) {
		if _, ok := revokedCodes[code]; ok {
			return nil, fmt.Errorf("%w: %s: %s", ErrSessionRevoked, code, gwErr.Error.Message)
		}
	}

	return nil, fmt.Errorf("%w: HTTP %d: %s %s", ErrHandshake, resp.StatusCode, code, gwErr.Error.Message)
}

// isRevokedStatus — коды ответа, с которыми gateway сообщает о мёртвой сессии.
func isRevokedStatus(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusGone:
		return true
	default:
		return false
	}
}
