package gameapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Ошибки клиента backend'а.
var (
	// ErrTransport — запрос не выполнен: сеть, таймаут или ответ не 2xx.
	// Ошибка транзиентная, действие пропускается до следующего цикла.
	ErrTransport = errors.New("backend request failed")

	// ErrDataParse — ответ не соответствует ожидаемой форме.
	ErrDataParse = errors.New("unexpected backend response")

	// ErrUnknownAccount — backend не знает аккаунт (/user/info вернул 404 или 400).
	ErrUnknownAccount = errors.New("account is not registered")

	// ErrNoInitData — запрос без auth payload.
	ErrNoInitData = errors.New("init data is not set")

	// ErrUnauthorized — backend отклонил auth payload (401 или 403).
	// Токен аккаунта нужно получить заново.
	ErrUnauthorized = errors.New("init data rejected")
)

// StatusError — ответ backend'а с кодом не 2xx.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Unwrap позволяет проверять StatusError через errors.Is(err, ErrTransport).
func (e *StatusError) Unwrap() error {
	return ErrTransport
}

// Is сопоставляет 401 и 403 с ErrUnauthorized.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}
