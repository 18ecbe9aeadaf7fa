package worker

import "errors"

// Ошибки воркера.
var (
	// ErrAuthUnavailable — provider не выдал init data (нефатально, повтор через AuthRetry).
	ErrAuthUnavailable = errors.New("init data unavailable")

	// ErrLoginFailed — backend не вернул профиль после логина.
	ErrLoginFailed = errors.New("login failed")

	// ErrRegistrationExhausted — аккаунт неизвестен и после регистрации.
	ErrRegistrationExhausted = errors.New("account still unknown after registration")

	// ErrInvalidStartParam — start parameter в init data не является числовым inviter id.
	ErrInvalidStartParam = errors.New("invalid start param")
)
