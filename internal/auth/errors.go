package auth

import "errors"

// Ошибки аутентификации.
var (
	// ErrSessionRevoked — сессия отозвана или аккаунт деактивирован.
	// Фатальная ошибка: worker аккаунта завершается и не перезапускается.
	ErrSessionRevoked = errors.New("session revoked")

	// ErrHandshake — handshake не удался по любой другой причине.
	// Транзиентная ошибка: worker повторит попытку после короткой паузы.
	ErrHandshake = errors.New("auth handshake failed")

	// ErrInvalidInitData — init data не удалось разобрать.
	ErrInvalidInitData = errors.New("invalid init data")

	// ErrNoStartParam — в init data нет start_param.
	ErrNoStartParam = errors.New("init data has no start_param")
)

// IsFatal проверяет, означает ли ошибка отозванную сессию.
func IsFatal(err error) bool {
	return errors.Is(err, ErrSessionRevoked)
}
