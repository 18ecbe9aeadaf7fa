package auth

import "context"

// Provider выдаёт auth payload (init data) для аккаунта.
//
// Реализация выполняет handshake с платформой мессенджера. Ядро не знает,
// как устроен handshake, и использует только этот контракт:
//   - ошибка с ErrSessionRevoked — сессия мертва, worker завершается
//   - любая другая ошибка — транзиентная, worker повторит позже
type Provider interface {
	InitData(ctx context.Context, session, proxy string) (string, error)
}

// ChannelJoiner подписывает аккаунт на канал (side effect задач типа "tg").
type ChannelJoiner interface {
	JoinChannel(ctx context.Context, session, proxy, channel string) error
}
