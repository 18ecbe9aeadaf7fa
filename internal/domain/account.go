package domain

import "time"

// Account — один независимо автоматизируемый аккаунт.
//
// Account принадлежит ровно одному AccountWorker и не разделяется между горутинами.
// Создаётся при старте из списка session identifiers, живёт до выхода процесса.
type Account struct {
	// Session — стабильный идентификатор сессии (имя файла *.session).
	Session string `json:"session"`

	// Proxy — назначенный прокси (URL). Пустая строка — без прокси.
	Proxy string `json:"proxy,omitempty"`

	// UserAgent — User-Agent, закреплённый за сессией.
	UserAgent string `json:"user_agent,omitempty"`

	// InitData — текущий auth payload, отправляется заголовком на каждый запрос.
	InitData string `json:"-"`

	// TokenIssuedAt — время получения InitData. Нулевое значение — токена нет.
	TokenIssuedAt time.Time `json:"token_issued_at,omitempty"`

	// TokenLifetime — окно валидности токена (случайное, 3500–3600s).
	TokenLifetime time.Duration `json:"token_lifetime,omitempty"`

	// ReferralCode — start parameter, извлечённый из последнего payload.
	ReferralCode string `json:"referral_code,omitempty"`
}

// NewAccount создаёт аккаунт без токена.
func NewAccount(session, proxy string) Account {
	return Account{Session: session, Proxy: proxy}
}

// TokenExpired проверяет, нужно ли заново аутентифицироваться.
// Аккаунт без токена всегда считается истёкшим.
func (a *Account) TokenExpired(now time.Time) bool {
	if a.InitData == "" || a.TokenIssuedAt.IsZero() {
		return true
	}
	return now.Sub(a.TokenIssuedAt) >= a.TokenLifetime
}

// RefreshToken заменяет активный токен. Предыдущий токен логически перестаёт действовать.
func (a *Account) RefreshToken(initData, referral string, issuedAt time.Time, lifetime time.Duration) {
	a.InitData = initData
	a.ReferralCode = referral
	a.TokenIssuedAt = issuedAt
	a.TokenLifetime = lifetime
}

// DropToken сбрасывает токен, следующий цикл начнётся с аутентификации.
func (a *Account) DropToken() {
	a.InitData = ""
	a.TokenIssuedAt = time.Time{}
	a.TokenLifetime = 0
}
