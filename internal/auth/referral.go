package auth

import "math/rand/v2"

// Referral выбирает start parameter для handshake.
//
// По умолчанию всегда используется Primary. Подмена на Fallback возможна
// только если она явно задана в конфигурации (REF_FALLBACK_ID и
// REF_FALLBACK_WEIGHT > 0) и тогда происходит с вероятностью Weight процентов.
type Referral struct {
	// Primary — реферальный код из конфигурации (REF_ID).
	Primary string

	// Fallback — альтернативный код. Пустая строка — подмены нет.
	Fallback string

	// FallbackWeight — вероятность подмены в процентах (0–100).
	FallbackWeight int
}

// Pick возвращает код для очередного handshake.
func (r Referral) Pick() string {
	if r.Fallback == "" || r.FallbackWeight <= 0 {
		return r.Primary
	}
	if r.FallbackWeight >= 100 || rand.IntN(100) < r.FallbackWeight {
		return r.Fallback
	}
	return r.Primary
}
