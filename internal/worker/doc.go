// Package worker реализует AccountWorker — автомат одного аккаунта.
//
// Жизненный цикл:
//
//	INIT ─ start delay ─→ AUTHENTICATING ─→ (REGISTERING) ─→ ACTIVE
//	                           ↑                               │
//	                           └────── истёк токен ────────────┘
//
// Один цикл:
//  1. Если токен истёк: init data от auth.Provider, логин (с регистрацией
//     неизвестного аккаунта), новый токен со случайным окном 3500–3600s.
//  2. Баланс — сумма целочисленных полей /user/balance.
//  3. Задания (AUTO_TASK) с паузой между заданиями.
//  4. Награда (CLAIM_REWARD), если прошло 8 часов с claimed_at.
//  5. Сон SLEEP_TIME.
//
// Ошибки:
//   - auth.ErrSessionRevoked завершает воркер (TERMINATED), соседние воркеры не затрагиваются
//   - ErrAuthUnavailable — повтор через AuthRetry
//   - ошибки логина — длинный backoff (ErrorBackoff)
//   - ошибки отдельных действий логируются, цикл продолжается
//
// Отмена ctx проверяется в каждой точке ожидания и переводит воркер в STOPPED.
// Каждый закрытый цикл передаётся во все Journal.
package worker
