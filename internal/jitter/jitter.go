// Package jitter централизует случайные задержки worker'ов.
//
// Все паузы AccountWorker'а (start delay, пауза между задачами, сон между
// циклами, backoff после ошибки) берутся из одной Policy с именованными
// границами. Тесты подставляют детерминированные границы (Min == Max).
package jitter

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Range — границы случайной задержки (включительно).
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Seconds создаёт Range из секунд.
func Seconds(minSec, maxSec int) Range {
	return Range{
		Min: time.Duration(minSec) * time.Second,
		Max: time.Duration(maxSec) * time.Second,
	}
}

// Fixed создаёт Range с одним значением.
func Fixed(d time.Duration) Range {
	return Range{Min: d, Max: d}
}

// Validate проверяет границы.
func (r Range) Validate() error {
	if r.Min < 0 || r.Max < 0 {
		return fmt.Errorf("negative bound in %s", r)
	}
	if r.Min > r.Max {
		return fmt.Errorf("min greater than max in %s", r)
	}
	return nil
}

// Draw возвращает случайную задержку в границах с точностью до секунды,
// если обе границы кратны секунде, иначе с точностью до наносекунды.
func (r Range) Draw() time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	span := r.Max - r.Min
	if r.Min%time.Second == 0 && span%time.Second == 0 {
		return r.Min + time.Duration(rand.Int64N(int64(span/time.Second)+1))*time.Second
	}
	return r.Min + time.Duration(rand.Int64N(int64(span)+1))
}

// String возвращает границы в формате [min, max].
func (r Range) String() string {
	return fmt.Sprintf("[%s, %s]", r.Min, r.Max)
}

// Policy — именованные границы задержек AccountWorker'а.
type Policy struct {
	// StartDelay — однократная пауза перед первым циклом (разносит старт аккаунтов).
	StartDelay Range

	// CycleSleep — сон между циклами.
	CycleSleep Range

	// TokenLifetime — окно валидности auth payload.
	TokenLifetime Range

	// PostLogin — пауза после логина.
	PostLogin Range

	// PreTasks — пауза перед обработкой задач.
	PreTasks Range

	// InterTask — пауза между задачами.
	InterTask Range

	// RegisterWait — пауза между регистрацией и повторным логином.
	RegisterWait Range

	// AuthRetry — пауза перед повтором после нефатальной ошибки аутентификации.
	AuthRetry Range

	// RequestBackoff — короткий backoff после сетевой ошибки отдельного действия.
	RequestBackoff Range

	// ErrorBackoff — длинный backoff после ошибки, прервавшей цикл.
	ErrorBackoff Range
}

// DefaultPolicy возвращает границы по умолчанию.
func DefaultPolicy() Policy {
	return Policy{
		StartDelay:     Seconds(5, 25),
		CycleSleep:     Seconds(7200, 10800),
		TokenLifetime:  Seconds(3500, 3600),
		PostLogin:      Seconds(1, 3),
		PreTasks:       Seconds(5, 10),
		InterTask:      Seconds(5, 10),
		RegisterWait:   Seconds(2, 2),
		AuthRetry:      Seconds(3, 3),
		RequestBackoff: Seconds(3, 7),
		ErrorBackoff:   Seconds(60, 120),
	}
}

// Validate проверяет все границы политики.
func (p Policy) Validate() error {
	named := []struct {
		name string
		r    Range
	}{
		{"start_delay", p.StartDelay},
		{"cycle_sleep", p.CycleSleep},
		{"token_lifetime", p.TokenLifetime},
		{"post_login", p.PostLogin},
		{"pre_tasks", p.PreTasks},
		{"inter_task", p.InterTask},
		{"register_wait", p.RegisterWait},
		{"auth_retry", p.AuthRetry},
		{"request_backoff", p.RequestBackoff},
		{"error_backoff", p.ErrorBackoff},
	}
	for _, n := range named {
		if err := n.r.Validate(); err != nil {
			return fmt.Errorf("%s: %w", n.name, err)
		}
	}
	return nil
}

// Sleep ждёт d или отмены context.
// Возвращает ctx.Err() при отмене, nil по истечении задержки.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SleepRange ждёт случайную задержку из r и возвращает её вместе с результатом ожидания.
func SleepRange(ctx context.Context, r Range) (time.Duration, error) {
	d := r.Draw()
	return d, Sleep(ctx, d)
}
