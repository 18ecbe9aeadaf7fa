package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cycle — один проход цикла AccountWorker.
//
// Cycle создаётся в начале прохода и закрывается одним из Mark* методов.
// Закрытые циклы уходят в журналы (Postgres, RabbitMQ).
type Cycle struct {
	// ID — уникальный идентификатор цикла, попадает в логи как cycle_id.
	ID uuid.UUID `json:"id"`

	// Session — аккаунт, которому принадлежит цикл.
	Session string `json:"session"`

	// Number — порядковый номер цикла в рамках процесса (с 1).
	Number int `json:"number"`

	// Status — итог цикла.
	Status CycleStatus `json:"status"`

	// Reauthenticated — в цикле был получен новый токен.
	Reauthenticated bool `json:"reauthenticated"`

	// Balance — сумма целочисленных полей баланса. nil — баланс не получен.
	Balance *int64 `json:"balance,omitempty"`

	// TasksVerified — количество задач, подтверждённых backend'ом.
	TasksVerified int `json:"tasks_verified"`

	// RewardClaimed — в цикле была получена награда.
	RewardClaimed bool `json:"reward_claimed"`

	// Error — текст ошибки для FAILED/TERMINATED.
	Error string `json:"error,omitempty"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewCycle открывает новый цикл.
func NewCycle(session string, number int, now time.Time) *Cycle {
	return &Cycle{
		ID:        uuid.New(),
		Session:   session,
		Number:    number,
		StartedAt: now,
	}
}

// Duration возвращает продолжительность цикла.
func (c *Cycle) Duration() time.Duration {
	if c.FinishedAt == nil {
		return 0
	}
	return c.FinishedAt.Sub(c.StartedAt)
}

// SetBalance запоминает баланс.
func (c *Cycle) SetBalance(balance int64) {
	c.Balance = &balance
}

// MarkCompleted закрывает цикл как успешный.
func (c *Cycle) MarkCompleted(now time.Time) {
	c.Status = CycleStatusCompleted
	c.FinishedAt = &now
}

// MarkFailed закрывает цикл с нефатальной ошибкой.
func (c *Cycle) MarkFailed(now time.Time, err string) {
	c.Status = CycleStatusFailed
	c.FinishedAt = &now
	c.Error = err
}

// MarkTerminated закрывает цикл с фатальной ошибкой аутентификации.
func (c *Cycle) MarkTerminated(now time.Time, err string) {
	c.Status = CycleStatusTerminated
	c.FinishedAt = &now
	c.Error = err
}
