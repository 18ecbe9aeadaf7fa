package domain

// WorkerState — состояние AccountWorker.
//
// Жизненный цикл:
//
//	INIT → AUTHENTICATING → (REGISTERING) → ACTIVE
//	          ↑                               │
//	          └──── истёк токен ──────────────┘
//
//	AUTHENTICATING → TERMINATED (сессия отозвана)
//	любое → STOPPED (отмена context)
type WorkerState string

const (
	// WorkerStateInit — worker создан, start delay ещё не истёк.
	WorkerStateInit WorkerState = "INIT"

	// WorkerStateAuthenticating — получение init data и логин.
	WorkerStateAuthenticating WorkerState = "AUTHENTICATING"

	// WorkerStateRegistering — backend не знает аккаунт, идёт регистрация.
	WorkerStateRegistering WorkerState = "REGISTERING"

	// WorkerStateActive — токен валиден, worker выполняет циклы.
	WorkerStateActive WorkerState = "ACTIVE"

	// WorkerStateTerminated — сессия отозвана, worker завершён навсегда.
	WorkerStateTerminated WorkerState = "TERMINATED"

	// WorkerStateStopped — worker остановлен через context.
	WorkerStateStopped WorkerState = "STOPPED"
)

// IsTerminal возвращает true, если worker больше не выполняет циклы.
func (s WorkerState) IsTerminal() bool {
	switch s {
	case WorkerStateTerminated, WorkerStateStopped:
		return true
	default:
		return false
	}
}

// CycleStatus — итог одного цикла worker'а.
type CycleStatus string

const (
	// CycleStatusCompleted — цикл дошёл до конца (отдельные действия могли быть пропущены).
	CycleStatusCompleted CycleStatus = "COMPLETED"

	// CycleStatusFailed — цикл прерван нефатальной ошибкой.
	CycleStatusFailed CycleStatus = "FAILED"

	// CycleStatusTerminated — цикл прерван фатальной ошибкой аутентификации.
	CycleStatusTerminated CycleStatus = "TERMINATED"
)

// IsTerminal возвращает true для статуса, после которого циклов больше не будет.
func (s CycleStatus) IsTerminal() bool {
	return s == CycleStatusTerminated
}
