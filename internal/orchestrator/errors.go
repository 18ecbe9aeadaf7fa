package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrNoAccounts — не найдено ни одной сессии.
	ErrNoAccounts = errors.New("no accounts configured")

	// ErrDuplicateAccount — одна сессия указана дважды.
	ErrDuplicateAccount = errors.New("duplicate account")

	// ErrAlreadyRunning — Run уже вызван.
	ErrAlreadyRunning = errors.New("orchestrator already running")
)
