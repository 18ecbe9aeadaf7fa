// Package orchestrator запускает AccountWorker для каждого аккаунта.
//
// Plan назначает прокси по кругу, Run запускает воркеры параллельно
// и ждёт их завершения, Snapshot и Report отдают состояние для /status
// и периодического отчёта.
package orchestrator
