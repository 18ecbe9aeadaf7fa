// Package telemetry обеспечивает наблюдаемость фермы.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики
//
// Логгер каждого аккаунта несёт поле account, логгер цикла — cycle_id.
// Метрики экспортируются на /metrics, если METRICS_PORT не 0.
package telemetry
