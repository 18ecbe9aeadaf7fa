// Package cli реализует команды autofarm.
//
// # Обзор
//
// CLI собирает ферму из конфигурации и запускает её, а также даёт
// вспомогательные команды для просмотра аккаунтов и журнала событий.
//
// # Ключевые компоненты
//
// ## Farm
//
// Сборка фермы: сессии из SESSIONS_DIR, прокси из PROXY_FILE, хранилище
// User-Agent (JSON-файл или Postgres), журналы циклов (Postgres, RabbitMQ),
// auth gateway и оркестратор с фабрикой воркеров.
//
//	farm, err := cli.NewFarm(ctx, cfg, logger)
//	defer farm.Close()
//	err = farm.Orchestrator.Run(ctx)
//
// ## HTTP
//
// `autofarm run` поднимает на METRICS_PORT:
//   - /healthz — проверка живости
//   - /metrics — Prometheus
//   - /status — JSON-снимок всех воркеров и сводка
//
// Client читает /status запущенной фермы для команды `autofarm status`.
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: autofarm accounts --json | jq .
//
// ## Commands
//
//   - run: запуск фермы (команда по умолчанию)
//   - accounts: сессии, прокси, User-Agent, последний цикл
//   - events: чтение очередей events.cycles / events.accounts
//   - status: состояние воркеров запущенной фермы
//
// Команды создаются фабричными функциями (NewRunCmd и т.д.), принимающими
// configFn, clientFn и outputFn — замыкания, которые вызываются после
// парсинга PersistentFlags.
package cli
