// Package repo хранит состояние фермы в PostgreSQL.
//
// Хранилище необязательно: без DB_URL User-Agent лежат в JSON-файле,
// а журнал циклов ведётся только в логах и RabbitMQ.
//
// Таблицы:
//   - user_agents — User-Agent по имени сессии (useragent.Store)
//   - cycles      — журнал закрытых циклов воркеров
package repo
