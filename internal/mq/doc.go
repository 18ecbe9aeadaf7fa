// Package mq ведёт журнал фермы в RabbitMQ.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — обменник autofarm.events и очереди events.*
//   - publisher.go  — публикация закрытых циклов
//   - consumer.go   — чтение журнала (команда autofarm events)
//
// Типы сообщений:
//   - cycle.completed | cycle.failed | cycle.terminated — payload domain.Cycle
//   - account.terminated — сессия отозвана, аккаунт выведен из работы
//
// Журнал включается переменной RABBITMQ_URL.
package mq
