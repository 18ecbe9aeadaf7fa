// Package gameapi — клиент REST API игры.
//
// Клиент покрывает шесть endpoint'ов backend'а:
//
//	GET  /user/info     — профиль (claimed_at)
//	POST /auth/register — регистрация {inviter_id, race}
//	GET  /user/balance  — балансы (сумма целочисленных полей)
//	GET  /tasks/list    — список задач
//	POST /tasks/claim   — проверка задачи {task_id}
//	POST /game/claim    — награда по cooldown
//
// Ответы разбираются в явные структуры. Отсутствующее поле или неожиданная
// форма ответа превращается в ErrDataParse, а не в панику при обращении.
package gameapi
