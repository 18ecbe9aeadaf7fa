// Package useragent хранит User-Agent каждого аккаунта.
//
// User-Agent генерируется один раз при первом запуске сессии и затем
// переиспользуется, чтобы аккаунт выглядел как одно и то же устройство.
//
// Хранилища:
//   - FileStore — JSON-файл [{session_name, user_agent}]
//   - repo.UserAgentRepo — таблица user_agents в PostgreSQL (если задан DB_URL)
package useragent
