// Package auth описывает контракт получения auth payload и его разбор.
//
// Provider — внешний коллаборатор: по идентификатору сессии и прокси
// возвращает init data (URL-encoded строка из полей user, chat_instance,
// chat_type, start_param, auth_date, hash). Payload отправляется backend'у
// заголовком без изменений до истечения окна валидности токена.
//
// Gateway — реализация Provider и ChannelJoiner поверх HTTP auth gateway.
//
// Ошибки:
//   - ErrSessionRevoked — фатальная, worker аккаунта завершается
//   - ErrHandshake — транзиентная, worker повторяет после паузы
package auth
