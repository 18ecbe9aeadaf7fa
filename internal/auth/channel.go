package auth

import "strings"

const (
	telegramPrefix       = "https://t.me/"
	telegramInvitePrefix = "https://t.me/+"
)

// ChannelRef приводит ссылку задачи к виду, который понимает платформа:
// приватные invite-ссылки (https://t.me/+...) передаются целиком,
// публичные ссылки сокращаются до username.
func ChannelRef(link string) string {
	link = strings.TrimSpace(link)
	if strings.Contains(link, telegramInvitePrefix) {
		return link
	}
	ref := strings.TrimPrefix(link, telegramPrefix)
	ref = strings.TrimPrefix(ref, "@")
	return strings.TrimRight(ref, "/")
}
