package domain

import (
	"fmt"
	"strings"
	"time"
)

// ClaimCooldown — окно между двумя наградами.
const ClaimCooldown = 8 * time.Hour

// RewardClaim — производное состояние награды по времени.
type RewardClaim struct {
	// LastClaimedAt — время последнего claim. nil — награда ещё не получалась.
	LastClaimedAt *time.Time
}

// Eligible проверяет, можно ли получить награду в момент now.
// Награду можно получить, если её ещё не получали или cooldown уже прошёл.
func (c RewardClaim) Eligible(now time.Time) bool {
	if c.LastClaimedAt == nil {
		return true
	}
	return now.After(c.LastClaimedAt.Add(ClaimCooldown))
}

// AvailableAt возвращает момент, когда награда станет доступна.
func (c RewardClaim) AvailableAt() time.Time {
	if c.LastClaimedAt == nil {
		return time.Time{}
	}
	return c.LastClaimedAt.Add(ClaimCooldown)
}

// Merge возвращает claim с более поздним из двух времён.
// Используется, чтобы локально сделанный claim не повторился, пока backend отдаёт старое значение.
func (c RewardClaim) Merge(local *time.Time) RewardClaim {
	if local == nil {
		return c
	}
	if c.LastClaimedAt == nil || local.After(*c.LastClaimedAt) {
		t := *local
		return RewardClaim{LastClaimedAt: &t}
	}
	return c
}

// claimLayouts — форматы claimed_at. Дробная часть секунды бывает от 0 до 9 знаков.
var claimLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseClaimedAt разбирает claimed_at из профиля.
// Пустое значение означает «награда не получалась».
func ParseClaimedAt(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range claimLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unsupported claimed_at format %q", raw)
}
