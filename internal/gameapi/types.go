package gameapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shaiso/Autofarm/internal/domain"
)

// Profile — ответ GET /user/info.
//
// Нужные ядру поля разобраны явно, остальное сохраняется в Raw.
type Profile struct {
	// ClaimedAt — время последней награды (ISO8601) или nil.
	ClaimedAt *string `json:"claimed_at"`

	// Raw — исходный JSON профиля.
	Raw map[string]json.RawMessage `json:"-"`
}

// RewardClaim разбирает claimed_at в domain.RewardClaim.
func (p *Profile) RewardClaim() (domain.RewardClaim, error) {
	if p.ClaimedAt == nil {
		return domain.RewardClaim{}, nil
	}
	claimedAt, err := domain.ParseClaimedAt(*p.ClaimedAt)
	if err != nil {
		return domain.RewardClaim{}, fmt.Errorf("%w: %v", ErrDataParse, err)
	}
	return domain.RewardClaim{LastClaimedAt: claimedAt}, nil
}

// parseProfile проверяет форму профиля.
// Профиль обязан быть JSON-объектом с полем claimed_at (строка или null).
func parseProfile(body []byte) (*Profile, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: profile: %v", ErrDataParse, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: profile is null", ErrDataParse)
	}

	profile := &Profile{Raw: raw}

	claimed, ok := raw["claimed_at"]
	if !ok {
		return nil, fmt.Errorf("%w: profile has no claimed_at", ErrDataParse)
	}
	if !bytes.Equal(bytes.TrimSpace(claimed), []byte("null")) {
		var s string
		if err := json.Unmarshal(claimed, &s); err != nil {
			return nil, fmt.Errorf("%w: claimed_at is not a string", ErrDataParse)
		}
		profile.ClaimedAt = &s
	}

	return profile, nil
}

// Balance — ответ GET /user/balance: именованные значения.
type Balance map[string]json.RawMessage

// Total возвращает сумму всех целочисленных полей.
// Строки, дробные числа, bool, null и вложенные объекты игнорируются.
func (b Balance) Total() int64 {
	var total int64
	for _, raw := range b {
		if n, ok := integerValue(raw); ok {
			total += n
		}
	}
	return total
}

// Fields возвращает целочисленные поля в алфавитном порядке ключей.
func (b Balance) Fields() []BalanceField {
	fields := make([]BalanceField, 0, len(b))
	for name, raw := range b {
		if n, ok := integerValue(raw); ok {
			fields = append(fields, BalanceField{Name: name, Value: n})
		}
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields
}

// BalanceField — одно целочисленное поле баланса.
type BalanceField struct {
	Name  string
	Value int64
}

// integerValue возвращает значение, если raw — целое JSON-число.
func integerValue(raw json.RawMessage) (int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !(raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')) {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	v, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseBalance проверяет, что баланс — JSON-объект.
func parseBalance(body []byte) (Balance, error) {
	var b Balance
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, fmt.Errorf("%w: balance: %v", ErrDataParse, err)
	}
	if b == nil {
		return nil, fmt.Errorf("%w: balance is null", ErrDataParse)
	}
	return b, nil
}

// parseTasks проверяет, что список задач — JSON-массив объектов с id.
func parseTasks(body []byte) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := json.Unmarshal(body, &tasks); err != nil {
		return nil, fmt.Errorf("%w: tasks: %v", ErrDataParse, err)
	}
	for i := range tasks {
		if tasks[i].ID == "" {
			return nil, fmt.Errorf("%w: task #%d has empty id", ErrDataParse, i)
		}
	}
	return tasks, nil
}

// successMarker — значение, которым backend подтверждает проверку задачи.
const successMarker = "success"

// parseTaskClaim возвращает true, если хотя бы одно поле ответа равно "success".
func parseTaskClaim(body []byte) (bool, error) {
	var resp map[string]any
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("%w: task claim: %v", ErrDataParse, err)
	}
	for _, v := range resp {
		if s, ok := v.(string); ok && s == successMarker {
			return true, nil
		}
	}
	return false, nil
}
