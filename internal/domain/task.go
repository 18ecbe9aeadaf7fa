package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Типы задач backend'а.
const (
	// TaskTypeTelegram — подписка на канал.
	TaskTypeTelegram = "tg"

	// TaskTypeInvite — приглашение друзей. Никогда не выполняется автоматически.
	TaskTypeInvite = "invite"
)

// TaskID — идентификатор задачи.
//
// Backend отдаёт id числом, но формат не зафиксирован, поэтому принимаем
// и число, и строку. Числовой id сериализуется обратно числом.
type TaskID string

// UnmarshalJSON принимает число или строку.
func (id *TaskID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("task id is null")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TaskID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("task id: %w", err)
	}
	*id = TaskID(n.String())
	return nil
}

// MarshalJSON сериализует числовой id числом.
func (id TaskID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Task — задача backend'а, за выполнение которой начисляется награда.
//
// Для ядра задачи read-only: единственное действие — запрос на проверку (claim).
type Task struct {
	ID            TaskID      `json:"id"`
	Title         string      `json:"title"`
	Type          string      `json:"type"`
	Hidden        bool        `json:"hidden"`
	TransactionID LooseString `json:"transaction_id"`
	ChannelID     LooseString `json:"channel_id"`
	Link          string      `json:"link"`
	Amount        LooseString `json:"amount"`
}

// LooseString — строковое поле, которое backend присылает строкой, числом или null.
// null и числовой 0 приводятся к пустой строке.
type LooseString string

// UnmarshalJSON принимает строку, число или null.
func (l *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*l = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = LooseString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("loose string: %w", err)
		}
		if f, err := n.Float64(); err == nil && f == 0 {
			*l = ""
			return nil
		}
		*l = LooseString(n.String())
	}
	return nil
}

// IsCompleted возвращает true, если у задачи есть отметка о выполнении.
func (t *Task) IsCompleted() bool {
	return t.TransactionID != ""
}

// IsChannelJoin возвращает true для задачи подписки на канал.
func (t *Task) IsChannelJoin() bool {
	return t.Type == TaskTypeTelegram && t.ChannelID != ""
}

// IsInvite возвращает true для задачи приглашения друзей.
func (t *Task) IsInvite() bool {
	return t.Type == TaskTypeInvite
}

// TaskFilter решает, какие задачи можно трогать.
type TaskFilter struct {
	// Disabled — отключённые типы задач (без учёта регистра).
	Disabled map[string]struct{}

	// JoinChannels — разрешена ли подписка на каналы.
	JoinChannels bool
}

// NewTaskFilter создаёт фильтр из списка отключённых типов.
func NewTaskFilter(disabled []string, joinChannels bool) TaskFilter {
	set := make(map[string]struct{}, len(disabled))
	for _, name := range disabled {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return TaskFilter{Disabled: set, JoinChannels: joinChannels}
}

// SkipReason возвращает причину пропуска задачи или "" если задачу надо выполнить.
func (f TaskFilter) SkipReason(t *Task) string {
	switch {
	case t.Hidden:
		return "hidden"
	case t.IsCompleted():
		return "completed"
	case f.IsDisabled(t.Type):
		return "disabled"
	case t.IsInvite():
		return "invite"
	case t.IsChannelJoin() && !f.JoinChannels:
		return "channel join disabled"
	default:
		return ""
	}
}

// IsDisabled проверяет тип задачи по списку отключённых.
func (f TaskFilter) IsDisabled(taskType string) bool {
	_, ok := f.Disabled[strings.ToLower(taskType)]
	return ok
}
