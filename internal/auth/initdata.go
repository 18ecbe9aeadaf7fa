package auth

import (
	"fmt"
	"net/url"
	"strings"
)

// InitData — разобранный auth payload.
//
// Порядок полей при сборке фиксирован: user, chat_instance, chat_type,
// start_param, auth_date, hash. Payload отправляется как есть, ядро
// читает из него только StartParam.
type InitData struct {
	User         string
	ChatInstance string
	ChatType     string
	StartParam   string
	AuthDate     string
	Hash         string
}

// initDataKeys — поля payload в порядке сборки.
var initDataKeys = []string{"user", "chat_instance", "chat_type", "start_param", "auth_date", "hash"}

// ParseInitData разбирает URL-encoded payload.
func ParseInitData(raw string) (*InitData, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidInitData)
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}

	data := &InitData{
		User:         values.Get("user"),
		ChatInstance: values.Get("chat_instance"),
		ChatType:     values.Get("chat_type"),
		StartParam:   values.Get("start_param"),
		AuthDate:     values.Get("auth_date"),
		Hash:         values.Get("hash"),
	}
	if data.Hash == "" {
		return nil, fmt.Errorf("%w: no hash", ErrInvalidInitData)
	}
	return data, nil
}

// Encode собирает payload в фиксированном порядке полей, user кодируется.
func (d *InitData) Encode() string {
	parts := make([]string, 0, len(initDataKeys))
	for _, key := range initDataKeys {
		var value string
		switch key {
		case "user":
			value = escapeValue(d.User)
		case "chat_instance":
			value = d.ChatInstance
		case "chat_type":
			value = d.ChatType
		case "start_param":
			value = d.StartParam
		case "auth_date":
			value = d.AuthDate
		case "hash":
			value = d.Hash
		}
		parts = append(parts, key+"="+value)
	}
	return strings.Join(parts, "&")
}

// valueEscaper возвращает '/' и пробел к виду, в котором их кодирует webview.
var valueEscaper = strings.NewReplacer("+", "%20", "%2F", "/")

// escapeValue кодирует значение поля: пробел как %20, '/' не кодируется.
func escapeValue(s string) string {
	return valueEscaper.Replace(url.QueryEscape(s))
}

// webAppDataKey — параметр fragment'а webview URL с payload.
const webAppDataKey = "tgWebAppData"

// FromWebAppURL извлекает payload из URL webview.
//
// Payload лежит в fragment (#tgWebAppData=...&tgWebAppVersion=...) и закодирован
// дважды. После раскодирования поле user кодируется обратно, остальные поля
// передаются как есть.
func FromWebAppURL(rawURL string) (string, error) {
	idx := strings.Index(rawURL, webAppDataKey+"=")
	if idx < 0 {
		return "", fmt.Errorf("%w: %s not found in url", ErrInvalidInitData, webAppDataKey)
	}
	encoded := rawURL[idx+len(webAppDataKey)+1:]
	if end := strings.Index(encoded, "&"); end >= 0 {
		encoded = encoded[:end]
	}

	decoded, err := url.PathUnescape(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}

	data, err := ParseInitData(decoded)
	if err != nil {
		return "", err
	}
	return data.Encode(), nil
}

// StartParam возвращает start_param из payload.
func StartParam(raw string) (string, error) {
	data, err := ParseInitData(raw)
	if err != nil {
		return "", err
	}
	if data.StartParam == "" {
		return "", ErrNoStartParam
	}
	return data.StartParam, nil
}
