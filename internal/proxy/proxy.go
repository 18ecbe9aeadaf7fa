// Package proxy разбирает список прокси и назначает их аккаунтам.
package proxy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// ErrInvalidProxy — строка прокси не разобрана.
var ErrInvalidProxy = errors.New("invalid proxy")

// supportedSchemes — схемы, которые поддерживает net/http транспорт.
var supportedSchemes = map[string]struct{}{
	"http":   {},
	"https":  {},
	"socks5": {},
}

// Parse приводит строку прокси к URL.
//
// Поддерживаемые формы:
//
//	scheme://[login:password@]host:port
//	host:port
//	host:port:login:password
//	login:password@host:port
//
// Схема по умолчанию — http.
func Parse(line string) (*url.URL, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidProxy)
	}

	if !strings.Contains(line, "://") {
		parts := strings.Split(line, ":")
		if len(parts) == 4 && !strings.Contains(line, "@") {
			line = fmt.Sprintf("%s:%s@%s:%s", parts[2], parts[3], parts[0], parts[1])
		}
		line = "http://" + line
	}

	u, err := url.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProxy, err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if _, ok := supportedSchemes[u.Scheme]; !ok {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidProxy, u.Scheme)
	}

	host, port, err := net.SplitHostPort(u.Host)
	if err != nil || host == "" || port == "" {
		return nil, fmt.Errorf("%w: %q needs host:port", ErrInvalidProxy, u.Host)
	}

	return &url.URL{Scheme: u.Scheme, User: u.User, Host: u.Host}, nil
}

// Read читает прокси по одному в строке.
// BOM и пустые строки пропускаются, строки с # — комментарии.
func Read(r io.Reader) ([]string, error) {
	var proxies []string

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		u, err := Parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		proxies = append(proxies, u.String())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read proxies: %w", err)
	}

	return proxies, nil
}

// LoadFile читает файл прокси.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open proxy file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Assign назначает прокси аккаунтам по кругу.
//
// Результат детерминирован: при прокси [P1, P2] и аккаунтах [A, B, C]
// назначение A→P1, B→P2, C→P1. Пустой список прокси — без прокси.
// Список proxies только читается.
func Assign(sessions []string, proxies []string) map[string]string {
	assigned := make(map[string]string, len(sessions))
	for i, session := range sessions {
		if len(proxies) == 0 {
			assigned[session] = ""
			continue
		}
		assigned[session] = proxies[i%len(proxies)]
	}
	return assigned
}

// NewHTTPClient создаёт HTTP-клиент, который ходит через прокси.
// Пустой proxyURL — прямое соединение.
func NewHTTPClient(proxyURL string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		u, err := Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(u)
	} else {
		transport.Proxy = nil
	}

	return &http.Client{Transport: transport}, nil
}

// DefaultIPCheckURL — сервис, возвращающий внешний IP текстом.
const DefaultIPCheckURL = "https://ipinfo.io/ip"

// ipCheckTimeout — таймаут проверки IP.
const ipCheckTimeout = 20 * time.Second

// CheckIP возвращает внешний IP, видимый через client.
func CheckIP(ctx context.Context, client *http.Client, checkURL string) (string, error) {
	if checkURL == "" {
		checkURL = DefaultIPCheckURL
	}

	ctx, cancel := context.WithTimeout(ctx, ipCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, checkURL, nil)
	if err != nil {
		return "", fmt.Errorf("create ip check request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ip check: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", fmt.Errorf("read ip check response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ip check: HTTP %d", resp.StatusCode)
	}

	return strings.TrimSpace(string(body)), nil
}
