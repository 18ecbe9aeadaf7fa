package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shaiso/Autofarm/internal/auth"
	"github.com/shaiso/Autofarm/internal/domain"
	"github.com/shaiso/Autofarm/internal/gameapi"
	"github.com/shaiso/Autofarm/internal/jitter"
	"github.com/shaiso/Autofarm/internal/telemetry"
)

// maxLoginAttempts — логин, регистрация и ровно один повторный логин.
const maxLoginAttempts = 2

// refreshSession получает новый токен и логинится с ним.
// Токен аккаунта заменяется только после успешного логина.
func (w *Worker) refreshSession(ctx context.Context, logger *slog.Logger) error {
	w.setState(domain.WorkerStateAuthenticating)

	payload, err := w.authenticate(ctx)
	if err != nil {
		return err
	}

	if _, err := w.login(ctx, logger, payload); err != nil {
		return err
	}

	referral, err := auth.StartParam(payload)
	if err != nil {
		logger.Debug("init data has no start param", "error", err)
	}

	issuedAt := w.now()
	lifetime := w.policy.TokenLifetime.Draw()
	w.account.RefreshToken(payload, referral, issuedAt, lifetime)

	w.update(func(s *Status) {
		s.State = domain.WorkerStateActive
		s.Authentications++
		s.TokenIssuedAt = &issuedAt
	})
	logger.Info("logged in", "token_lifetime", lifetime)

	return nil
}

// authenticate запрашивает init data у provider.
// Фатальная ошибка возвращается как есть, остальные оборачиваются в ErrAuthUnavailable.
func (w *Worker) authenticate(ctx context.Context) (string, error) {
	payload, err := w.auth.InitData(ctx, w.account.Session, w.account.Proxy)
	switch {
	case err == nil && payload != "":
		telemetry.AuthTotal.WithLabelValues(telemetry.ResultSuccess).Inc()
		return payload, nil
	case auth.IsFatal(err):
		telemetry.AuthTotal.WithLabelValues(telemetry.ResultFatal).Inc()
		return "", err
	case err == nil:
		err = errors.New("empty payload")
	}

	telemetry.AuthTotal.WithLabelValues(telemetry.ResultFailed).Inc()
	return "", fmt.Errorf("%w: %w", ErrAuthUnavailable, err)
}

// login отправляет payload и запрашивает профиль.
//
// Если backend не знает аккаунт, выполняется одна регистрация с inviter id
// из start parameter, короткая пауза и один повторный логин.
func (w *Worker) login(ctx context.Context, logger *slog.Logger, payload string) (*gameapi.Profile, error) {
	w.api.SetInitData(payload)

	registered := false
	for attempt := 1; attempt <= maxLoginAttempts; attempt++ {
		profile, err := w.api.UserInfo(ctx)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, gameapi.ErrUnknownAccount) {
			return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
		}
		if registered {
			break
		}

		w.setState(domain.WorkerStateRegistering)

		inviter, err := inviterID(payload)
		if err != nil {
			return nil, err
		}
		if err := w.api.Register(ctx, inviter); err != nil {
			return nil, fmt.Errorf("%w: register: %w", ErrLoginFailed, err)
		}
		registered = true
		logger.Info("account registered", "inviter_id", inviter)

		if _, err := jitter.SleepRange(ctx, w.policy.RegisterWait); err != nil {
			return nil, err
		}
		w.setState(domain.WorkerStateAuthenticating)
	}

	return nil, ErrRegistrationExhausted
}

// inviterID извлекает числовой inviter id из start parameter.
func inviterID(payload string) (int64, error) {
	param, err := auth.StartParam(payload)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidStartParam, err)
	}

	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStartParam, param)
	}
	return id, nil
}
