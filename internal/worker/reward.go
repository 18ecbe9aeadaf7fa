package worker

import (
	"context"
	"log/slog"

	"github.com/shaiso/Autofarm/internal/telemetry"
)

// claimReward забирает награду, если cooldown истёк.
//
// claimed_at берётся из свежего профиля и объединяется с локальным временем
// последней награды. Нераспознанный claimed_at — ошибка gameapi.ErrDataParse,
// награда в этом цикле не запрашивается.
func (w *Worker) claimReward(ctx context.Context, logger *slog.Logger) (bool, error) {
	profile, err := w.api.UserInfo(ctx)
	if err != nil {
		return false, err
	}

	claim, err := profile.RewardClaim()
	if err != nil {
		telemetry.RewardClaimsTotal.WithLabelValues(telemetry.ResultFailed).Inc()
		return false, err
	}
	claim = claim.Merge(w.lastClaim)

	now := w.now()
	if !claim.Eligible(now) {
		telemetry.RewardClaimsTotal.WithLabelValues(telemetry.ResultSkipped).Inc()
		logger.Info("reward not available yet", "available_at", claim.AvailableAt())
		return false, nil
	}

	if err := w.api.ClaimReward(ctx); err != nil {
		telemetry.RewardClaimsTotal.WithLabelValues(telemetry.ResultFailed).Inc()
		return false, err
	}

	w.lastClaim = &now
	telemetry.RewardClaimsTotal.WithLabelValues(telemetry.ResultSuccess).Inc()
	logger.Info("reward claimed")
	return true, nil
}
