package worker

import (
	"context"
	"log/slog"

	"github.com/shaiso/Autofarm/internal/auth"
	"github.com/shaiso/Autofarm/internal/domain"
	"github.com/shaiso/Autofarm/internal/jitter"
	"github.com/shaiso/Autofarm/internal/telemetry"
)

// processTasks проходит по списку заданий в порядке backend'а.
//
// Скрытые, выполненные, отключённые и invite-задания не трогаются.
// Каждый id обрабатывается не больше одного раза за проход. Ошибка одного
// задания логируется и не прерывает проход; наружу выходят только ошибка
// получения списка, фатальная ошибка сессии и отмена ctx.
func (w *Worker) processTasks(ctx context.Context, logger *slog.Logger) (int, error) {
	tasks, err := w.api.ListTasks(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[domain.TaskID]struct{}, len(tasks))
	verified := 0

	for i := range tasks {
		task := &tasks[i]

		if _, dup := seen[task.ID]; dup {
			logger.Debug("duplicate task skipped", "task_id", task.ID)
			continue
		}
		seen[task.ID] = struct{}{}

		if reason := w.settings.Tasks.SkipReason(task); reason != "" {
			logger.Debug("task skipped", "task_id", task.ID, "title", task.Title, "reason", reason)
			telemetry.TasksTotal.WithLabelValues(telemetry.ResultSkipped).Inc()
			continue
		}

		ok, err := w.performTask(ctx, logger, task)
		if err != nil {
			if ctx.Err() != nil || auth.IsFatal(err) {
				return verified, err
			}
			telemetry.TasksTotal.WithLabelValues(telemetry.ResultFailed).Inc()
			if err := w.contain(ctx, logger, "task", err); err != nil {
				return verified, err
			}
		} else if ok {
			verified++
			telemetry.TasksTotal.WithLabelValues(telemetry.ResultSuccess).Inc()
			logger.Info("task completed", "task_id", task.ID, "title", task.Title, "reward", string(task.Amount))
		} else {
			telemetry.TasksTotal.WithLabelValues(telemetry.ResultFailed).Inc()
			logger.Info("task not completed", "task_id", task.ID, "title", task.Title)
		}

		if _, err := jitter.SleepRange(ctx, w.policy.InterTask); err != nil {
			return verified, err
		}
	}

	return verified, nil
}

// performTask выполняет side effect задания и запрашивает проверку.
func (w *Worker) performTask(ctx context.Context, logger *slog.Logger, task *domain.Task) (bool, error) {
	if task.IsChannelJoin() && w.joiner != nil {
		channel := auth.ChannelRef(task.Link)
		logger.Info("joining channel", "task_id", task.ID, "channel", channel)

		if err := w.joiner.JoinChannel(ctx, w.account.Session, w.account.Proxy, channel); err != nil {
			if auth.IsFatal(err) || ctx.Err() != nil {
				return false, err
			}
			// Backend сам решит, засчитать ли задание.
			logger.Warn("channel join failed", "channel", channel, "error", err)
		}
	} else {
		logger.Info("performing task", "task_id", task.ID, "title", task.Title)
	}

	return w.api.ClaimTask(ctx, task.ID)
}
