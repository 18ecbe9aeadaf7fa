// Package scheduler запускает периодические задачи фермы по cron.
//
// Используется для сводного отчёта о состоянии аккаунтов (REPORT_CRON).
// Циклы самих воркеров не зависят от планировщика: их интервал задаёт SLEEP_TIME.
//
// Использование:
//
//	sched, err := scheduler.New(scheduler.Config{
//	    Name:     "status-report",
//	    CronExpr: "*/30 * * * *",
//	    Job:      orch.Report,
//	    Logger:   logger,
//	})
//	go sched.Run(ctx)
package scheduler
