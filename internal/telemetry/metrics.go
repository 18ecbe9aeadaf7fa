package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты для label "result".
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
	ResultFatal   = "fatal"
)

var (
	// CyclesTotal — завершённые циклы по статусу.
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autofarm_cycles_total",
		Help: "Finished account cycles by result.",
	}, []string{"result"})

	// AuthTotal — попытки получить init data.
	AuthTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autofarm_auth_total",
		Help: "Init data acquisition attempts by result.",
	}, []string{"result"})

	// TasksTotal — обработанные задания.
	TasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autofarm_tasks_total",
		Help: "Processed tasks by result.",
	}, []string{"result"})

	// RewardClaimsTotal — попытки забрать награду.
	RewardClaimsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autofarm_reward_claims_total",
		Help: "Periodic reward claim attempts by result.",
	}, []string{"result"})

	// AccountBalance — последний известный суммарный баланс.
	AccountBalance = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "autofarm_account_balance",
		Help: "Last observed total balance per account.",
	}, []string{"account"})

	// WorkersActive — число запущенных воркеров.
	WorkersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "autofarm_workers_active",
		Help: "Account workers currently running.",
	})
)
