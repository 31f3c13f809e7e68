package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 通知投递指标。skipped 的 reason 取值：
// preference / rate_limit / quiet_hours / dedup / send_failed / preference_error / ledger_error
var (
	notifySentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crew",
		Subsystem: "notify",
		Name:      "sent_total",
		Help:      "成功投递并记账的通知条数",
	}, []string{"type"})

	notifySkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crew",
		Subsystem: "notify",
		Name:      "skipped_total",
		Help:      "被过滤管道拦下的通知条数",
	}, []string{"type", "reason"})

	reminderSweepTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "crew",
		Subsystem: "notify",
		Name:      "reminder_sweeps_total",
		Help:      "活动提醒扫描轮数",
	})
)
