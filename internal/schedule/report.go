package schedule

import (
	"time"

	"github.com/google/uuid"
)

// ItemOutcome 批处理中单条条目的处理结果
type ItemOutcome string

const (
	OutcomeCreated       ItemOutcome = "created"
	OutcomeSkippedDay    ItemOutcome = "skipped_day"
	OutcomeSkippedExists ItemOutcome = "skipped_exists"
	OutcomeSkippedRaced  ItemOutcome = "skipped_raced"
	OutcomeReminded      ItemOutcome = "reminded"
	OutcomeEscalated     ItemOutcome = "escalated"
	OutcomeFailed        ItemOutcome = "failed"
)

type ItemResult struct {
	ItemID  int64       `json:"item_id"`
	Outcome ItemOutcome `json:"outcome"`
	Reason  string      `json:"reason,omitempty"`
}

// RunReport 一轮任务的结构化摘要，单条失败只进 Items，不升级为任务失败
type RunReport struct {
	RunID     string        `json:"run_id"`
	Job       string        `json:"job"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ms"`
	Items     []ItemResult  `json:"items"`
}

func newRunReport(job string) *RunReport {
	return &RunReport{
		RunID:     uuid.NewString(),
		Job:       job,
		StartedAt: time.Now(),
	}
}

func (r *RunReport) add(itemID int64, outcome ItemOutcome, err error) {
	result := ItemResult{ItemID: itemID, Outcome: outcome}
	if err != nil {
		result.Reason = err.Error()
	}
	r.Items = append(r.Items, result)
}

func (r *RunReport) Count(outcome ItemOutcome) int {
	n := 0
	for _, item := range r.Items {
		if item.Outcome == outcome {
			n++
		}
	}
	return n
}

// Summary 各结果的计数，日志和触发接口共用
func (r *RunReport) Summary() map[string]int {
	summary := make(map[string]int)
	for _, item := range r.Items {
		summary[string(item.Outcome)]++
	}
	return summary
}
