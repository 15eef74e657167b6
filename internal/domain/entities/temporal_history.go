package entities

import (
	"fmt"
	"time"
)

// TemporalHistory holds the order timestamps. Every set timestamp must be
// at or after the previous one: creation <= start <= finish <= delivery.
type TemporalHistory struct {
	createdAt          time.Time
	executionStartedAt *time.Time
	finishedAt         *time.Time
	deliveredAt        *time.Time
}

func NewTemporalHistory(createdAt time.Time, executionStartedAt, finishedAt, deliveredAt *time.Time) (TemporalHistory, error) {
	if createdAt.IsZero() {
		return TemporalHistory{}, &DomainRuleError{Code: ErrInvalidTemporalHistory.Code, Message: "creation timestamp is required"}
	}

	steps := []struct {
		name string
		at   *time.Time
	}{
		{"execution start", executionStartedAt},
		{"finalization", finishedAt},
		{"delivery", deliveredAt},
	}

	prevName, prev := "creation", createdAt
	for _, step := range steps {
		if step.at == nil {
			continue
		}
		if step.at.Before(prev) {
			return TemporalHistory{}, &DomainRuleError{
				Code:    ErrInvalidTemporalHistory.Code,
				Message: fmt.Sprintf("%s (%s) is before %s (%s)", step.name, step.at.Format(time.RFC3339Nano), prevName, prev.Format(time.RFC3339Nano)),
			}
		}
		prevName, prev = step.name, *step.at
	}

	return TemporalHistory{
		createdAt:          createdAt.UTC(),
		executionStartedAt: utcPtr(executionStartedAt),
		finishedAt:         utcPtr(finishedAt),
		deliveredAt:        utcPtr(deliveredAt),
	}, nil
}

func (h TemporalHistory) CreatedAt() time.Time { return h.createdAt }

func (h TemporalHistory) ExecutionStartedAt() *time.Time { return copyPtr(h.executionStartedAt) }

func (h TemporalHistory) FinishedAt() *time.Time { return copyPtr(h.finishedAt) }

func (h TemporalHistory) DeliveredAt() *time.Time { return copyPtr(h.deliveredAt) }

func (h TemporalHistory) withExecutionStart(at time.Time) (TemporalHistory, error) {
	return NewTemporalHistory(h.createdAt, &at, h.finishedAt, h.deliveredAt)
}

func (h TemporalHistory) withoutExecutionStart() (TemporalHistory, error) {
	return NewTemporalHistory(h.createdAt, nil, h.finishedAt, h.deliveredAt)
}

func (h TemporalHistory) withFinish(at time.Time) (TemporalHistory, error) {
	return NewTemporalHistory(h.createdAt, h.executionStartedAt, &at, h.deliveredAt)
}

func (h TemporalHistory) withDelivery(at time.Time) (TemporalHistory, error) {
	return NewTemporalHistory(h.createdAt, h.executionStartedAt, h.finishedAt, &at)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func copyPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
