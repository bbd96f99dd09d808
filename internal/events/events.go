package events

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
)

const (
	TypeAssignmentCreated = "assignment.created"
	TypeAssignmentDeleted = "assignment.deleted"
)

// Event 是排班生命周期事件，由外部模块（例如通知）消费
type Event struct {
	Type       string                 `json:"type"`
	Assignment domain.ShiftAssignment `json:"assignment"`
	OccurredAt time.Time              `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
