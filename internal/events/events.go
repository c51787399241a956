// Package events carries domain events between services. Events are published
// on NATS when a connection is configured and dispatched in-process otherwise.
package events

import (
	"context"
	"strings"
	"time"
)

// Subjects published by the services.
const (
	SubjectPrefix       = "learncenter"
	SubmissionSubmitted = SubjectPrefix + ".submission.submitted"
	SubmissionGraded    = SubjectPrefix + ".submission.graded"
	AttendanceMarked    = SubjectPrefix + ".attendance.marked"
	StudentChanged      = SubjectPrefix + ".student.changed"
	PaymentLogged       = SubjectPrefix + ".payment.logged"
	TaskDeleted         = SubjectPrefix + ".task.deleted"
	AllSubjects         = SubjectPrefix + ".>"
)

// Event is the payload shared by all subjects.
type Event struct {
	Subject       string    `json:"subject"`
	EntityID      uint      `json:"entity_id"`
	StudentID     uint      `json:"student_id,omitempty"`
	ActorID       *uint     `json:"actor_id,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Handler consumes an event.
type Handler func(ctx context.Context, event Event)

// Bus publishes events and fans them out to subscribers.
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(pattern string, handler Handler) error
	Close() error
}

// Match reports whether a subject matches a NATS-style pattern. "*" matches one
// token and a trailing ">" matches one or more tokens.
func Match(pattern, subject string) bool {
	patternTokens := strings.Split(pattern, ".")
	subjectTokens := strings.Split(subject, ".")

	for i, token := range patternTokens {
		if token == ">" {
			return len(subjectTokens) > i
		}
		if i >= len(subjectTokens) {
			return false
		}
		if token != "*" && token != subjectTokens[i] {
			return false
		}
	}

	return len(patternTokens) == len(subjectTokens)
}
