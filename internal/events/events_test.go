package events

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	require.True(t, Match(AllSubjects, SubmissionGraded))
	require.True(t, Match("learncenter.submission.*", SubmissionSubmitted))
	require.True(t, Match(PaymentLogged, PaymentLogged))
	require.False(t, Match("learncenter.submission.*", PaymentLogged))
	require.False(t, Match(AllSubjects, "learncenter"))
	require.False(t, Match("learncenter.student", StudentChanged))
}

func TestLocalBusDispatchesToMatchingSubscribers(t *testing.T) {
	bus := NewLocalBus(zerolog.Nop())

	var all, graded []Event
	require.NoError(t, bus.Subscribe(AllSubjects, func(_ context.Context, event Event) {
		all = append(all, event)
	}))
	require.NoError(t, bus.Subscribe(SubmissionGraded, func(_ context.Context, event Event) {
		graded = append(graded, event)
	}))

	require.NoError(t, bus.Publish(context.Background(), Event{Subject: SubmissionSubmitted, EntityID: 1}))
	require.NoError(t, bus.Publish(context.Background(), Event{Subject: SubmissionGraded, EntityID: 2, StudentID: 9}))

	require.Len(t, all, 2)
	require.Len(t, graded, 1)
	require.Equal(t, uint(9), graded[0].StudentID)
	require.False(t, graded[0].OccurredAt.IsZero())

	require.NoError(t, bus.Close())
	require.NoError(t, bus.Publish(context.Background(), Event{Subject: PaymentLogged}))
	require.Len(t, all, 2)
}
