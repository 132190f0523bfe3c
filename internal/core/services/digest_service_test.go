package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	"github.com/lorrc/asset-desk-backend/internal/core/mocks"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
	"github.com/lorrc/asset-desk-backend/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDigestService_SendOverdueDigest(t *testing.T) {
	ctx := context.Background()

	yesterday := fixedNow.Add(-24 * time.Hour)
	lastWeek := fixedNow.Add(-7 * 24 * time.Hour)
	tomorrow := fixedNow.Add(24 * time.Hour)

	mk := func(id, responsible string, due *time.Time) domain.Record {
		return domain.TicketRecord(&domain.Ticket{
			ID:          id,
			Title:       "Chamado " + id,
			Status:      domain.StatusOpen,
			Responsible: responsible,
			CreatedAt:   fixedNow.Add(-10 * 24 * time.Hour),
			DueAt:       due,
		})
	}

	records := []domain.Record{
		mk("1", "joao", &yesterday),
		mk("2", "joao", &lastWeek),
		mk("3", "ana", &lastWeek),
		mk("4", "ana", &tomorrow),
		mk("5", "", &lastWeek),
		mk("6", "carla", nil),
	}

	source := mocks.NewMockRecordSource()
	notifier := mocks.NewMockNotifier()
	svc := services.NewDigestService(source, notifier, time.UTC, services.FixedClock(fixedNow), testLogger())

	source.On("List", ctx, domain.KindTicket, mock.MatchedBy(func(q ports.RecordQuery) bool {
		return len(q.StatusIn) == 3
	})).Return(records, nil)

	var sent []ports.NotificationParams
	notifier.On("Notify", ctx, mock.Anything).Run(func(args mock.Arguments) {
		sent = append(sent, args.Get(1).(ports.NotificationParams))
	}).Return()

	n, err := svc.SendOverdueDigest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, sent, 2)

	assert.Equal(t, "ana", sent[0].Recipient)
	assert.Equal(t, "1 chamado(s) em atraso", sent[0].Subject)
	assert.Contains(t, sent[0].Message, "[3]")

	assert.Equal(t, "joao", sent[1].Recipient)
	assert.Equal(t, "2 chamado(s) em atraso", sent[1].Subject)
	assert.Equal(t, 2, strings.Count(sent[1].Message, "\n"))
}

func TestDigestService_SourceError(t *testing.T) {
	ctx := context.Background()
	source := mocks.NewMockRecordSource()
	notifier := mocks.NewMockNotifier()
	svc := services.NewDigestService(source, notifier, time.UTC, services.FixedClock(fixedNow), testLogger())

	boom := errors.New("timeout")
	source.On("List", ctx, domain.KindTicket, mock.Anything).Return(nil, boom)

	n, err := svc.SendOverdueDigest(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, n)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}
