package postgres

import (
	"context"
	"testing"
	"time"

	"producers-avenue/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentEventRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentEventRepo(mock)
	ev := &domain.PaymentEvent{
		Provider:    domain.ProviderStripe,
		EventID:     "evt_1abc",
		EventType:   "payment_intent.succeeded",
		ProcessedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payment_events").
		WithArgs(ev.Provider, ev.EventID, ev.EventType, ev.ProcessedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, ev)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentEventRepo_Exists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentEventRepo(mock)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(domain.ProviderPayPal, "WH-2WR32451HC").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), domain.ProviderPayPal, "WH-2WR32451HC")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentEventRepo_Exists_False(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentEventRepo(mock)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(domain.ProviderStripe, "evt_new").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.Exists(context.Background(), domain.ProviderStripe, "evt_new")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
