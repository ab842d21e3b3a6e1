package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/entity"
)

func openSQLite(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{
		Driver:      DialectSQLite,
		DSN:         "file:" + filepath.Join(t.TempDir(), "billbot.db"),
		DialTimeout: time.Second,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, nil) })
	return db
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle"}, nil)
	assert.Error(t, err)
}

func TestSQLite_UserRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	require.NoError(t, HealthCheck(ctx, db, time.Second, nil))
	s := NewSQLUserStore(db, nil)

	_, err := s.Create(ctx, "whatsapp:+91")
	require.NoError(t, err)
	_, err = s.Create(ctx, "whatsapp:+91")
	require.NoError(t, err)

	awaiting := constants.StateAwaitingInfo
	qty := 10.0
	u, err := s.Update(ctx, "whatsapp:+91", entity.UserUpdate{
		State:        &awaiting,
		Company:      &entity.CompanyProfile{Name: strp("Acme")},
		SetPending:   true,
		PendingOrder: &entity.PartialOrder{Items: []entity.LineItem{{Name: "Rice", Qty: &qty}}},
	})
	require.NoError(t, err)
	assert.Equal(t, constants.StateAwaitingInfo, u.State)

	require.NoError(t, s.AppendLog(ctx, "whatsapp:+91", entity.LogEntry{Timestamp: time.Now().UTC(), Inbound: "10 rice", Outbound: "need more"}))

	got, err := s.Get(ctx, "whatsapp:+91")
	require.NoError(t, err)
	assert.Equal(t, "Acme", *got.Company.Name)
	require.NotNil(t, got.PendingOrder)
	assert.Equal(t, "Rice", got.PendingOrder.Items[0].Name)
	assert.Nil(t, got.PendingOrder.Items[0].Rate)
	require.Len(t, got.ConversationLog, 1)

	ready := constants.StateReady
	got, err = s.Update(ctx, "whatsapp:+91", entity.UserUpdate{State: &ready, SetPending: true})
	require.NoError(t, err)
	assert.Nil(t, got.PendingOrder)
}

func TestSQLite_InvoiceLedger(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	r := NewInvoiceRepository(db, nil)

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	first := &entity.Invoice{Identity: "a", Number: "INV-1", Customer: "Ramesh", Filename: "f1.pdf", Path: "/tmp/f1.pdf", ItemCount: 1, Subtotal: 500, CGST: 45, SGST: 45, Total: 590, CreatedAt: base}
	require.NoError(t, r.Record(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)
	require.NoError(t, r.Record(ctx, &entity.Invoice{Identity: "a", Number: "INV-2", Customer: "Suresh", CreatedAt: base.Add(24 * time.Hour)}))
	require.NoError(t, r.Record(ctx, &entity.Invoice{Identity: "b", Number: "INV-3", Customer: "X", CreatedAt: base}))

	list, err := r.ListByIdentity(ctx, "a", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, 590.0, list[0].Total)

	list, err = r.ListByIdentity(ctx, "a", time.Time{}, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "INV-1", list[0].Number)
}
