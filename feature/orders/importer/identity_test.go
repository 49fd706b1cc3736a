package importer

import (
	"context"
	"errors"
	"testing"

	"order-importer/feature/orders/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// recordingStore wraps a MemoryStore and records the transaction calls
// that matter for identity assignment, in the order the engine issues
// them. restoreErr, when set, makes SetOrderIdentity(false) fail.
type recordingStore struct {
	inner      *MemoryStore
	calls      []string
	restoreErr error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{inner: NewMemoryStore()}
}

func (s *recordingStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.inner.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &recordingTx{Tx: tx, store: s}, nil
}

type recordingTx struct {
	Tx
	store *recordingStore
}

func (t *recordingTx) AddOrder(order *models.Order) error {
	t.store.calls = append(t.store.calls, "stage")
	return t.Tx.AddOrder(order)
}

func (t *recordingTx) Flush() error {
	t.store.calls = append(t.store.calls, "flush")
	return t.Tx.Flush()
}

func (t *recordingTx) SetOrderIdentity(enabled bool) error {
	if enabled {
		t.store.calls = append(t.store.calls, "identity:on")
		return t.Tx.SetOrderIdentity(true)
	}
	t.store.calls = append(t.store.calls, "identity:off")
	if t.store.restoreErr != nil {
		return t.store.restoreErr
	}
	return t.Tx.SetOrderIdentity(false)
}

func (t *recordingTx) Commit() error {
	t.store.calls = append(t.store.calls, "commit")
	return t.Tx.Commit()
}

func (t *recordingTx) Rollback() error {
	t.store.calls = append(t.store.calls, "rollback")
	return t.Tx.Rollback()
}

func TestReconcile_IdentityToggleOrdering(t *testing.T) {
	store := newRecordingStore()
	engine := NewEngine(store, zap.NewNop())

	_, err := engine.Reconcile(context.Background(), scenarioBatch())
	require.NoError(t, err)

	// Explicit id writes are enabled before any order is staged and
	// disabled again before the commit.
	assert.Equal(t, []string{"identity:on", "stage", "flush", "identity:off", "commit"}, store.calls)
}

func TestReconcile_IdentityRestoredOnFailure(t *testing.T) {
	store := newRecordingStore()
	engine := NewEngine(store, zap.NewNop())

	batch := scenarioBatch()
	batch[0].RegDate = "not-a-date"

	_, err := engine.Reconcile(context.Background(), batch)
	require.Error(t, err)

	assert.Equal(t, []string{"identity:on", "identity:off", "rollback"}, store.calls)
	assert.Empty(t, store.inner.Orders())
}

func TestReconcile_RestoreErrorDoesNotMaskBatchError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := newRecordingStore()
	store.restoreErr = errors.New("toggle lost")
	engine := NewEngine(store, zap.New(core))

	batch := scenarioBatch()
	batch[0].RegDate = "not-a-date"

	_, err := engine.Reconcile(context.Background(), batch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reg_date")
	assert.NotContains(t, err.Error(), "toggle lost")

	// The failed restore is logged, not returned.
	entries := logs.FilterMessage("Failed to restore order identity assignment").All()
	require.Len(t, entries, 1)
}

func TestReconcile_RestoreErrorFailsHealthyBatch(t *testing.T) {
	store := newRecordingStore()
	store.restoreErr = errors.New("toggle lost")
	engine := NewEngine(store, zap.NewNop())

	_, err := engine.Reconcile(context.Background(), scenarioBatch())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "restore order identity")

	// The commit never ran and the batch is not visible.
	assert.NotContains(t, store.calls, "commit")
	assert.Contains(t, store.calls, "rollback")
	assert.Empty(t, store.inner.Orders())
}
