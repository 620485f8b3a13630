package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/storage-indexer/internal/config"
	"github.com/markdave123-py/storage-indexer/internal/core"
	"github.com/markdave123-py/storage-indexer/internal/core/ingestion_engine"
	"github.com/markdave123-py/storage-indexer/internal/models"
)

type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) Run(ctx context.Context, bucket, key string, opts ingestion_engine.RunOptions) (*models.IndexRunResult, error) {
	args := m.Called(ctx, bucket, key, opts)
	res, _ := args.Get(0).(*models.IndexRunResult)
	return res, args.Error(1)
}

func TestIndexService_Index(t *testing.T) {
	m := &mockIndexer{}
	want := &models.IndexRunResult{Bucket: "b", Key: "k.pdf", Pages: 1, Inserted: 2}
	opts := ingestion_engine.RunOptions{Overwrite: true}
	m.On("Run", mock.Anything, "b", "k.pdf", opts).Return(want, nil).Once()

	got, err := NewIndexService(m, config.Backend{}).Index(context.Background(), "b", "k.pdf", opts)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	m.AssertExpectations(t)
}

func TestIndexService_BadRequest(t *testing.T) {
	m := &mockIndexer{}
	_, err := NewIndexService(m, config.Backend{}).Index(context.Background(), "", "k.pdf", ingestion_engine.RunOptions{})
	assert.ErrorIs(t, err, core.ErrBadRequest)
	m.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIndexService_Diagnose(t *testing.T) {
	svc := NewIndexService(&mockIndexer{}, config.Backend{EmbeddingAPIKey: "k"})
	assert.Equal(t, models.Diagnostic{HasEmbeddingCredential: true}, svc.Diagnose())
}

// slowIndexer records the peak number of concurrent runs.
type slowIndexer struct {
	active atomic.Int32
	peak   atomic.Int32
}

func (s *slowIndexer) Run(context.Context, string, string, ingestion_engine.RunOptions) (*models.IndexRunResult, error) {
	n := s.active.Add(1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	s.active.Add(-1)
	return &models.IndexRunResult{}, nil
}

func TestIndexService_SerializesSameObject(t *testing.T) {
	ix := &slowIndexer{}
	svc := NewIndexService(ix, config.Backend{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Index(context.Background(), "b", "same.pdf", ingestion_engine.RunOptions{})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ix.peak.Load())
	assert.Zero(t, svc.locks.size())
}

func TestKeyedMutex_DistinctKeysIndependent(t *testing.T) {
	k := NewKeyedMutex()

	unlockA, err := k.Lock(context.Background(), "a")
	require.NoError(t, err)

	unlockB, err := k.Lock(context.Background(), "b")
	require.NoError(t, err)

	unlockB()
	unlockA()
	unlockA() // double release is a no-op
	assert.Zero(t, k.size())
}

func TestKeyedMutex_ContextCancel(t *testing.T) {
	k := NewKeyedMutex()
	unlock, err := k.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = k.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, k.size())
}

func TestIndexService_CancelledWaitIsTagged(t *testing.T) {
	m := &mockIndexer{}
	svc := NewIndexService(m, config.Backend{})

	unlock, err := svc.locks.Lock(context.Background(), "b/busy.pdf")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = svc.Index(ctx, "b", "busy.pdf", ingestion_engine.RunOptions{})
	require.Error(t, err)
	step, ok := core.StepOf(err)
	require.True(t, ok)
	assert.Equal(t, core.StepInit, step)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "STEP:init | wait for b/busy.pdf: context deadline exceeded", err.Error())
	m.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
