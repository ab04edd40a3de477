package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"healthsure/internal/domain/entity"
	"healthsure/internal/infrastructure/cache"
	"healthsure/internal/onboarding"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newNoopLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestCache(t *testing.T) (*cache.JSONCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewJSONCache(client), mr
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, db *gorm.DB, log *entity.AuditLog) error {
	return m.Called(ctx, db, log).Error(0)
}

func (m *AuditRepoMock) FindAll(ctx context.Context, db *gorm.DB) ([]entity.AuditLog, error) {
	args := m.Called(ctx, db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AuditLog), args.Error(1)
}

func (m *AuditRepoMock) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.AuditLog, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuditLog), args.Error(1)
}

func TestAuditService_LogUpdate(t *testing.T) {
	repo := new(AuditRepoMock)
	repo.On("Create", mock.Anything, (*gorm.DB)(nil), mock.MatchedBy(func(l *entity.AuditLog) bool {
		return l.Action == entity.AuditActionPolicyCancel &&
			l.Entity == entity.AuditEntityPolicy &&
			l.EntityID == "7" &&
			l.Metadata["old_value"] == "ACTIVE" &&
			l.Metadata["new_value"] == "CANCELLED"
	})).Return(nil).Once()

	svc := NewAuditService(newNoopLogger(), repo)
	err := svc.LogUpdate(context.Background(), nil, entity.AuditActionPolicyCancel, entity.AuditEntityPolicy, "7", "ACTIVE", "CANCELLED")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestAuditService_ReturnsRepositoryError(t *testing.T) {
	repo := new(AuditRepoMock)
	repo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down")).Twice()

	svc := NewAuditService(newNoopLogger(), repo)
	assert.Error(t, svc.LogCreate(context.Background(), nil, entity.AuditActionPatientCreate, entity.AuditEntityPatient, "1", nil))
	assert.Error(t, svc.LogDelete(context.Background(), nil, entity.AuditActionPatientDelete, entity.AuditEntityPatient, "1", nil))
	repo.AssertExpectations(t)
}

func TestDashboardCache_LoadsOnceThenHits(t *testing.T) {
	jc, mr := newTestCache(t)
	dc := NewDashboardCache(jc, time.Minute, newNoopLogger())

	var calls atomic.Int32
	load := func(ctx context.Context) (*entity.DashboardStats, error) {
		calls.Add(1)
		return &entity.DashboardStats{TotalPolicies: 4, ActivePolicies: 3, ExpiringSoon: 1}, nil
	}

	first, err := dc.Stats(context.Background(), load)
	require.NoError(t, err)
	second, err := dc.Stats(context.Background(), load)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists(DashboardCacheKey))
	assert.Equal(t, time.Minute, mr.TTL(DashboardCacheKey))
}

func TestDashboardCache_InvalidateForcesReload(t *testing.T) {
	jc, mr := newTestCache(t)
	dc := NewDashboardCache(jc, time.Minute, newNoopLogger())

	total := int64(1)
	load := func(ctx context.Context) (*entity.DashboardStats, error) {
		return &entity.DashboardStats{TotalPolicies: total}, nil
	}

	_, err := dc.Stats(context.Background(), load)
	require.NoError(t, err)

	total = 2
	dc.Invalidate(context.Background())
	assert.False(t, mr.Exists(DashboardCacheKey))

	stats, err := dc.Stats(context.Background(), load)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalPolicies)
}

func TestDashboardCache_FallsBackWhenRedisDown(t *testing.T) {
	jc, mr := newTestCache(t)
	dc := NewDashboardCache(jc, time.Minute, newNoopLogger())
	mr.Close()

	stats, err := dc.Stats(context.Background(), func(ctx context.Context) (*entity.DashboardStats, error) {
		return &entity.DashboardStats{TotalPolicies: 9}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(9), stats.TotalPolicies)
}

func TestDashboardCache_LoadError(t *testing.T) {
	jc, mr := newTestCache(t)
	dc := NewDashboardCache(jc, time.Minute, newNoopLogger())

	_, err := dc.Stats(context.Background(), func(ctx context.Context) (*entity.DashboardStats, error) {
		return nil, errors.New("query failed")
	})

	assert.EqualError(t, err, "query failed")
	assert.False(t, mr.Exists(DashboardCacheKey))
}

// countingCache counts lookups so tests can tell when callers reached the load.
type countingCache struct {
	Cache
	gets atomic.Int32
}

func (c *countingCache) Get(ctx context.Context, key string, result any) (bool, error) {
	found, err := c.Cache.Get(ctx, key, result)
	c.gets.Add(1)
	return found, err
}

func TestDashboardCache_CollapsesConcurrentMisses(t *testing.T) {
	jc, _ := newTestCache(t)
	counting := &countingCache{Cache: jc}
	dc := NewDashboardCache(counting, time.Minute, newNoopLogger())

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(ctx context.Context) (*entity.DashboardStats, error) {
		calls.Add(1)
		<-release
		return &entity.DashboardStats{TotalPolicies: 1}, nil
	}

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats, err := dc.Stats(context.Background(), load)
			assert.NoError(t, err)
			assert.Equal(t, int64(1), stats.TotalPolicies)
		}()
	}

	require.Eventually(t, func() bool { return counting.gets.Load() == 5 }, time.Second, time.Millisecond)
	// The load is held open, so every caller past its lookup joins it.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestDashboardCache_LoadSurvivesCallerCancel(t *testing.T) {
	jc, _ := newTestCache(t)
	dc := NewDashboardCache(jc, time.Minute, newNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := dc.Stats(ctx, func(ctx context.Context) (*entity.DashboardStats, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &entity.DashboardStats{TotalPolicies: 4}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalPolicies)
}

func TestDashboardCache_InvalidateDuringLoadSkipsWrite(t *testing.T) {
	jc, mr := newTestCache(t)
	dc := NewDashboardCache(jc, time.Minute, newNoopLogger())

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := dc.Stats(context.Background(), func(context.Context) (*entity.DashboardStats, error) {
			close(started)
			<-release
			return &entity.DashboardStats{TotalPolicies: 1}, nil
		})
		assert.NoError(t, err)
	}()

	<-started
	dc.Invalidate(context.Background())
	close(release)
	<-done

	assert.False(t, mr.Exists(DashboardCacheKey))

	stats, err := dc.Stats(context.Background(), func(context.Context) (*entity.DashboardStats, error) {
		return &entity.DashboardStats{TotalPolicies: 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalPolicies)
	assert.True(t, mr.Exists(DashboardCacheKey))
}

type expirerFunc func(ctx context.Context) (int, error)

func (f expirerFunc) ExpireEnded(ctx context.Context) (int, error) { return f(ctx) }

func TestExpirySweeper_RunsImmediatelyAndStops(t *testing.T) {
	var calls atomic.Int32
	sweeper := NewExpirySweeper(expirerFunc(func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 2, nil
	}), 10*time.Millisecond, newNoopLogger())

	sweeper.Start()
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	sweeper.Stop()
	sweeper.Stop()
	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, calls.Load())
}

func TestExpirySweeper_DisabledWithZeroInterval(t *testing.T) {
	var calls atomic.Int32
	sweeper := NewExpirySweeper(expirerFunc(func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, nil
	}), 0, newNoopLogger())

	sweeper.Start()
	sweeper.Stop()
	assert.Zero(t, calls.Load())
}

func TestExpirySweeper_KeepsRunningAfterError(t *testing.T) {
	var calls atomic.Int32
	sweeper := NewExpirySweeper(expirerFunc(func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.New("db down")
	}), 10*time.Millisecond, newNoopLogger())

	sweeper.Start()
	defer sweeper.Stop()
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestSessionStore_SaveLoadDelete(t *testing.T) {
	jc, mr := newTestCache(t)
	store := NewSessionStore(jc, 30*time.Minute)
	ctx := context.Background()

	session := onboarding.NewSession("s-1", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	session.Data.FirstName = "Jane"
	session.Step = onboarding.StepDetails
	require.NoError(t, store.Save(ctx, session))
	assert.Equal(t, 30*time.Minute, mr.TTL(onboardingKeyPrefix+"s-1"))

	loaded, err := store.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, onboarding.StepDetails, loaded.Step)
	assert.Equal(t, "Jane", loaded.Data.FirstName)
	assert.True(t, session.CreatedAt.Equal(loaded.CreatedAt))

	require.NoError(t, store.Delete(ctx, "s-1"))
	_, err = store.Load(ctx, "s-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_Expires(t *testing.T) {
	jc, mr := newTestCache(t)
	store := NewSessionStore(jc, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, onboarding.NewSession("s-2", time.Now())))
	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "s-2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRecordPolicyTransition_IgnoresZero(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordPolicyTransition(string(entity.PolicyStatusExpired), 0)
		RecordPolicyTransition(string(entity.PolicyStatusExpired), 3)
	})
}
