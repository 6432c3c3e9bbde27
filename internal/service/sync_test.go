package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"devlog_notifier/internal/config"
	"devlog_notifier/internal/domain"
	"devlog_notifier/internal/service/mocks"
	"devlog_notifier/internal/source/flavortown"
)

// stubReconciler scripts per-project outcomes and records visit order.
type stubReconciler struct {
	results map[int64]*domain.DeltaResult
	errs    map[int64]error
	calls   []int64
}

func (r *stubReconciler) Reconcile(_ context.Context, _ ProjectClient, projectID int64) (*domain.DeltaResult, error) {
	r.calls = append(r.calls, projectID)
	if err := r.errs[projectID]; err != nil {
		return nil, err
	}
	if result, ok := r.results[projectID]; ok {
		return result, nil
	}
	return &domain.DeltaResult{ProjectID: projectID}, nil
}

// stubDispatcher records deliveries without touching any transport.
type stubDispatcher struct {
	channels []string
	results  []*domain.DeltaResult
}

func (d *stubDispatcher) Dispatch(_ context.Context, channel string, result *domain.DeltaResult) (int, bool) {
	d.channels = append(d.channels, channel)
	d.results = append(d.results, result)
	return len(result.NewDevlogs), result.Transition != domain.ShipStatusNone
}

type SyncServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	subscriptions *mocks.MockSubscriptionStore
	notifier      *mocks.MockNotifier
	reconciler    *stubReconciler
	dispatcher    *stubDispatcher
	factoryCalls  int

	service *SyncService
}

func (s *SyncServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.subscriptions = mocks.NewMockSubscriptionStore(s.ctrl)
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.reconciler = &stubReconciler{
		results: make(map[int64]*domain.DeltaResult),
		errs:    make(map[int64]error),
	}
	s.dispatcher = &stubDispatcher{}
	s.factoryCalls = 0

	registry := NewRegistry(func(string) ProjectClient {
		s.factoryCalls++
		return mocks.NewMockProjectClient(s.ctrl)
	})

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.service = NewSyncService(
		s.subscriptions,
		s.reconciler,
		s.dispatcher,
		s.notifier,
		registry,
		logger,
		config.SyncConfig{}, // zero delay keeps tests fast
	)
}

func (s *SyncServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}

func (s *SyncServiceTestSuite) TestSync_VisitsProjectsSequentially() {
	ctx := context.Background()

	s.subscriptions.EXPECT().ListActive(ctx).Return([]domain.Subscription{
		{APIKey: "key-a", Channel: "C1", ProjectIDs: []int64{1, 2}},
		{APIKey: "key-b", Channel: "C2", ProjectIDs: []int64{3}},
	}, nil)

	s.reconciler.results[1] = &domain.DeltaResult{
		ProjectID:  1,
		NewDevlogs: []domain.Devlog{{ID: 10}, {ID: 11}},
	}
	s.reconciler.results[3] = &domain.DeltaResult{
		ProjectID:  3,
		Transition: domain.ShipStatusSubmitted,
	}

	stats, err := s.service.Sync(ctx)

	s.NoError(err)
	s.Equal([]int64{1, 2, 3}, s.reconciler.calls)
	s.Equal([]string{"C1", "C1", "C2"}, s.dispatcher.channels)
	s.Equal(2, stats.Subscriptions)
	s.Equal(3, stats.Projects)
	s.Equal(2, stats.NewDevlogs)
	s.Equal(1, stats.Transitions)
	s.Equal(0, stats.Errors)
}

func (s *SyncServiceTestSuite) TestSync_ReusesClientPerKey() {
	ctx := context.Background()

	s.subscriptions.EXPECT().ListActive(ctx).Return([]domain.Subscription{
		{APIKey: "same-key", Channel: "C1", ProjectIDs: []int64{1}},
		{APIKey: "same-key", Channel: "C2", ProjectIDs: []int64{2}},
	}, nil)

	_, err := s.service.Sync(ctx)

	s.NoError(err)
	s.Equal(1, s.factoryCalls)
}

func (s *SyncServiceTestSuite) TestSync_DisablesOnUnauthorizedOnce() {
	ctx := context.Background()

	s.subscriptions.EXPECT().ListActive(ctx).Return([]domain.Subscription{
		{APIKey: "bad-key", Channel: "C1", ProjectIDs: []int64{1, 2, 3}},
	}, nil)

	s.reconciler.errs[1] = fmt.Errorf("get project 1: %w", flavortown.ErrUnauthorized)

	s.subscriptions.EXPECT().Disable(ctx, "bad-key").Return(true, nil)
	s.notifier.EXPECT().PostMessage(ctx, "C1", gomock.Any(), gomock.Any()).Return(nil)

	stats, err := s.service.Sync(ctx)

	s.NoError(err)
	// Remaining projects share the rejected key and are not polled.
	s.Equal([]int64{1}, s.reconciler.calls)
	s.Equal(1, stats.Disabled)
	s.Equal(1, stats.Errors)
}

func (s *SyncServiceTestSuite) TestSync_AlreadyDisabledStaysSilent() {
	ctx := context.Background()

	s.subscriptions.EXPECT().ListActive(ctx).Return([]domain.Subscription{
		{APIKey: "bad-key", Channel: "C1", ProjectIDs: []int64{1}},
	}, nil)

	s.reconciler.errs[1] = flavortown.ErrUnauthorized

	// Disable reports no flip, so no notice is posted.
	s.subscriptions.EXPECT().Disable(ctx, "bad-key").Return(false, nil)

	stats, err := s.service.Sync(ctx)

	s.NoError(err)
	s.Equal(0, stats.Disabled)
}

func (s *SyncServiceTestSuite) TestSync_MissingProjectSkipped() {
	ctx := context.Background()

	s.subscriptions.EXPECT().ListActive(ctx).Return([]domain.Subscription{
		{APIKey: "key-a", Channel: "C1", ProjectIDs: []int64{1, 2}},
	}, nil)

	s.reconciler.errs[1] = fmt.Errorf("get project 1: %w", flavortown.ErrNotFound)

	stats, err := s.service.Sync(ctx)

	s.NoError(err)
	// The vanished project is skipped, the rest of the pass continues.
	s.Equal([]int64{1, 2}, s.reconciler.calls)
	s.Equal(1, stats.Skipped)
	s.Equal(0, stats.Errors)
	s.Equal(0, stats.Disabled)
}

func (s *SyncServiceTestSuite) TestSync_StoreFailureContinuesPass() {
	ctx := context.Background()

	s.subscriptions.EXPECT().ListActive(ctx).Return([]domain.Subscription{
		{APIKey: "key-a", Channel: "C1", ProjectIDs: []int64{1, 2}},
	}, nil)

	s.reconciler.errs[1] = errors.New("load sync state for project 1: connection refused")

	stats, err := s.service.Sync(ctx)

	s.NoError(err)
	s.Equal([]int64{1, 2}, s.reconciler.calls)
	s.Equal(1, stats.Errors)
}

func (s *SyncServiceTestSuite) TestSync_ListError() {
	ctx := context.Background()

	s.subscriptions.EXPECT().ListActive(ctx).Return(nil, errors.New("db down"))

	stats, err := s.service.Sync(ctx)

	s.Error(err)
	s.Nil(stats)
	s.Contains(err.Error(), "list subscriptions")
}
