package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/tremor/internal/app"
	"github.com/alexanderramin/tremor/internal/domain"
	"github.com/alexanderramin/tremor/internal/repository"
	"github.com/alexanderramin/tremor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReportStore(t *testing.T) SessionStore {
	t.Helper()
	store, _ := setupStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

	sessions := []domain.Session{
		testutil.NewTestSession(testutil.WithID("oldest"), testutil.WithStart(base),
			testutil.WithIndex(20, domain.StatusBajo), testutil.WithDurationSeconds(60)),
		testutil.NewTestSession(testutil.WithID("newest"), testutil.WithStart(base.Add(2*time.Hour)),
			testutil.WithIndex(70, domain.StatusAlto), testutil.WithDurationSeconds(120),
			testutil.WithReadings(testutil.SineReadings(base.UnixMilli(), 50, 20, 5, 0.4))),
		testutil.NewTestSession(testutil.WithID("middle"), testutil.WithStart(base.Add(time.Hour)),
			testutil.WithIndex(45, domain.StatusModerado), testutil.WithDurationSeconds(30)),
	}
	for _, s := range sessions {
		require.NoError(t, store.Save(ctx, s))
	}
	return store
}

func TestReportService_DefaultRequest(t *testing.T) {
	store := seedReportStore(t)
	svc := NewReportService(store, 10)
	fixed := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	svc.(*reportService).now = func() time.Time { return fixed }

	req := app.NewReportRequest()
	req.PatientName = "Ana"
	req.DoctorName = "Dr. Ruiz"

	bundle, err := svc.Build(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, fixed.UnixMilli(), bundle.GeneratedAt)
	assert.Equal(t, "Ana", bundle.PatientName)
	assert.Equal(t, "Dr. Ruiz", bundle.DoctorName)

	require.Len(t, bundle.Sessions, 3)
	assert.Equal(t, "newest", bundle.Sessions[0].ID)
	assert.Equal(t, "middle", bundle.Sessions[1].ID)
	assert.Equal(t, "oldest", bundle.Sessions[2].ID)

	for _, rs := range bundle.Sessions {
		assert.Nil(t, rs.Readings, "raw readings are stripped by default")
		assert.NotEmpty(t, rs.Chart)
		assert.LessOrEqual(t, len(rs.Chart), 10)
	}

	require.NotNil(t, bundle.Statistics)
	assert.Equal(t, 3, bundle.Statistics.TotalSessions)
	assert.InDelta(t, 45.0, bundle.Statistics.AverageTremorIndex, 1e-9)
	assert.Equal(t, 210, bundle.Statistics.TotalDuration)
	assert.Equal(t, domain.StatusCounts{Bajo: 1, Moderado: 1, Alto: 1}, bundle.Statistics.SessionsPerStatus)
}

func TestReportService_RawDataWithoutChartsOrStats(t *testing.T) {
	store := seedReportStore(t)
	svc := NewReportService(store, 0)

	bundle, err := svc.Build(context.Background(), app.ReportRequest{
		SessionIDs:     []string{"newest"},
		IncludeRawData: true,
	})
	require.NoError(t, err)

	assert.Nil(t, bundle.Statistics)
	require.Len(t, bundle.Sessions, 1)
	assert.Len(t, bundle.Sessions[0].Readings, 50)
	assert.Nil(t, bundle.Sessions[0].Chart)
}

func TestReportService_SessionIDsTakePrecedence(t *testing.T) {
	store := seedReportStore(t)
	svc := NewReportService(store, 0)

	status := domain.StatusAlto
	req := app.NewReportRequest()
	req.SessionIDs = []string{"oldest", "middle", "oldest"}
	req.Filters = domain.HistoryFilters{Status: &status}

	bundle, err := svc.Build(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, bundle.Sessions, 2)
	assert.Equal(t, "middle", bundle.Sessions[0].ID)
	assert.Equal(t, "oldest", bundle.Sessions[1].ID)
	assert.Equal(t, 2, bundle.Statistics.TotalSessions)
}

func TestReportService_Filters(t *testing.T) {
	store := seedReportStore(t)
	svc := NewReportService(store, 0)

	minIdx := 40
	req := app.NewReportRequest()
	req.Filters = domain.HistoryFilters{MinTremorIndex: &minIdx}

	bundle, err := svc.Build(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, bundle.Sessions, 2)
	assert.Equal(t, 45, bundle.Statistics.MinTremorIndex)
	assert.Equal(t, 70, bundle.Statistics.MaxTremorIndex)
}

func TestReportService_UnknownID(t *testing.T) {
	store := seedReportStore(t)
	obs := &recordingObserver{}
	svc := NewReportService(store, 0, obs)

	_, err := svc.Build(context.Background(), app.ReportRequest{SessionIDs: []string{"newest", "ghost"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Contains(t, err.Error(), "ghost")

	require.Len(t, obs.events, 1)
	assert.False(t, obs.events[0].Success)
}

func TestReportService_EmptyStore(t *testing.T) {
	store, _ := setupStore(t)
	svc := NewReportService(store, 0)

	bundle, err := svc.Build(context.Background(), app.NewReportRequest())
	require.NoError(t, err)
	assert.Empty(t, bundle.Sessions)
	require.NotNil(t, bundle.Statistics)
	assert.Equal(t, domain.SessionStatistics{}, *bundle.Statistics)
}
