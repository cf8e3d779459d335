package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goodtune/awtally/internal/storage"
	"github.com/goodtune/awtally/internal/usage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	err        error
	spentOpts  usage.SpentTimeOptions
	lastTitles []string
	lastStart  *time.Time
	lastEnd    *time.Time
}

func (f *fakeEngine) ListKnownApps() map[string][]string {
	return map[string][]string{"Visual Studio Code": {"Code.exe", "code-oss"}}
}

func (f *fakeEngine) SpentTime(ctx context.Context, opts usage.SpentTimeOptions) ([]usage.SpentTimeRow, error) {
	f.spentOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return []usage.SpentTimeRow{{Title: "Google Chrome", App: "chrome.exe", DurationHours: 10}}, nil
}

func (f *fakeEngine) DailyUsage(ctx context.Context, titles []string, start, end *time.Time) ([]usage.DailyUsageRow, error) {
	f.lastTitles, f.lastStart, f.lastEnd = titles, start, end
	if f.err != nil {
		return nil, f.err
	}
	return []usage.DailyUsageRow{}, nil
}

func (f *fakeEngine) DailyPlatformUsage(ctx context.Context, start, end *time.Time) ([]usage.DailyPlatformRow, error) {
	f.lastStart, f.lastEnd = start, end
	return []usage.DailyPlatformRow{{Date: "2024-01-01", Platform: storage.PlatformLinux, DurationHours: 1}}, f.err
}

func (f *fakeEngine) DatasetMetadata(ctx context.Context) (storage.Metadata, error) {
	return storage.Metadata{}, f.err
}

func serve(t *testing.T, engine Engine, target string) *httptest.ResponseRecorder {
	t.Helper()
	srv := NewServer("127.0.0.1:0", engine, zerolog.Nop())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSpentTimeEndpoint(t *testing.T) {
	engine := &fakeEngine{}
	rec := serve(t, engine, "/spent_time?start=2024-01-01&end=2024-01-31&min_hours=1.5")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[{"title":"Google Chrome","app":"chrome.exe","duration_hours":10}]`, rec.Body.String())

	require.NotNil(t, engine.spentOpts.MinHours)
	assert.Equal(t, 1.5, *engine.spentOpts.MinHours)
	require.NotNil(t, engine.spentOpts.End)
	assert.Equal(t, "2024-01-31T23:59:59.999999Z", engine.spentOpts.End.Format(time.RFC3339Nano))
}

func TestBadParametersReturn400(t *testing.T) {
	for _, target := range []string{
		"/spent_time?min_hours=lots",
		"/spent_time?min_hours=-2",
		"/spent_time?start=tuesday",
		"/daily_platform_usage?start=2024-02-01&end=2024-01-01",
	} {
		t.Run(target, func(t *testing.T) {
			rec := serve(t, &fakeEngine{}, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func TestStoreFailuresReturn500(t *testing.T) {
	engine := &fakeEngine{err: errors.New("store down")}
	for _, target := range []string{"/spent_time", "/daily_app_usage/Zen%20Browser", "/daily_platform_usage", "/dataset_metadata"} {
		t.Run(target, func(t *testing.T) {
			rec := serve(t, engine, target)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
		})
	}
}

func TestDailyAppUsageTitles(t *testing.T) {
	engine := &fakeEngine{}
	rec := serve(t, engine, "/daily_app_usage/Zen%20Browser?title=Google%20Chrome")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
	assert.Equal(t, []string{"Zen Browser", "Google Chrome"}, engine.lastTitles)
	assert.Nil(t, engine.lastStart)
}

func TestAppListAndMetadata(t *testing.T) {
	rec := serve(t, &fakeEngine{}, "/app_list")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"Visual Studio Code":["Code.exe","code-oss"]}`, rec.Body.String())

	rec = serve(t, &fakeEngine{}, "/dataset_metadata")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"start_date":null,"end_date":null,"total_records":0}`, rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	rec := serve(t, &fakeEngine{}, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
