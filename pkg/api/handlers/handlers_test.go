package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jordanlanch/adcreativelab/pkg/adlifecycle"
	"github.com/jordanlanch/adcreativelab/pkg/ads"
	"github.com/jordanlanch/adcreativelab/pkg/analytics"
	"github.com/jordanlanch/adcreativelab/pkg/learnings"
	"github.com/jordanlanch/adcreativelab/pkg/logger"
	"github.com/jordanlanch/adcreativelab/pkg/models"
	"github.com/jordanlanch/adcreativelab/pkg/testdata"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	_ "github.com/mattn/go-sqlite3"
)

// testEnv wires the real services over an in-memory database with a fixed clock.
type testEnv struct {
	db        *gorm.DB
	now       time.Time
	ads       *ads.Service
	learnings *learnings.Service
	analytics *analytics.Service
}

func setupTestEnv(t *testing.T) *testEnv {
	env := &testEnv{
		db:  testdata.NewTestDB(t),
		now: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }

	repo := ads.NewRepository(env.db)
	sweeper := adlifecycle.NewSweeper(repo, logger.Nop()).WithClock(clock)
	env.learnings = learnings.NewService(env.db).WithClock(clock)
	env.analytics = analytics.NewService(env.db, sweeper, analytics.Dependencies{
		Learnings: env.learnings,
		Logger:    logger.Nop(),
		Clock:     clock,
	})
	env.learnings.OnChange(env.analytics.Invalidate)
	env.ads = ads.NewService(repo, sweeper, ads.Dependencies{
		Learnings: env.learnings,
		Cache:     env.analytics,
		Logger:    logger.Nop(),
		Clock:     clock,
	})
	return env
}

// request builds an echo context for a JSON request. params are name/value pairs.
func request(method, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	if len(names) > 0 {
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return c, rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[models.ErrorResponse](t, rec).Error
}

func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}
