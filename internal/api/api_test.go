package api

import (
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/identity"
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/repository/relational"
	"alcyxob/workout-tracker/internal/service"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	subject string
	err     error
	calls   int
}

func (v *fakeVerifier) Verify(ctx context.Context, token string) (string, error) {
	v.calls++
	if v.err != nil {
		return "", v.err
	}
	if token != "good-token" {
		return "", identity.ErrTokenInvalid
	}
	return v.subject, nil
}

type testServer struct {
	router   *gin.Engine
	verifier *fakeVerifier
	db       *gorm.DB
}

func quietLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func newTestServer(t *testing.T, merge config.MergeConfig) *testServer {
	t.Helper()
	log := quietLogger()
	db, err := relational.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "workouts.db"),
	}, log)
	require.NoError(t, err)
	require.NoError(t, relational.Migrate(context.Background(), db))
	t.Cleanup(func() { _ = relational.Close(db) })

	verifier := &fakeVerifier{subject: "uid-1"}
	m := metrics.New()
	svc := service.NewWorkoutService(relational.NewUserRepository(db), relational.NewWorkoutRepository(db), m, log)

	router := gin.New()
	SetupRoutes(router, verifier, svc, merge, m, log)
	return &testServer{router: router, verifier: verifier, db: db}
}

func (s *testServer) seed(t *testing.T, user *domain.User) {
	t.Helper()
	require.NoError(t, relational.NewUserRepository(s.db).Create(context.Background(), user))
}

func (s *testServer) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

var authed = map[string]string{"Authorization": "Bearer good-token"}

func decodeViews(t *testing.T, w *httptest.ResponseRecorder) []service.WorkoutView {
	t.Helper()
	var views []service.WorkoutView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	return views
}

const bicepsBody = `{
	"date": "2022-10-03",
	"workoutData": [{
		"index": 0, "name": "biceps", "comment": "updated",
		"sets": [
			{"index": 0, "reps": 12, "weight": 17, "easy": false, "done": true},
			{"index": 1, "reps": 9, "weight": 18, "easy": true, "done": true}
		]
	}]
}`

func TestPing(t *testing.T) {
	srv := newTestServer(t, config.MergeConfig{})
	w := srv.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, config.MergeConfig{})
	srv.do(http.MethodGet, "/ping", "", nil)

	w := srv.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "workout_tracker_http_requests_total")
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	srv := newTestServer(t, config.MergeConfig{})
	for _, header := range []string{"", "Bearer", "Bearer ", "good-token", "Basic good-token"} {
		t.Run(fmt.Sprintf("%q", header), func(t *testing.T) {
			headers := map[string]string{}
			if header != "" {
				headers["Authorization"] = header
			}
			for _, method := range []string{http.MethodGet, http.MethodPut} {
				w := srv.do(method, "/", "", headers)
				assert.Equal(t, http.StatusUnauthorized, w.Code)
				assert.JSONEq(t, `{"message":"Token is missing.","error":"Unauthorized"}`, w.Body.String())
			}
		})
	}
	assert.Zero(t, srv.verifier.calls)
}

// newMockedServer routes requests to a store that fails the test on any SQL.
func newMockedServer(t *testing.T, verifier identity.Verifier) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: relational.NewLogger(quietLogger()),
	})
	require.NoError(t, err)

	log := quietLogger()
	m := metrics.New()
	svc := service.NewWorkoutService(relational.NewUserRepository(db), relational.NewWorkoutRepository(db), m, log)
	router := gin.New()
	SetupRoutes(router, verifier, svc, config.MergeConfig{}, m, log)
	return router, mock
}

func TestAuthFailuresIssueNoSQL(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		headers map[string]string
		code    int
		body    string
	}{
		{
			name: "missing token",
			code: http.StatusUnauthorized,
			body: `{"message":"Token is missing.","error":"Unauthorized"}`,
		},
		{
			name:    "rejected token",
			err:     fmt.Errorf("%w: signature is invalid", identity.ErrTokenInvalid),
			headers: authed,
			code:    http.StatusInternalServerError,
			body:    `{"message":"Something went wrong","data":null,"error":"invalid or expired token"}`,
		},
		{
			name:    "provider down",
			err:     fmt.Errorf("%w: fetch certs: 503", identity.ErrUpstreamUnavailable),
			headers: authed,
			code:    http.StatusInternalServerError,
			body:    `{"message":"Something went wrong","data":null,"error":"identity provider unavailable"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, mock := newMockedServer(t, &fakeVerifier{subject: "uid-1", err: tc.err})
			for _, method := range []string{http.MethodGet, http.MethodPut} {
				req := httptest.NewRequest(method, "/", strings.NewReader(bicepsBody))
				for k, v := range tc.headers {
					req.Header.Set(k, v)
				}
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				assert.Equal(t, tc.code, w.Code)
				assert.JSONEq(t, tc.body, w.Body.String())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetWorkoutsProvisions(t *testing.T) {
	srv := newTestServer(t, config.MergeConfig{})

	w := srv.do(http.MethodGet, "/", "", authed)
	require.Equal(t, http.StatusOK, w.Code)

	views := decodeViews(t, w)
	require.Len(t, views, 1)
	require.Len(t, views[0].WorkoutData, 1)
	assert.Equal(t, []service.SetView{{Index: 0}}, views[0].WorkoutData[0].Sets)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestUpdateWorkout(t *testing.T) {
	srv := newTestServer(t, config.MergeConfig{})
	srv.seed(t, service.FixtureUser("uid-1", 1))

	w := srv.do(http.MethodPut, "/", bicepsBody, authed)
	require.Equal(t, http.StatusOK, w.Code)

	views := decodeViews(t, w)
	require.Len(t, views, 1)
	exercise := views[0].WorkoutData[0]
	assert.Equal(t, "updated", exercise.Comment)
	assert.Equal(t, []service.SetView{
		{Index: 0, Reps: 12, Weight: 17, Easy: false, Done: false},
		{Index: 1, Reps: 9, Weight: 18, Easy: true, Done: false},
	}, exercise.Sets)

	read := srv.do(http.MethodGet, "/", "", authed)
	assert.JSONEq(t, w.Body.String(), read.Body.String())
}

func TestUpdateWorkoutWriteDoneConfig(t *testing.T) {
	srv := newTestServer(t, config.MergeConfig{WriteDone: true})
	srv.seed(t, service.FixtureUser("uid-1", 1))

	w := srv.do(http.MethodPut, "/", bicepsBody, authed)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeViews(t, w)[0].WorkoutData[0].Sets[0].Done)
}

func TestUpdateWorkoutUnknownUser(t *testing.T) {
	srv := newTestServer(t, config.MergeConfig{})

	w := srv.do(http.MethodPut, "/", bicepsBody, authed)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"user not found"}`, w.Body.String())
}

func TestUpdateWorkoutBadBody(t *testing.T) {
	srv := newTestServer(t, config.MergeConfig{})
	srv.seed(t, service.FixtureUser("uid-1", 1))

	bodies := map[string]string{
		"malformed":       `{"date":`,
		"missing date":    `{"workoutData":[]}`,
		"missing data":    `{"date":"2022-10-03"}`,
		"wrong data type": `{"date":"2022-10-03","workoutData":{}}`,
		"wrong reps type": `{"date":"2022-10-03","workoutData":[{"sets":[{"reps":"ten"}]}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			w := srv.do(http.MethodPut, "/", body, authed)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestUpdateWorkoutShapeMismatch(t *testing.T) {
	srv := newTestServer(t, config.MergeConfig{})
	srv.seed(t, service.FixtureUser("uid-1", 1))

	oneSet := `{"date":"2022-10-03","workoutData":[{"name":"x","comment":"","sets":[{"reps":1,"weight":1,"easy":false}]}]}`

	w := srv.do(http.MethodPut, "/", oneSet, authed)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = srv.do(http.MethodPut, "/?strict=true", oneSet, authed)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(http.MethodPut, "/?strict=maybe", oneSet, authed)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// neither attempt changed the stored workout
	views := decodeViews(t, srv.do(http.MethodGet, "/", "", authed))
	assert.Equal(t, "biceps", views[0].WorkoutData[0].Name)
	assert.Equal(t, 10, views[0].WorkoutData[0].Sets[0].Reps)
}

func TestUpdateWorkoutStrictConfig(t *testing.T) {
	srv := newTestServer(t, config.MergeConfig{StrictLength: true})
	srv.seed(t, service.FixtureUser("uid-1", 1))

	oneSet := `{"date":"2022-10-03","workoutData":[{"name":"x","comment":"","sets":[{"reps":1,"weight":1,"easy":false}]}]}`
	w := srv.do(http.MethodPut, "/", oneSet, authed)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(http.MethodPut, "/", bicepsBody, authed)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateWorkoutMissingKeys(t *testing.T) {
	bodies := map[string]string{
		"bare sets":       `{"date":"2022-10-03","workoutData":[{"sets":[{"easy":true},{}]}]}`,
		"missing name":    `{"date":"2022-10-03","workoutData":[{"comment":"c","sets":[{"reps":1,"weight":1,"easy":true},{"reps":1,"weight":1,"easy":true}]}]}`,
		"missing comment": `{"date":"2022-10-03","workoutData":[{"name":"n","sets":[{"reps":1,"weight":1,"easy":true},{"reps":1,"weight":1,"easy":true}]}]}`,
		"missing sets":    `{"date":"2022-10-03","workoutData":[{"name":"n","comment":"c"}]}`,
		"missing reps":    `{"date":"2022-10-03","workoutData":[{"name":"n","comment":"c","sets":[{"reps":1,"weight":1,"easy":true},{"weight":1,"easy":true}]}]}`,
		"missing weight":  `{"date":"2022-10-03","workoutData":[{"name":"n","comment":"c","sets":[{"reps":1,"easy":true},{"reps":1,"weight":1,"easy":true}]}]}`,
		"missing easy":    `{"date":"2022-10-03","workoutData":[{"name":"n","comment":"c","sets":[{"reps":1,"weight":1},{"reps":1,"weight":1,"easy":true}]}]}`,
	}

	for _, merge := range []config.MergeConfig{{}, {StrictLength: true}, {WriteDone: true}} {
		srv := newTestServer(t, merge)
		srv.seed(t, service.FixtureUser("uid-1", 1))
		before := srv.do(http.MethodGet, "/", "", authed).Body.String()

		for name, body := range bodies {
			t.Run(name, func(t *testing.T) {
				for _, target := range []string{"/", "/?strict=true"} {
					w := srv.do(http.MethodPut, target, body, authed)
					assert.Equal(t, http.StatusBadRequest, w.Code, target)
					assert.Contains(t, w.Body.String(), "Invalid request body", target)
				}
			})
		}

		after := srv.do(http.MethodGet, "/", "", authed).Body.String()
		assert.JSONEq(t, before, after)
	}
}

func TestUpdateWorkoutOptionalKeys(t *testing.T) {
	srv := newTestServer(t, config.MergeConfig{WriteDone: true})
	user := service.FixtureUser("uid-1", 1)
	user.Workouts[0].Exercises[0].Sets[0].Done = true
	srv.seed(t, user)

	// index and done may be left out; an absent done keeps the stored value
	body := `{"date":"2022-10-03","workoutData":[{"name":"n","comment":"c","sets":[{"reps":1,"weight":2,"easy":false},{"reps":3,"weight":4,"easy":false,"done":true}]}]}`
	w := srv.do(http.MethodPut, "/", body, authed)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []service.SetView{
		{Index: 0, Reps: 1, Weight: 2, Easy: false, Done: true},
		{Index: 1, Reps: 3, Weight: 4, Easy: false, Done: true},
	}, decodeViews(t, w)[0].WorkoutData[0].Sets)
}
