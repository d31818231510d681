package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/config"
)

func TestSimulator_Bounds(t *testing.T) {
	sim := NewSimulator(42, DefaultBounds())
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		lpn, _ := sim.StuckLicensePlates(ctx)
		waves, _ := sim.AgingWaves(ctx)
		tasks, _ := sim.CloudStuckTasks(ctx, "STUCK")
		exc, _ := sim.InventoryExceptions(ctx, 5)

		assert.True(t, lpn >= 0 && lpn <= 3, "stuck lpn %d", lpn)
		assert.True(t, waves >= 0 && waves <= 2, "aging waves %d", waves)
		assert.True(t, tasks >= 0 && tasks <= 3, "cloud tasks %d", tasks)
		assert.True(t, exc >= 0 && exc <= 2, "fusion exceptions %d", exc)
	}
}

func TestSimulator_Deterministic(t *testing.T) {
	a := NewSimulator(7, DefaultBounds())
	b := NewSimulator(7, DefaultBounds())
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		x, _ := a.StuckLicensePlates(ctx)
		y, _ := b.StuckLicensePlates(ctx)
		require.Equal(t, x, y)
	}
}

func TestSimulator_LimitCapsExceptions(t *testing.T) {
	sim := NewSimulator(1, Bounds{FusionExceptions: 10})
	for i := 0; i < 50; i++ {
		n, _ := sim.InventoryExceptions(context.Background(), 1)
		assert.LessOrEqual(t, n, 1)
	}
}

func TestSimulator_ZeroBound(t *testing.T) {
	sim := NewSimulator(1, Bounds{})
	n, err := sim.StuckLicensePlates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestNewSet_SimulatedIgnoresLiveEndpoints(t *testing.T) {
	set, err := NewSet(&config.Config{
		Simulate: true,
		CloudWMS: config.CloudWMSConfig{BaseURL: "http://unused.invalid"},
	})
	require.NoError(t, err)
	defer set.Close()

	_, ok := set.Tasks.(*Simulator)
	assert.True(t, ok, "expected simulated task source")
}

func TestNewSet_LiveOnlyWhereConfigured(t *testing.T) {
	set, err := NewSet(&config.Config{
		Simulate:    false,
		HTTPTimeout: time.Second,
		CloudWMS:    config.CloudWMSConfig{BaseURL: "http://ocwms.example"},
	})
	require.NoError(t, err)
	defer set.Close()

	_, live := set.Tasks.(*CloudWMSClient)
	assert.True(t, live)
	_, sim := set.Exceptions.(*Simulator)
	assert.True(t, sim, "fusion without base URL stays simulated")
	_, sim = set.LicensePlates.(*Simulator)
	assert.True(t, sim, "on-prem without DSN stays simulated")
}

func TestCloudWMSClient_CountsTasks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.Equal(t, "STUCK", r.URL.Query().Get("status"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"tasks": []map[string]string{
				{"taskId": "CW-1000", "status": "STUCK"},
				{"taskId": "CW-1001", "status": "STUCK"},
			},
		})
	}))
	defer server.Close()

	c := NewCloudWMSClient(config.CloudWMSConfig{BaseURL: server.URL, OAuthToken: "tok"}, time.Second)

	n, err := c.CloudStuckTasks(context.Background(), "STUCK")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCloudWMSClient_NonSuccessIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewCloudWMSClient(config.CloudWMSConfig{BaseURL: server.URL}, time.Second)

	_, err := c.CloudStuckTasks(context.Background(), "STUCK")
	assert.ErrorIs(t, err, ErrBadStatus)
}

func TestCloudWMSClient_InvalidJSONIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	c := NewCloudWMSClient(config.CloudWMSConfig{BaseURL: server.URL}, time.Second)

	_, err := c.CloudStuckTasks(context.Background(), "STUCK")
	assert.Error(t, err)
}

func TestCloudWMSClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewCloudWMSClient(config.CloudWMSConfig{BaseURL: server.URL}, time.Second)

	for i := 0; i < breakerFailureThreshold; i++ {
		_, err := c.CloudStuckTasks(context.Background(), "STUCK")
		require.ErrorIs(t, err, ErrBadStatus)
	}

	_, err := c.CloudStuckTasks(context.Background(), "STUCK")
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState), "got %v", err)
	assert.Equal(t, int32(breakerFailureThreshold), hits.Load())
}

func TestCloudWMSClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := NewCloudWMSClient(config.CloudWMSConfig{BaseURL: server.URL}, 20*time.Millisecond)

	_, err := c.CloudStuckTasks(context.Background(), "STUCK")
	assert.Error(t, err)
}

func TestFusionClient_BasicAuthAndLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, fusionExceptionsPath, r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "fuser", user)
		assert.Equal(t, "fpass", pass)

		w.Write([]byte(`{"items":[{"exceptionId":"EX-0"},{"exceptionId":"EX-1"},{"exceptionId":"EX-2"}]}`))
	}))
	defer server.Close()

	c := NewFusionClient(config.FusionConfig{BaseURL: server.URL, User: "fuser", Password: "fpass"}, time.Second)

	n, err := c.InventoryExceptions(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestFusionClient_BearerPreferredOverBasic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ftoken", r.Header.Get("Authorization"))
		w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	c := NewFusionClient(config.FusionConfig{
		BaseURL: server.URL, User: "fuser", Password: "fpass", OAuthToken: "ftoken",
	}, time.Second)

	n, err := c.InventoryExceptions(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestFusionClient_MissingItemsCountsZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":0,"hasMore":false}`))
	}))
	defer server.Close()

	c := NewFusionClient(config.FusionConfig{BaseURL: server.URL}, time.Second)

	n, err := c.InventoryExceptions(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestOnPremDB_Counts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM wms_license_plate_numbers`).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(2))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM wms_wp_wave_headers_vl`).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))

	o := NewOnPremDB(db, time.Second)

	lpn, err := o.StuckLicensePlates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, lpn)

	waves, err := o.AgingWaves(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, waves)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOnPremDB_QueryErrorPropagates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`wms_license_plate_numbers`).WillReturnError(errors.New("ORA-12541: TNS:no listener"))

	o := NewOnPremDB(db, time.Second)

	_, err = o.StuckLicensePlates(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ORA-12541")
}

func TestOracleURL(t *testing.T) {
	u, err := oracleURL(config.OnPremConfig{DSN: "ebsdb:1522/PROD", User: "readonly", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "oracle://"), u)
	assert.Contains(t, u, "ebsdb:1522")
	assert.Contains(t, u, "PROD")

	u, err = oracleURL(config.OnPremConfig{DSN: "ebsdb/PROD"})
	require.NoError(t, err)
	assert.Contains(t, u, "ebsdb:1521")

	passthrough := "oracle://u:p@db:1521/ORCL"
	u, err = oracleURL(config.OnPremConfig{DSN: passthrough})
	require.NoError(t, err)
	assert.Equal(t, passthrough, u)

	_, err = oracleURL(config.OnPremConfig{DSN: "ebsdb"})
	assert.Error(t, err)

	_, err = oracleURL(config.OnPremConfig{DSN: "ebsdb:abc/PROD"})
	assert.Error(t, err)
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "oracle://***@db:1521/ORCL", maskDSN("oracle://u:p@db:1521/ORCL"))
	assert.Equal(t, "db:1521/ORCL", maskDSN("db:1521/ORCL"))
}
