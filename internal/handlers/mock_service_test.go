package handlers

import (
	"context"
	"net/http"

	"vacuum_bridge/internal/config"
	"vacuum_bridge/internal/models"
	"vacuum_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	enabled       bool
	genTokenToken string
	genTokenErr   error
	parseSubject  string
	parseErr      error

	lastGenUsername string
	lastGenPassword string
	lastParseToken  string
}

func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}

func (m *mockAuth) ParseToken(token string) (string, error) {
	m.lastParseToken = token
	return m.parseSubject, m.parseErr
}

func (m *mockAuth) Enabled() bool { return m.enabled }

type mockFleet struct {
	results   []string
	err       error
	vacuums   []models.VacuumInfo
	applied   []service.ApplyParams
	lastProbe bool
}

func (m *mockFleet) Apply(_ context.Context, p service.ApplyParams) ([]string, error) {
	m.applied = append(m.applied, p)
	return m.results, m.err
}

func (m *mockFleet) ListVacuums(_ context.Context, probe bool) []models.VacuumInfo {
	m.lastProbe = probe
	return m.vacuums
}

type mockWatcher struct {
	status models.WatcherStatus
}

func (m *mockWatcher) Run(context.Context)          {}
func (m *mockWatcher) Status() models.WatcherStatus { return m.status }

type mockMonitoring struct{ active int }

func (m *mockMonitoring) Active() int { return m.active }
func (m *mockMonitoring) Shutdown()   {}

type mockCooldowns struct{ entries []models.CooldownEntry }

func (m *mockCooldowns) Snapshot() []models.CooldownEntry { return m.entries }

type mockEventLog struct {
	resp       []models.FleetEvent
	err        error
	lastFilter service.LogFilter
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.FleetEvent, error) {
	m.lastFilter = f
	return m.resp, m.err
}

type mockSimulation struct {
	setErr   error
	lastSet  models.AlarmState
	expireds int
}

func (m *mockSimulation) SetAlarmState(s models.AlarmState) error {
	m.lastSet = s
	return m.setErr
}

func (m *mockSimulation) ExpireSessions() { m.expireds++ }

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, config.RateLimitConfig{})
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
