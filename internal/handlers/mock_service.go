package handlers

import (
	"context"
	"net/http"
	"time"

	"thermal_regulator/internal/models"
	"thermal_regulator/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockSetpoint struct {
	keysErr   error
	targetErr error
	cancelErr error

	lastKeys    string
	lastTarget  int
	cancelCalls int
}

func (m *mockSetpoint) PressKeys(ctx context.Context, keys string) error {
	m.lastKeys = keys
	return m.keysErr
}
func (m *mockSetpoint) SetTarget(ctx context.Context, target int) error {
	m.lastTarget = target
	return m.targetErr
}
func (m *mockSetpoint) Cancel(ctx context.Context) error {
	m.cancelCalls++
	return m.cancelErr
}

type mockMonitoring struct {
	state models.ControllerSnapshot
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.ControllerSnapshot, error) {
	return m.state, m.err
}

type mockEventLog struct {
	resp      []models.ControllerEvent
	err       error
	lastFrom  time.Time
	lastTo    time.Time
	lastType  string
	lastLimit int
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.ControllerEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.lastLimit = f.Limit
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, nil)
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
