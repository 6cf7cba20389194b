package controller

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"subbridge-be/internal/dto"
	"subbridge-be/internal/entity"
	"subbridge-be/internal/pkg/serverutils"
	"subbridge-be/internal/repository/memory"
	"subbridge-be/internal/service"
	"subbridge-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test doubles ---

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type stubBillingService struct {
	plan      entity.PlanName
	planErr   error
	startResp *dto.StartSubscriptionResponse
	startErr  error
	execId    string
	execErr   error
	processed []*dto.ProviderWebhookEvent
}

func (s *stubBillingService) StartSubscription(ctx context.Context, userId, email string, req *dto.StartSubscriptionRequest) (*dto.StartSubscriptionResponse, error) {
	if s.startErr != nil {
		return nil, s.startErr
	}
	return s.startResp, nil
}

func (s *stubBillingService) ExecuteAgreement(ctx context.Context, token string) (string, error) {
	if s.execErr != nil {
		return "", s.execErr
	}
	return s.execId, nil
}

func (s *stubBillingService) ProcessWebhookEvent(ctx context.Context, raw []byte, evt *dto.ProviderWebhookEvent) {
	s.processed = append(s.processed, evt)
}

func (s *stubBillingService) EffectivePlan(ctx context.Context, userId string) (entity.PlanName, error) {
	if s.planErr != nil {
		return entity.PlanFree, s.planErr
	}
	return s.plan, nil
}

func (s *stubBillingService) HasPaidAccess(ctx context.Context, userId string) bool {
	return s.plan.Paid()
}

func (s *stubBillingService) ListSubscriptions(ctx context.Context, userId string) ([]dto.SubscriptionSummary, error) {
	return []dto.SubscriptionSummary{
		{AgreementId: "I-ABC", PlanName: string(s.plan), Status: "active"},
	}, nil
}

func (s *stubBillingService) PlanCatalog() []dto.PlanOption {
	return []dto.PlanOption{{PlanId: "PRO123", PlanName: "pro"}}
}

const testCookieName = "session_id"

type testEnv struct {
	app      *fiber.App
	sessions *memory.SessionRepository
}

func newTestEnv(billing service.IBillingService, verifier service.WebhookVerifier) *testEnv {
	sessions := memory.NewSessionRepository(time.Hour)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())

	requireSession := serverutils.SessionMiddleware(sessions, testCookieName)
	NewBillingController(billing, verifier, "http://client.example", nopLogger{}).
		RegisterRoutes(app, requireSession)

	return &testEnv{app: app, sessions: sessions}
}

func (e *testEnv) withSession(t *testing.T, req *http.Request) {
	t.Helper()
	session := &store.Session{Id: "sess-1", UserId: "user-1", Email: "u@example.com"}
	require.NoError(t, e.sessions.Save(context.Background(), session))
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: session.Id})
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// --- Webhook endpoint ---

func TestWebhook_AcknowledgesValidEvent(t *testing.T) {
	billing := &stubBillingService{}
	env := newTestEnv(billing, service.NewAllowAllWebhookVerifier())

	body := []byte(`{"event_type":"BILLING.SUBSCRIPTION.ACTIVATED","resource":{"id":"I-ABC","plan_id":"PRO123"}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, billing.processed, 1)
	assert.Equal(t, "BILLING.SUBSCRIPTION.ACTIVATED", billing.processed[0].EventType)
	assert.Equal(t, "I-ABC", billing.processed[0].Resource.Id)
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	billing := &stubBillingService{}
	env := newTestEnv(billing, service.NewHMACWebhookVerifier("topsecret"))

	body := []byte(`{"event_type":"BILLING.SUBSCRIPTION.ACTIVATED","resource":{"id":"I-ABC"}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, sign("wrong-secret", body))

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, billing.processed)
}

func TestWebhook_AcceptsValidSignature(t *testing.T) {
	billing := &stubBillingService{}
	env := newTestEnv(billing, service.NewHMACWebhookVerifier("topsecret"))

	body := []byte(`{"event_type":"PAYMENT.SALE.COMPLETED","resource":{"id":"I-ABC"}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, sign("topsecret", body))

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, billing.processed, 1)
}

func TestWebhook_RejectsUnparseableBody(t *testing.T) {
	billing := &stubBillingService{}
	env := newTestEnv(billing, service.NewAllowAllWebhookVerifier())

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte("not json at all")))

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, billing.processed)
}

// --- Session-gated billing routes ---

func TestPricing_RequiresSession(t *testing.T) {
	env := newTestEnv(&stubBillingService{plan: entity.PlanFree}, service.NewAllowAllWebhookVerifier())

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/pricing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPricing_ReturnsCurrentPlan(t *testing.T) {
	env := newTestEnv(&stubBillingService{plan: entity.PlanPro}, service.NewAllowAllWebhookVerifier())

	req := httptest.NewRequest(http.MethodGet, "/pricing", nil)
	env.withSession(t, req)

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out serverutils.APIResponse[dto.PricingResponse]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "pro", out.Data.CurrentPlan)
	assert.True(t, out.Data.PaidAccess)
	require.Len(t, out.Data.Plans, 1)
}

func TestListSubscriptions_ReturnsHistory(t *testing.T) {
	env := newTestEnv(&stubBillingService{plan: entity.PlanPro}, service.NewAllowAllWebhookVerifier())

	req := httptest.NewRequest(http.MethodGet, "/subscriptions", nil)
	env.withSession(t, req)

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out serverutils.APIResponse[[]dto.SubscriptionSummary]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Data, 1)
	assert.Equal(t, "I-ABC", out.Data[0].AgreementId)
}

func TestStartSubscription_ReturnsApprovalLink(t *testing.T) {
	billing := &stubBillingService{startResp: &dto.StartSubscriptionResponse{
		AgreementId: "I-ABC",
		ApproveUrl:  "https://provider.example/approve",
	}}
	env := newTestEnv(billing, service.NewAllowAllWebhookVerifier())

	body := []byte(`{"plan_id":"PRO123","plan_name":"pro"}`)
	req := httptest.NewRequest(http.MethodPost, "/start-subscription", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	env.withSession(t, req)

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out serverutils.APIResponse[dto.StartSubscriptionResponse]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "https://provider.example/approve", out.Data.ApproveUrl)
}

func TestStartSubscription_RejectsUnknownPlanName(t *testing.T) {
	env := newTestEnv(&stubBillingService{}, service.NewAllowAllWebhookVerifier())

	body := []byte(`{"plan_id":"PRO123","plan_name":"platinum"}`)
	req := httptest.NewRequest(http.MethodPost, "/start-subscription", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	env.withSession(t, req)

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// --- Provider redirects ---

func TestPaymentReturn_RedirectsToClient(t *testing.T) {
	env := newTestEnv(&stubBillingService{execId: "I-ABC"}, service.NewAllowAllWebhookVerifier())

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/payment-return?token=EC-1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "http://client.example/pricing")
}

func TestPaymentReturn_MissingToken(t *testing.T) {
	billing := &stubBillingService{}
	env := newTestEnv(billing, service.NewAllowAllWebhookVerifier())

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/payment-return", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "notice=")
}

func TestPaymentCancel_RedirectsWithNotice(t *testing.T) {
	env := newTestEnv(&stubBillingService{}, service.NewAllowAllWebhookVerifier())

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/payment-cancel", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	loc := resp.Header.Get("Location")
	assert.Contains(t, loc, "cancelled")
}
