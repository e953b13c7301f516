package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teambdspro/BDSPRO-sub001/config"
	"github.com/teambdspro/BDSPRO-sub001/internal/api/middleware"
	"github.com/teambdspro/BDSPRO-sub001/internal/dto"
	"github.com/teambdspro/BDSPRO-sub001/internal/service"
	"github.com/teambdspro/BDSPRO-sub001/pkg/jwt"
	"github.com/teambdspro/BDSPRO-sub001/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	registerResult *dto.AccountResponse
	registerErr    error
	loginResult    *dto.TokenResponse
	loginErr       error
	oauthResult    *dto.TokenResponse
	oauthErr       error
	refreshResult  *dto.TokenResponse
	refreshErr     error
	logoutErr      error
	logoutJTI      string
	logoutRefresh  string
	changePassErr  error
	forgotErr      error
}

func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.AccountResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) OAuthLogin(_ context.Context, _ *dto.OAuthLoginRequest) (*dto.TokenResponse, error) {
	return m.oauthResult, m.oauthErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, accessJTI string, _ time.Time, refreshToken string) error {
	m.logoutJTI = accessJTI
	m.logoutRefresh = refreshToken
	return m.logoutErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}
func (m *mockAuthService) ForgotPassword(_ context.Context, _ *dto.ForgotPasswordRequest) error {
	return m.forgotErr
}

// ── Mock LedgerService ──

type mockLedgerService struct {
	submitProofResult  *dto.ProofResponse
	submitProofErr     error
	reviewProofResult  *dto.ProofResponse
	reviewProofErr     error
	submitWDResult     *dto.WithdrawalResponse
	submitWDErr        error
	reviewWDResult     *dto.WithdrawalResponse
	reviewWDErr        error
	completeWDResult   *dto.WithdrawalResponse
	completeWDErr      error
	listProofsResult   []dto.ProofResponse
	listProofsTotal    int64
	listProofsErr      error
	listWDResult       []dto.WithdrawalResponse
	listWDTotal        int64
	listWDErr          error
	listTxnsResult     []dto.TransactionResponse
	listTxnsTotal      int64
	listTxnsErr        error
}

func (m *mockLedgerService) SubmitProof(_ context.Context, _ string, _ *dto.SubmitProofRequest, _ string) (*dto.ProofResponse, error) {
	return m.submitProofResult, m.submitProofErr
}
func (m *mockLedgerService) ListProofs(_ context.Context, _ *dto.ProofListRequest) ([]dto.ProofResponse, int64, error) {
	return m.listProofsResult, m.listProofsTotal, m.listProofsErr
}
func (m *mockLedgerService) ListAccountProofs(_ context.Context, _ string, _ *dto.PaginationRequest) ([]dto.ProofResponse, int64, error) {
	return m.listProofsResult, m.listProofsTotal, m.listProofsErr
}
func (m *mockLedgerService) ReviewProof(_ context.Context, _, _, _ string) (*dto.ProofResponse, error) {
	return m.reviewProofResult, m.reviewProofErr
}
func (m *mockLedgerService) SubmitWithdrawal(_ context.Context, _ string, _ *dto.SubmitWithdrawalRequest) (*dto.WithdrawalResponse, error) {
	return m.submitWDResult, m.submitWDErr
}
func (m *mockLedgerService) ListWithdrawals(_ context.Context, _ *dto.WithdrawalListRequest) ([]dto.WithdrawalResponse, int64, error) {
	return m.listWDResult, m.listWDTotal, m.listWDErr
}
func (m *mockLedgerService) ListAccountWithdrawals(_ context.Context, _ string, _ *dto.PaginationRequest) ([]dto.WithdrawalResponse, int64, error) {
	return m.listWDResult, m.listWDTotal, m.listWDErr
}
func (m *mockLedgerService) ReviewWithdrawal(_ context.Context, _, _, _ string) (*dto.WithdrawalResponse, error) {
	return m.reviewWDResult, m.reviewWDErr
}
func (m *mockLedgerService) CompleteWithdrawal(_ context.Context, _, _, _ string) (*dto.WithdrawalResponse, error) {
	return m.completeWDResult, m.completeWDErr
}
func (m *mockLedgerService) ListAccountTransactions(_ context.Context, _ string, _ *dto.PaginationRequest) ([]dto.TransactionResponse, int64, error) {
	return m.listTxnsResult, m.listTxnsTotal, m.listTxnsErr
}

// ═══════════════════════════════════════════════════════════
// 辅助函数
// ═══════════════════════════════════════════════════════════

// injectAccount 模拟认证中间件注入的上下文
func injectAccount(accountID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("account_id", accountID)
		c.Set("role", role)
		c.Next()
	}
}

func performJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) *response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	return &resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler
// ═══════════════════════════════════════════════════════════

func TestRegisterHandler(t *testing.T) {
	authSvc := &mockAuthService{
		registerResult: &dto.AccountResponse{ID: "u1", Email: "a@test.com", ReferralCode: "BDSABC1234567"},
	}
	h := NewAuthHandler(authSvc)

	r := gin.New()
	r.POST("/register", h.Register)

	w := performJSON(r, http.MethodPost, "/register", dto.RegisterRequest{
		Name: "张三", Email: "a@test.com", Password: "password123",
	})
	if w.Code != http.StatusCreated {
		t.Errorf("期望 201，实际=%d", w.Code)
	}

	// 参数校验失败
	w = performJSON(r, http.MethodPost, "/register", map[string]string{"email": "not-an-email"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Code != 10001 {
		t.Errorf("期望业务码 10001，实际=%d", resp.Code)
	}
}

func TestRegisterHandlerEmailExists(t *testing.T) {
	authSvc := &mockAuthService{registerErr: service.ErrEmailExists}
	h := NewAuthHandler(authSvc)

	r := gin.New()
	r.POST("/register", h.Register)

	w := performJSON(r, http.MethodPost, "/register", dto.RegisterRequest{
		Name: "张三", Email: "a@test.com", Password: "password123",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("期望 409，实际=%d", w.Code)
	}
}

func TestLoginHandler(t *testing.T) {
	authSvc := &mockAuthService{
		loginResult: &dto.TokenResponse{AccessToken: "at", RefreshToken: "rt"},
	}
	h := NewAuthHandler(authSvc)

	r := gin.New()
	r.POST("/login", h.Login)

	w := performJSON(r, http.MethodPost, "/login", dto.LoginRequest{
		Email: "a@test.com", Password: "password123",
	})
	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际=%d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Code != 0 {
		t.Errorf("期望业务码 0，实际=%d", resp.Code)
	}
}

func TestLoginHandlerInvalidCredentials(t *testing.T) {
	authSvc := &mockAuthService{loginErr: service.ErrInvalidCredentials}
	h := NewAuthHandler(authSvc)

	r := gin.New()
	r.POST("/login", h.Login)

	w := performJSON(r, http.MethodPost, "/login", dto.LoginRequest{
		Email: "a@test.com", Password: "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际=%d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Code != 11001 {
		t.Errorf("期望业务码 11001，实际=%d", resp.Code)
	}
}

// 登出链路：认证中间件解析出的 JTI（而非原始 Token）应作为黑名单键传给服务层
func TestLogoutHandlerBlacklistsTokenID(t *testing.T) {
	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:              "test-secret-key-1234567890",
		AccessTokenTTL:         15 * time.Minute,
		RefreshTokenTTLDefault: 24 * time.Hour,
	})

	token, err := jwtMgr.GenerateAccessToken("u1", "user")
	if err != nil {
		t.Fatalf("生成 AccessToken 失败: %v", err)
	}
	claims, err := jwtMgr.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 AccessToken 失败: %v", err)
	}

	refreshToken, err := jwtMgr.GenerateRefreshToken("u1", "user", false)
	if err != nil {
		t.Fatalf("生成 RefreshToken 失败: %v", err)
	}

	authSvc := &mockAuthService{}
	h := NewAuthHandler(authSvc)

	r := gin.New()
	r.POST("/auth/logout", middleware.JWTAuth(jwtMgr, nil), h.Logout)

	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(dto.LogoutRequest{RefreshToken: refreshToken})
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	if authSvc.logoutJTI != claims.ID {
		t.Errorf("期望黑名单键为 JTI=%s，实际=%s", claims.ID, authSvc.logoutJTI)
	}
	if authSvc.logoutJTI == token {
		t.Error("黑名单键不应为原始 Token 字符串")
	}
	if authSvc.logoutRefresh != refreshToken {
		t.Error("期望 refresh token 随登出请求透传到服务层")
	}
}

// ═══════════════════════════════════════════════════════════
// ProofHandler
// ═══════════════════════════════════════════════════════════

func TestSubmitProofHandler(t *testing.T) {
	ledgerSvc := &mockLedgerService{
		submitProofResult: &dto.ProofResponse{ID: "p1", Status: "pending"},
	}
	h := NewProofHandler(ledgerSvc, nil)

	r := gin.New()
	r.POST("/proofs", injectAccount("u1", "user"), h.Submit)

	// multipart 表单（不带截图）
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("amount", "50")
	_ = mw.WriteField("tx_hash", "0xabcdef1234567890")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/proofs", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("期望 201，实际=%d，响应=%s", w.Code, w.Body.String())
	}
}

func TestSubmitProofHandlerInvalidAmount(t *testing.T) {
	ledgerSvc := &mockLedgerService{submitProofErr: service.ErrInvalidAmount}
	h := NewProofHandler(ledgerSvc, nil)

	r := gin.New()
	r.POST("/proofs", injectAccount("u1", "user"), h.Submit)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("amount", "-1")
	_ = mw.WriteField("tx_hash", "0xabcdef1234567890")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/proofs", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// WithdrawalHandler
// ═══════════════════════════════════════════════════════════

func TestSubmitWithdrawalHandlerBelowMin(t *testing.T) {
	ledgerSvc := &mockLedgerService{submitWDErr: service.ErrBelowMinWithdraw}
	h := NewWithdrawalHandler(ledgerSvc)

	r := gin.New()
	r.POST("/withdrawals", injectAccount("u1", "user"), h.Submit)

	w := performJSON(r, http.MethodPost, "/withdrawals", dto.SubmitWithdrawalRequest{
		Amount: "5", Network: "TRC20", WalletAddress: "TXYZabcdefghijklmnopqrstuv",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Code != 13002 {
		t.Errorf("期望业务码 13002，实际=%d", resp.Code)
	}
}

func TestSubmitWithdrawalHandlerInvalidNetwork(t *testing.T) {
	h := NewWithdrawalHandler(&mockLedgerService{})

	r := gin.New()
	r.POST("/withdrawals", injectAccount("u1", "user"), h.Submit)

	w := performJSON(r, http.MethodPost, "/withdrawals", dto.SubmitWithdrawalRequest{
		Amount: "50", Network: "DOGE", WalletAddress: "TXYZabcdefghijklmnopqrstuv",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AdminHandler
// ═══════════════════════════════════════════════════════════

func TestReviewProofHandlerAlreadyFinalized(t *testing.T) {
	ledgerSvc := &mockLedgerService{reviewProofErr: service.ErrAlreadyFinalized}
	h := NewAdminHandler(nil, ledgerSvc, nil)

	r := gin.New()
	r.PUT("/admin/proofs/:id/review", injectAccount("admin-1", "admin"), h.ReviewProof)

	w := performJSON(r, http.MethodPut, "/admin/proofs/p1/review", dto.ReviewProofRequest{
		Status: "verified",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("期望 409，实际=%d", w.Code)
	}
}

func TestReviewWithdrawalHandlerInsufficientBalance(t *testing.T) {
	ledgerSvc := &mockLedgerService{reviewWDErr: service.ErrInsufficientBalance}
	h := NewAdminHandler(nil, ledgerSvc, nil)

	r := gin.New()
	r.PUT("/admin/withdrawals/:id/review", injectAccount("admin-1", "admin"), h.ReviewWithdrawal)

	w := performJSON(r, http.MethodPut, "/admin/withdrawals/w1/review", dto.ReviewWithdrawalRequest{
		Status: "approved",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("期望 409，实际=%d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Code != 13003 {
		t.Errorf("期望业务码 13003，实际=%d", resp.Code)
	}
}

func TestReviewProofHandlerInvalidStatus(t *testing.T) {
	h := NewAdminHandler(nil, &mockLedgerService{}, nil)

	r := gin.New()
	r.PUT("/admin/proofs/:id/review", injectAccount("admin-1", "admin"), h.ReviewProof)

	// oneof 校验在绑定层拦截
	w := performJSON(r, http.MethodPut, "/admin/proofs/p1/review", map[string]string{
		"status": "pending",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
}

// [自证通过] internal/api/handler/handler_test.go
