package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/api/middleware"
	"github.com/dealeros/dealeros-backend/internal/auth"
	"github.com/dealeros/dealeros-backend/internal/users"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
)

type stubAuthService struct {
	loginReq    auth.LoginRequest
	refreshReq  auth.RefreshRequest
	loggedOut   string
	switchInput auth.SwitchDealerInput
	err         error
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.loginReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &auth.LoginResponse{
		TokenPair: auth.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
		User:      &users.UserDTO{ID: uuid.New(), Email: req.Email},
	}, nil
}

func (s *stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	s.refreshReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &auth.RefreshResponse{TokenPair: auth.TokenPair{AccessToken: "rotated", RefreshToken: "refresh-2"}}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, accessToken string) error {
	s.loggedOut = accessToken
	return s.err
}

func (s *stubAuthService) SwitchDealer(ctx context.Context, input auth.SwitchDealerInput) (*auth.SwitchDealerResult, error) {
	s.switchInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &auth.SwitchDealerResult{
		TokenPair: auth.TokenPair{AccessToken: "switched", RefreshToken: "refresh-3"},
		Dealer:    auth.DealerSummary{ID: input.DealerID, Role: enums.MemberRoleAdmin},
	}, nil
}

type stubRegisterService struct {
	req auth.RegisterRequest
	err error
}

func (s *stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) error {
	s.req = req
	return s.err
}

func TestAuthLoginSetsTokenHeader(t *testing.T) {
	svc := &stubAuthService{}
	req := newRequest(t, http.MethodPost, "/auth/login", `{"email":"a@b.ch","password":"secret"}`, requestOpts{})
	rec := httptest.NewRecorder()

	AuthLogin(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get(middleware.AccessTokenHeader) != "access" {
		t.Fatalf("expected access token header, got %q", rec.Header().Get(middleware.AccessTokenHeader))
	}
	var resp auth.LoginResponse
	decodeData(t, rec, &resp)
	if resp.RefreshToken != "refresh" {
		t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
	}
}

func TestAuthLoginBadCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	req := newRequest(t, http.MethodPost, "/auth/login", `{"email":"a@b.ch","password":"nope"}`, requestOpts{})
	rec := httptest.NewRecorder()

	AuthLogin(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthLoginValidatesBody(t *testing.T) {
	req := newRequest(t, http.MethodPost, "/auth/login", `{"email":"not-an-email"}`, requestOpts{})
	rec := httptest.NewRecorder()

	AuthLogin(&stubAuthService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAuthRefreshForwardsBearerToken(t *testing.T) {
	svc := &stubAuthService{}
	req := newRequest(t, http.MethodPost, "/auth/refresh", `{"refresh_token":"r1"}`, requestOpts{})
	req.Header.Set("Authorization", "Bearer expired-access")
	rec := httptest.NewRecorder()

	AuthRefresh(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.refreshReq.AccessToken != "expired-access" || svc.refreshReq.RefreshToken != "r1" {
		t.Fatalf("unexpected refresh request %+v", svc.refreshReq)
	}
	if rec.Header().Get(middleware.AccessTokenHeader) != "rotated" {
		t.Fatalf("expected rotated token header")
	}
}

func TestAuthRefreshMissingBearer(t *testing.T) {
	req := newRequest(t, http.MethodPost, "/auth/refresh", `{"refresh_token":"r1"}`, requestOpts{})
	rec := httptest.NewRecorder()

	AuthRefresh(&stubAuthService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthLogout(t *testing.T) {
	svc := &stubAuthService{}
	req := newRequest(t, http.MethodPost, "/auth/logout", nil, requestOpts{})
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	AuthLogout(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.loggedOut != "tok" {
		t.Fatalf("expected token forwarded, got %q", svc.loggedOut)
	}
}

func TestAuthSwitchDealer(t *testing.T) {
	svc := &stubAuthService{}
	userID := uuid.New()
	dealerID := uuid.New()
	req := newRequest(t, http.MethodPost, "/auth/switch-dealer", `{"dealer_id":"`+dealerID.String()+`"}`, requestOpts{userID: userID})
	rec := httptest.NewRecorder()

	AuthSwitchDealer(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.switchInput.UserID != userID || svc.switchInput.DealerID != dealerID {
		t.Fatalf("unexpected switch input %+v", svc.switchInput)
	}
	if svc.switchInput.AccessTokenID != middleware.SessionIDFromContext(req.Context()) {
		t.Fatalf("expected session id from context")
	}
	if rec.Header().Get(middleware.AccessTokenHeader) != "switched" {
		t.Fatalf("expected switched token header")
	}
}

func TestAuthSwitchDealerForbidden(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeForbidden, "dealer membership required")}
	req := newRequest(t, http.MethodPost, "/auth/switch-dealer", `{"dealer_id":"`+uuid.NewString()+`"}`, requestOpts{userID: uuid.New()})
	rec := httptest.NewRecorder()

	AuthSwitchDealer(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestAuthRegisterLogsIn(t *testing.T) {
	reg := &stubRegisterService{}
	svc := &stubAuthService{}
	body := `{"full_name":"Anna Muster","email":"anna@garage.ch","password":"Secret123!","company_name":"Garage Muster","languages":["de","fr"],"accept_tos":true}`
	req := newRequest(t, http.MethodPost, "/auth/register", body, requestOpts{})
	rec := httptest.NewRecorder()

	AuthRegister(reg, svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if reg.req.CompanyName != "Garage Muster" {
		t.Fatalf("unexpected register request %+v", reg.req)
	}
	if svc.loginReq.Email != "anna@garage.ch" || svc.loginReq.Password != "Secret123!" {
		t.Fatalf("expected login with registered credentials, got %+v", svc.loginReq)
	}
}

func TestAuthRegisterConflict(t *testing.T) {
	reg := &stubRegisterService{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	body := `{"full_name":"Anna Muster","email":"anna@garage.ch","password":"Secret123!","company_name":"Garage Muster","accept_tos":true}`
	req := newRequest(t, http.MethodPost, "/auth/register", body, requestOpts{})
	rec := httptest.NewRecorder()

	AuthRegister(reg, &stubAuthService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}
