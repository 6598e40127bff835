package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/api/middleware"
	"github.com/dealeros/dealeros-backend/internal/tenancy"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	"github.com/dealeros/dealeros-backend/pkg/types"
)

var fixedNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

type requestOpts struct {
	userID uuid.UUID
	tenant *tenancy.Tenant
	params map[string]string
}

func newRequest(t *testing.T, method, target string, body any, opts requestOpts) *http.Request {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	ctx := middleware.WithRequestTime(req.Context(), fixedNow)
	if opts.userID != uuid.Nil {
		ctx = middleware.WithUserID(ctx, opts.userID.String())
	}
	if opts.tenant != nil {
		ctx = middleware.WithTenant(ctx, opts.tenant)
	}
	if len(opts.params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range opts.params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func ownerTenant() *tenancy.Tenant {
	return &tenancy.Tenant{DealerID: uuid.New(), Role: enums.MemberRoleOwner}
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v (%s)", err, envelope.Data)
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error
}
