package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealeros/dealeros-backend/internal/tenancy"
	"github.com/dealeros/dealeros-backend/internal/vehicles"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/pagination"
)

type stubVehicles struct {
	listParams vehicles.ListParams
	vehicleID  uuid.UUID
	internal   bool
	err        error
}

func (s *stubVehicles) List(ctx context.Context, dealerID uuid.UUID, params vehicles.ListParams) (pagination.Page[vehicles.VehicleSummaryDTO], error) {
	s.listParams = params
	return pagination.Page[vehicles.VehicleSummaryDTO]{Items: []vehicles.VehicleSummaryDTO{}}, s.err
}

func (s *stubVehicles) Get(ctx context.Context, dealerID, vehicleID uuid.UUID, internal bool) (*vehicles.VehicleDTO, error) {
	s.vehicleID, s.internal = vehicleID, internal
	if s.err != nil {
		return nil, s.err
	}
	return &vehicles.VehicleDTO{VehicleSummaryDTO: vehicles.VehicleSummaryDTO{ID: vehicleID}}, nil
}

func TestVehiclesListParsesStatus(t *testing.T) {
	svc := &stubVehicles{}
	req := newRequest(t, http.MethodGet, "/vehicles?status=sold&limit=10", nil, requestOpts{tenant: ownerTenant()})
	rec := httptest.NewRecorder()

	VehiclesList(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.listParams.Status)
	assert.Equal(t, enums.VehicleStatusSold, *svc.listParams.Status)
	assert.Equal(t, 10, svc.listParams.Limit)

	req = newRequest(t, http.MethodGet, "/vehicles?status=all", nil, requestOpts{tenant: ownerTenant()})
	rec = httptest.NewRecorder()
	VehiclesList(svc, nil).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.listParams.Status)

	req = newRequest(t, http.MethodGet, "/vehicles?status=scrapped", nil, requestOpts{tenant: ownerTenant()})
	rec = httptest.NewRecorder()
	VehiclesList(svc, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVehiclesGetIncludesCostFieldsByRole(t *testing.T) {
	svc := &stubVehicles{}
	id := uuid.New()
	params := map[string]string{"vehicleId": id.String()}

	req := newRequest(t, http.MethodGet, "/vehicles/x", nil, requestOpts{tenant: ownerTenant(), params: params})
	rec := httptest.NewRecorder()
	VehiclesGet(svc, nil).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, svc.vehicleID)
	assert.True(t, svc.internal)

	viewer := &tenancy.Tenant{DealerID: uuid.New(), Role: enums.MemberRoleViewer}
	req = newRequest(t, http.MethodGet, "/vehicles/x", nil, requestOpts{tenant: viewer, params: params})
	rec = httptest.NewRecorder()
	VehiclesGet(svc, nil).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.internal)
}

func TestVehiclesGetErrors(t *testing.T) {
	req := newRequest(t, http.MethodGet, "/vehicles/x", nil, requestOpts{tenant: ownerTenant(), params: map[string]string{"vehicleId": "nope"}})
	rec := httptest.NewRecorder()
	VehiclesGet(&stubVehicles{}, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	missing := &stubVehicles{err: pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")}
	req = newRequest(t, http.MethodGet, "/vehicles/x", nil, requestOpts{tenant: ownerTenant(), params: map[string]string{"vehicleId": uuid.NewString()}})
	rec = httptest.NewRecorder()
	VehiclesGet(missing, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = newRequest(t, http.MethodGet, "/vehicles", nil, requestOpts{})
	rec = httptest.NewRecorder()
	VehiclesList(&stubVehicles{}, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
