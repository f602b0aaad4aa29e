package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	allocationapp "github.com/rentbooks/backend/internal/application/allocation"
	"github.com/rentbooks/backend/internal/domain/allocation"
	"github.com/rentbooks/backend/internal/domain/shared/valueobject"
	"github.com/rentbooks/backend/internal/interfaces/http/dto"
	"github.com/rentbooks/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDeclarationRepository implements allocation.TaxDeclarationRepository for testing
type MockDeclarationRepository struct {
	mock.Mock
}

func (m *MockDeclarationRepository) Save(ctx context.Context, declaration *allocation.TaxDeclaration) error {
	args := m.Called(ctx, declaration)
	return args.Error(0)
}

func (m *MockDeclarationRepository) FindByID(ctx context.Context, id uuid.UUID) (*allocation.TaxDeclaration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*allocation.TaxDeclaration), args.Error(1)
}

func (m *MockDeclarationRepository) FindAll(ctx context.Context) ([]allocation.TaxDeclaration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]allocation.TaxDeclaration), args.Error(1)
}

// MockRevenueProvider implements allocation.PropertyRevenueProvider for testing
type MockRevenueProvider struct {
	mock.Mock
}

func (m *MockRevenueProvider) GetPropertyRevenue(ctx context.Context, propertyID uuid.UUID, period allocation.CompetencyPeriod) (valueobject.Money, error) {
	args := m.Called(ctx, propertyID, period)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

// MockTransactionWriter implements allocation.TransactionWriter for testing
type MockTransactionWriter struct {
	mock.Mock
}

func (m *MockTransactionWriter) CreateTransactions(ctx context.Context, transactions []allocation.NewTransaction) ([]uuid.UUID, error) {
	args := m.Called(ctx, transactions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

var (
	_ allocation.TaxDeclarationRepository = (*MockDeclarationRepository)(nil)
	_ allocation.PropertyRevenueProvider  = (*MockRevenueProvider)(nil)
	_ allocation.TransactionWriter        = (*MockTransactionWriter)(nil)
)

func setupAllocationTestRouter() (*gin.Engine, *MockDeclarationRepository, *MockRevenueProvider, *MockTransactionWriter) {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	declRepo := new(MockDeclarationRepository)
	revenue := new(MockRevenueProvider)
	writer := new(MockTransactionWriter)
	service := allocationapp.NewAllocationService(declRepo, revenue, writer)
	h := NewAllocationHandler(service)

	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	return r, declRepo, revenue, writer
}

func mustMoney(t *testing.T, value string) valueobject.Money {
	t.Helper()
	m, err := valueobject.ParseMoney(value, valueobject.BRL)
	require.NoError(t, err)
	return m
}

func draftDeclaration(t *testing.T, propertyIDs []uuid.UUID) *allocation.TaxDeclaration {
	t.Helper()
	decl, err := allocation.NewTaxDeclaration(
		allocation.TaxIRPJ,
		mustMoney(t, "3000.00"),
		time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
		propertyIDs,
		true, true, true,
	)
	require.NoError(t, err)
	return decl
}

func previewedDeclaration(t *testing.T, propertyIDs []uuid.UUID) *allocation.TaxDeclaration {
	t.Helper()
	decl, err := allocation.NewTaxDeclaration(
		allocation.TaxPIS,
		mustMoney(t, "500.00"),
		time.Date(2025, time.April, 25, 0, 0, 0, 0, time.UTC),
		propertyIDs,
		false, false, false,
	)
	require.NoError(t, err)

	recipients := make([]allocation.Recipient, len(propertyIDs))
	for i, id := range propertyIDs {
		recipients[i] = allocation.Recipient{PropertyID: id}
	}
	result, err := allocation.Distribute(allocation.DistributionRequest{
		Total:      decl.TotalAmount,
		Recipients: recipients,
		Method:     allocation.MethodEqual,
	})
	require.NoError(t, err)

	plan := &allocation.AllocationPlan{
		Allocations: []allocation.InstallmentAllocation{{
			Installment:  allocation.SingleInstallment(decl.TotalAmount, decl.PaymentDate),
			Distribution: *result,
		}},
	}
	require.NoError(t, decl.MarkPreviewed(plan))
	return decl
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateDeclarationEndpoint(t *testing.T) {
	r, declRepo, _, _ := setupAllocationTestRouter()

	declRepo.On("Save", mock.Anything, mock.AnythingOfType("*allocation.TaxDeclaration")).Return(nil)

	w := doJSON(r, http.MethodPost, "/api/v1/declarations", gin.H{
		"tax_type":     "IRPJ",
		"total_amount": "3.000,00",
		"payment_date": "2025-04-30T00:00:00Z",
		"property_ids": []string{uuid.NewString(), uuid.NewString()},
		"cota1":        true,
		"cota2":        true,
		"cota3":        true,
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "IRPJ", data["tax_type"])
	assert.Equal(t, "3000.00", data["total_amount"])
	assert.Equal(t, "DRAFT", data["status"])
	assert.Equal(t, "2025-01-01..2025-03-31", data["competency_period"])
	declRepo.AssertExpectations(t)
}

func TestCreateDeclarationMissingProperties(t *testing.T) {
	r, declRepo, _, _ := setupAllocationTestRouter()

	w := doJSON(r, http.MethodPost, "/api/v1/declarations", gin.H{
		"tax_type":     "IRPJ",
		"total_amount": "3000.00",
		"payment_date": "2025-04-30T00:00:00Z",
		"property_ids": []string{},
	})

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	declRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateDeclarationRejectsUnsupportedCurrency(t *testing.T) {
	r, declRepo, _, _ := setupAllocationTestRouter()

	w := doJSON(r, http.MethodPost, "/api/v1/declarations", gin.H{
		"tax_type":     "PIS",
		"total_amount": "500.00",
		"currency":     "GBP",
		"payment_date": "2025-04-25T00:00:00Z",
		"property_ids": []string{uuid.NewString()},
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	declRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateDeclarationMalformedAmount(t *testing.T) {
	r, declRepo, _, _ := setupAllocationTestRouter()

	w := doJSON(r, http.MethodPost, "/api/v1/declarations", gin.H{
		"tax_type":     "PIS",
		"total_amount": "3.000,001",
		"payment_date": "2025-04-25T00:00:00Z",
		"property_ids": []string{uuid.NewString()},
	})

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PARSE_ERROR", resp.Error.Code)
	declRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGetDeclarationEndpoint(t *testing.T) {
	r, declRepo, _, _ := setupAllocationTestRouter()

	decl := draftDeclaration(t, []uuid.UUID{uuid.New()})
	declRepo.On("FindByID", mock.Anything, decl.ID).Return(decl, nil)

	w := doJSON(r, http.MethodGet, "/api/v1/declarations/"+decl.ID.String(), nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, decl.ID.String(), data["id"])
}

func TestGetDeclarationNotFound(t *testing.T) {
	r, declRepo, _, _ := setupAllocationTestRouter()

	id := uuid.New()
	declRepo.On("FindByID", mock.Anything, id).Return(nil, nil)

	w := doJSON(r, http.MethodGet, "/api/v1/declarations/"+id.String(), nil)

	require.Equal(t, http.StatusNotFound, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestGetDeclarationInvalidID(t *testing.T) {
	r, _, _, _ := setupAllocationTestRouter()

	w := doJSON(r, http.MethodGet, "/api/v1/declarations/not-a-uuid", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateDeclarationEndpoint(t *testing.T) {
	r, declRepo, _, _ := setupAllocationTestRouter()

	propertyIDs := []uuid.UUID{uuid.New()}
	decl := previewedDeclaration(t, propertyIDs)
	declRepo.On("FindByID", mock.Anything, decl.ID).Return(decl, nil)
	declRepo.On("Save", mock.Anything, decl).Return(nil)

	w := doJSON(r, http.MethodPut, "/api/v1/declarations/"+decl.ID.String(), gin.H{
		"tax_type":     "PIS",
		"total_amount": "750,00",
		"payment_date": "2025-05-25T00:00:00Z",
		"property_ids": []string{propertyIDs[0].String()},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, "DRAFT", data["status"])
	assert.Equal(t, "750.00", data["total_amount"])
	assert.Equal(t, "2025-04-01..2025-04-30", data["competency_period"])
	assert.Nil(t, data["plan"])
	declRepo.AssertExpectations(t)
}

func TestUpdateCommittedDeclarationRejected(t *testing.T) {
	r, declRepo, _, _ := setupAllocationTestRouter()

	propertyIDs := []uuid.UUID{uuid.New()}
	decl := previewedDeclaration(t, propertyIDs)
	require.NoError(t, decl.MarkCommitted())
	declRepo.On("FindByID", mock.Anything, decl.ID).Return(decl, nil)

	w := doJSON(r, http.MethodPut, "/api/v1/declarations/"+decl.ID.String(), gin.H{
		"tax_type":     "PIS",
		"total_amount": "750,00",
		"payment_date": "2025-05-25T00:00:00Z",
		"property_ids": []string{propertyIDs[0].String()},
	})

	require.Equal(t, http.StatusConflict, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_STATE", resp.Error.Code)
	declRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateDeclarationMissingProperties(t *testing.T) {
	r, declRepo, _, _ := setupAllocationTestRouter()

	w := doJSON(r, http.MethodPut, "/api/v1/declarations/"+uuid.NewString(), gin.H{
		"tax_type":     "PIS",
		"total_amount": "750,00",
		"payment_date": "2025-05-25T00:00:00Z",
		"property_ids": []string{},
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	declRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestListDeclarationsEndpoint(t *testing.T) {
	r, declRepo, _, _ := setupAllocationTestRouter()

	first := draftDeclaration(t, []uuid.UUID{uuid.New()})
	second := draftDeclaration(t, []uuid.UUID{uuid.New()})
	declRepo.On("FindAll", mock.Anything).Return([]allocation.TaxDeclaration{*first, *second}, nil)

	w := doJSON(r, http.MethodGet, "/api/v1/declarations", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
}

func TestPreviewDeclarationEndpoint(t *testing.T) {
	r, declRepo, revenue, _ := setupAllocationTestRouter()

	propertyIDs := []uuid.UUID{uuid.New(), uuid.New()}
	decl := draftDeclaration(t, propertyIDs)
	declRepo.On("FindByID", mock.Anything, decl.ID).Return(decl, nil)
	declRepo.On("Save", mock.Anything, decl).Return(nil)
	revenue.On("GetPropertyRevenue", mock.Anything, propertyIDs[0], mock.Anything).
		Return(mustMoney(t, "600.00"), nil).Once()
	revenue.On("GetPropertyRevenue", mock.Anything, propertyIDs[1], mock.Anything).
		Return(mustMoney(t, "400.00"), nil).Once()

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/declarations/%s/preview", decl.ID), nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, "PREVIEWED", data["status"])

	plan := data["plan"].([]any)
	assert.Len(t, plan, 3)
	revenue.AssertExpectations(t)
}

func TestPreviewDeclarationZeroRevenue(t *testing.T) {
	r, declRepo, revenue, _ := setupAllocationTestRouter()

	propertyIDs := []uuid.UUID{uuid.New(), uuid.New()}
	decl := draftDeclaration(t, propertyIDs)
	declRepo.On("FindByID", mock.Anything, decl.ID).Return(decl, nil)
	declRepo.On("Save", mock.Anything, decl).Return(nil)
	revenue.On("GetPropertyRevenue", mock.Anything, mock.Anything, mock.Anything).
		Return(mustMoney(t, "0.00"), nil)

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/declarations/%s/preview", decl.ID), nil)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INSUFFICIENT_DATA", resp.Error.Code)
	assert.Equal(t, allocation.DeclarationStatusFailed, decl.Status)
}

func TestCommitDeclarationEndpoint(t *testing.T) {
	r, declRepo, _, writer := setupAllocationTestRouter()

	propertyIDs := []uuid.UUID{uuid.New(), uuid.New()}
	decl := previewedDeclaration(t, propertyIDs)
	txIDs := []uuid.UUID{uuid.New(), uuid.New()}

	declRepo.On("FindByID", mock.Anything, decl.ID).Return(decl, nil)
	declRepo.On("Save", mock.Anything, decl).Return(nil)
	writer.On("CreateTransactions", mock.Anything, mock.MatchedBy(func(txs []allocation.NewTransaction) bool {
		return len(txs) == 2 && txs[0].Category == "TAX_PIS"
	})).Return(txIDs, nil)

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/declarations/%s/commit", decl.ID), nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	declaration := data["declaration"].(map[string]any)
	assert.Equal(t, "COMMITTED", declaration["status"])
	assert.Len(t, data["transaction_ids"].([]any), 2)
	writer.AssertExpectations(t)
}

func TestCommitDeclarationTwiceRejected(t *testing.T) {
	r, declRepo, _, writer := setupAllocationTestRouter()

	decl := previewedDeclaration(t, []uuid.UUID{uuid.New()})
	require.NoError(t, decl.MarkCommitted())
	declRepo.On("FindByID", mock.Anything, decl.ID).Return(decl, nil)

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/declarations/%s/commit", decl.ID), nil)

	require.Equal(t, http.StatusConflict, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_STATE", resp.Error.Code)
	writer.AssertNotCalled(t, "CreateTransactions", mock.Anything, mock.Anything)
}

func TestCommitDeclarationFromDraftRejected(t *testing.T) {
	r, declRepo, _, writer := setupAllocationTestRouter()

	decl := draftDeclaration(t, []uuid.UUID{uuid.New()})
	declRepo.On("FindByID", mock.Anything, decl.ID).Return(decl, nil)

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/declarations/%s/commit", decl.ID), nil)

	require.Equal(t, http.StatusConflict, w.Code)
	writer.AssertNotCalled(t, "CreateTransactions", mock.Anything, mock.Anything)
}
