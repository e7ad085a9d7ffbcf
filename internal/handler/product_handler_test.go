package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"petshop/internal/domain/model"
	"petshop/internal/handler"
	repo "petshop/internal/repository"
	"petshop/internal/usecase"
)

type productRepoMock struct {
	mock.Mock
}

func (m *productRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]model.Product), args.Get(1).(int64), args.Error(2)
}

func (m *productRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *productRepoMock) Featured(ctx context.Context, limit int) ([]model.Product, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *productRepoMock) Newest(ctx context.Context, limit int) ([]model.Product, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *productRepoMock) Related(ctx context.Context, p model.Product, limit int) ([]model.Product, error) {
	args := m.Called(ctx, p, limit)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *productRepoMock) LowStock(ctx context.Context, threshold int64) ([]model.Product, error) {
	panic("not used")
}

func (m *productRepoMock) Count(ctx context.Context) (int64, error) {
	panic("not used")
}

func (m *productRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used")
}

func (m *productRepoMock) Update(ctx context.Context, p model.Product) error {
	panic("not used")
}

func (m *productRepoMock) SoftDelete(ctx context.Context, id string) error {
	panic("not used")
}

func newProductServer(products *productRepoMock) *echo.Echo {
	e := echo.New()
	handler.NewProductHandler(usecase.NewProductUsecase(products)).RegisterRoutes(e)
	return e
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestProductHandler_List(t *testing.T) {
	products := new(productRepoMock)
	bone := model.Product{ID: "PID0000BONE", Name: "Chew bone", Price: decimal.NewFromInt(45000), StockQuantity: 20, IsActive: true}

	products.On("List", mock.Anything, mock.MatchedBy(func(q repo.ProductListQuery) bool {
		return q.Page == 2 && q.Limit == 5 && q.Q == "bone" &&
			q.PetType != nil && *q.PetType == model.PetTypeDog &&
			q.MinPrice != nil && q.MinPrice.Equal(decimal.NewFromInt(10000)) &&
			q.MaxPrice == nil &&
			q.Sort == repo.SortPriceAsc && !q.IncludeInactive
	})).Return([]model.Product{bone}, int64(6), nil).Once()

	rec := get(newProductServer(products), "/products?page=2&limit=5&q=bone&pet_type=Dog&min_price=10000&sort=price_asc")
	require.Equal(t, http.StatusOK, rec.Code)

	var out usecase.ProductListOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, int64(6), out.Total)
	assert.Equal(t, 2, out.TotalPages)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "PID0000BONE", out.Items[0].ID)
	assert.True(t, out.Items[0].Price.Equal(decimal.NewFromInt(45000)))
	products.AssertExpectations(t)
}

func TestProductHandler_ListRejects(t *testing.T) {
	products := new(productRepoMock)
	e := newProductServer(products)

	cases := []struct {
		query string
		msg   string
	}{
		{"page=x", "invalid page"},
		{"limit=ten", "invalid limit"},
		{"min_price=cheap", "invalid min_price"},
		{"max_price=1e", "invalid max_price"},
		{"min_price=-1", "min_price must be >= 0"},
		{"min_price=500&max_price=100", "min_price must be <= max_price"},
		{"pet_type=Fish", "invalid pet_type"},
		{"sort=random", "invalid sort"},
		{"limit=101", "invalid limit"},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			rec := get(e, "/products?"+tc.query)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.msg, errorBody(t, rec).Error)
		})
	}
	products.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestProductHandler_Detail(t *testing.T) {
	products := new(productRepoMock)
	tower := model.Product{ID: "PID000TOWER", Name: "Cat tower", CategoryID: "CAT0002", IsActive: true}
	hidden := model.Product{ID: "PID00HIDDEN", IsActive: false}

	products.On("FindByID", mock.Anything, "PID000TOWER").Return(tower, nil)
	products.On("FindByID", mock.Anything, "PID00HIDDEN").Return(hidden, nil)
	products.On("FindByID", mock.Anything, "PID0MISSING").Return(model.Product{}, repo.ErrNotFound)
	products.On("Related", mock.Anything, tower, 4).Return([]model.Product{{ID: "PID0SCRATCH", IsActive: true}}, nil)

	e := newProductServer(products)

	rec := get(e, "/products/PID000TOWER")
	require.Equal(t, http.StatusOK, rec.Code)
	var out usecase.ProductDetailOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Cat tower", out.Product.Name)
	require.Len(t, out.Related, 1)
	assert.Equal(t, "PID0SCRATCH", out.Related[0].ID)

	for _, id := range []string{"PID00HIDDEN", "PID0MISSING"} {
		rec := get(e, "/products/"+id)
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.Equal(t, "not found", errorBody(t, rec).Error)
	}
}

func TestProductHandler_HomeLists(t *testing.T) {
	products := new(productRepoMock)
	products.On("Featured", mock.Anything, 8).Return([]model.Product{}, nil).Once()
	products.On("Newest", mock.Anything, 3).Return([]model.Product{}, nil).Once()

	e := newProductServer(products)
	assert.Equal(t, http.StatusOK, get(e, "/products/featured").Code)
	assert.Equal(t, http.StatusOK, get(e, "/products/newest?limit=3").Code)
	assert.Equal(t, http.StatusBadRequest, get(e, "/products/newest?limit=x").Code)
	products.AssertExpectations(t)
}
