package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"product-catalog/internal/products"

	"github.com/gin-gonic/gin"
)

type stubService struct {
	listFn   func(ctx context.Context) ([]products.Product, error)
	getFn    func(ctx context.Context, id int64) (products.Product, error)
	createFn func(ctx context.Context, p products.Product) (products.Product, error)
}

func (s *stubService) ListProducts(ctx context.Context) ([]products.Product, error) {
	return s.listFn(ctx)
}
func (s *stubService) GetProduct(ctx context.Context, id int64) (products.Product, error) {
	return s.getFn(ctx, id)
}
func (s *stubService) CreateProduct(ctx context.Context, p products.Product) (products.Product, error) {
	return s.createFn(ctx, p)
}

func setupRouter(svc ProductService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc)
	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)
	r.POST("/products", h.CreateProduct)
	return r
}

func decodeDetail(t *testing.T, body *bytes.Buffer) string {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp.Detail
}

func TestHandler_CreateProduct(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantDetail string
		wantInput  *products.Product
	}{
		{
			name:       "success",
			body:       `{"id":1,"name":"Widget","price":9.99}`,
			wantStatus: http.StatusOK,
			wantInput:  &products.Product{ID: 1, Name: "Widget", Price: 9.99},
		},
		{
			name:       "zero id and price are accepted",
			body:       `{"id":0,"name":"Free","price":0}`,
			wantStatus: http.StatusOK,
			wantInput:  &products.Product{ID: 0, Name: "Free", Price: 0},
		},
		{
			name:       "duplicate id",
			body:       `{"id":1,"name":"Widget","price":9.99}`,
			svcErr:     products.ErrDuplicateID,
			wantStatus: http.StatusBadRequest,
			wantDetail: "Product ID already exists",
		},
		{
			name:       "missing id",
			body:       `{"name":"Widget","price":9.99}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: detailInvalidBody,
		},
		{
			name:       "missing price",
			body:       `{"id":1,"name":"Widget"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: detailInvalidBody,
		},
		{
			name:       "wrong price type",
			body:       `{"id":1,"name":"Widget","price":"cheap"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: detailInvalidBody,
		},
		{
			name:       "name too long",
			body:       `{"id":1,"name":"` + string(bytes.Repeat([]byte("a"), 201)) + `","price":1}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: detailInvalidBody,
		},
		{
			name:       "invalid json",
			body:       `not json`,
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: detailInvalidBody,
		},
		{
			name:       "blank name rejected by service",
			body:       `{"id":1,"name":"  ","price":1}`,
			svcErr:     products.ErrInvalidName,
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: products.ErrInvalidName.Error(),
		},
		{
			name:       "store failure",
			body:       `{"id":1,"name":"Widget","price":1}`,
			svcErr:     errors.New("disk full"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "failed to create product",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *products.Product
			svc := &stubService{
				createFn: func(_ context.Context, p products.Product) (products.Product, error) {
					got = &p
					if tt.svcErr != nil {
						return products.Product{}, tt.svcErr
					}
					return p, nil
				},
			}

			r := setupRouter(svc)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("want status %d, got %d, body: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantDetail != "" {
				if detail := decodeDetail(t, w.Body); detail != tt.wantDetail {
					t.Fatalf("want detail %q, got %q", tt.wantDetail, detail)
				}
			}
			if tt.wantInput != nil {
				if got == nil || *got != *tt.wantInput {
					t.Fatalf("want service input %+v, got %+v", tt.wantInput, got)
				}
			}
		})
	}
}

func TestHandler_GetProduct(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		svcErr     error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "success",
			url:        "/products/1",
			wantStatus: http.StatusOK,
		},
		{
			name:       "negative id is a valid lookup",
			url:        "/products/-4",
			wantStatus: http.StatusOK,
		},
		{
			name:       "not found",
			url:        "/products/999",
			svcErr:     products.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantDetail: "Product not found",
		},
		{
			name:       "invalid id",
			url:        "/products/abc",
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: detailInvalidID,
		},
		{
			name:       "store failure",
			url:        "/products/1",
			svcErr:     errors.New("timeout"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				getFn: func(_ context.Context, id int64) (products.Product, error) {
					if tt.svcErr != nil {
						return products.Product{}, tt.svcErr
					}
					return products.Product{ID: id, Name: "Widget", Price: 1}, nil
				},
			}

			r := setupRouter(svc)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("want status %d, got %d, body: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantDetail != "" {
				if detail := decodeDetail(t, w.Body); detail != tt.wantDetail {
					t.Fatalf("want detail %q, got %q", tt.wantDetail, detail)
				}
			}
		})
	}
}

func TestHandler_ListProducts(t *testing.T) {
	tests := []struct {
		name       string
		items      []products.Product
		svcErr     error
		wantStatus int
		wantBody   string
	}{
		{
			name: "returns items",
			items: []products.Product{
				{ID: 1, Name: "A", Price: 1},
				{ID: 2, Name: "B", Price: 2},
			},
			wantStatus: http.StatusOK,
			wantBody:   `[{"id":1,"name":"A","price":1,"description":null},{"id":2,"name":"B","price":2,"description":null}]`,
		},
		{
			name:       "nil list renders as empty array",
			items:      nil,
			wantStatus: http.StatusOK,
			wantBody:   `[]`,
		},
		{
			name:       "store failure",
			svcErr:     errors.New("down"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				listFn: func(_ context.Context) ([]products.Product, error) {
					return tt.items, tt.svcErr
				},
			}

			r := setupRouter(svc)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/products", nil)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("want status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Fatalf("want body %s, got %s", tt.wantBody, w.Body.String())
			}
		})
	}
}
