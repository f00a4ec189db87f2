package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"product-catalog/internal/products"

	"github.com/gin-gonic/gin"
)

const (
	detailInvalidBody = "invalid request body"
	detailInvalidID   = "product id must be an integer"
)

type ProductService interface {
	ListProducts(ctx context.Context) ([]products.Product, error)
	GetProduct(ctx context.Context, id int64) (products.Product, error)
	CreateProduct(ctx context.Context, p products.Product) (products.Product, error)
}

type Handler struct {
	service ProductService
}

func NewHandler(svc ProductService) *Handler {
	return &Handler{service: svc}
}

// Pointers let "required" accept zero ids and prices while still rejecting missing fields.
type createProductRequest struct {
	ID          *int64   `json:"id" binding:"required" example:"1"`
	Name        string   `json:"name" binding:"required,max=200" example:"Widget"`
	Price       *float64 `json:"price" binding:"required" example:"9.99"`
	Description *string  `json:"description" example:"A small widget"`
}

type errorResponse struct {
	Detail string `json:"detail" example:"Product not found"`
}

// ListProducts godoc
// @Summary      List every product in the catalog
// @Tags         products
// @Produce      json
// @Success      200  {array}   products.Product
// @Failure      500  {object}  errorResponse
// @Router       /products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	items, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Detail: "failed to list products"})
		return
	}
	if items == nil {
		items = []products.Product{}
	}

	c.JSON(http.StatusOK, items)
}

// GetProduct godoc
// @Summary      Get a product by ID
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  products.Product
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: detailInvalidID})
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse{Detail: products.ErrNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Detail: "failed to get product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct godoc
// @Summary      Add a product under a caller-chosen ID
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body      createProductRequest  true  "Product data"
// @Success      200   {object}  products.Product
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: detailInvalidBody})
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), products.Product{
		ID:          *req.ID,
		Name:        req.Name,
		Price:       *req.Price,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, products.ErrDuplicateID):
			c.JSON(http.StatusBadRequest, errorResponse{Detail: products.ErrDuplicateID.Error()})
		case errors.Is(err, products.ErrInvalidName):
			c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: products.ErrInvalidName.Error()})
		default:
			c.JSON(http.StatusInternalServerError, errorResponse{Detail: "failed to create product"})
		}
		return
	}

	c.JSON(http.StatusOK, product)
}
