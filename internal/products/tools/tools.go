// Package tools exposes catalog reads as MCP tools for agent runtimes.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"product-catalog/internal/products"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName = "product-catalog"

	ListProductsToolName = "list_products"
	GetProductToolName   = "get_product"

	toolCallTimeout = 10 * time.Second
)

// ProductReader is the read side of the catalog service.
type ProductReader interface {
	ListProducts(ctx context.Context) ([]products.Product, error)
	GetProduct(ctx context.Context, id int64) (products.Product, error)
}

type ListProductsInput struct{}

type ListProductsResult struct {
	Products []products.Product `json:"products" jsonschema:"every product in the catalog"`
}

type GetProductInput struct {
	ProductID int64 `json:"product_id" jsonschema:"identifier of the product to fetch"`
}

func ListProductsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        ListProductsToolName,
		Description: "List all products.",
	}
}

func GetProductTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        GetProductToolName,
		Description: "Get a product by id.",
	}
}

func ListProductsHandler(reader ProductReader, logger *slog.Logger) mcp.ToolHandlerFor[ListProductsInput, ListProductsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ListProductsInput) (*mcp.CallToolResult, ListProductsResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()
		defer logCall(logger, ListProductsToolName, time.Now())

		items, err := reader.ListProducts(callCtx)
		if err != nil {
			return nil, ListProductsResult{}, fmt.Errorf("list products: %w", err)
		}
		if items == nil {
			items = []products.Product{}
		}
		return nil, ListProductsResult{Products: items}, nil
	}
}

func GetProductHandler(reader ProductReader, logger *slog.Logger) mcp.ToolHandlerFor[GetProductInput, products.Product] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetProductInput) (*mcp.CallToolResult, products.Product, error) {
		callCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()
		defer logCall(logger, GetProductToolName, time.Now())

		product, err := reader.GetProduct(callCtx, input.ProductID)
		if err != nil {
			return nil, products.Product{}, fmt.Errorf("get product %d: %w", input.ProductID, err)
		}
		return nil, product, nil
	}
}

// NewServer builds an MCP server with both catalog tools registered.
func NewServer(reader ProductReader, logger *slog.Logger, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)
	mcp.AddTool(server, ListProductsTool(), ListProductsHandler(reader, logger))
	mcp.AddTool(server, GetProductTool(), GetProductHandler(reader, logger))
	return server
}

func logCall(logger *slog.Logger, tool string, start time.Time) {
	logger.Info("tool call",
		"tool", tool,
		"latency_ms", time.Since(start).Milliseconds(),
	)
}
