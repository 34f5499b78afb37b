package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/salesvoice-poc/server/internal/catalog"
)

type FindProductInput struct {
	Query string `json:"query"`
}

type FindProductOutput struct {
	Products []catalog.Product `json:"products"`
	Total    int               `json:"total"`
}

func createFindProductTool(c *catalog.Client) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolFindProduct,
			Desc: "Search the phone inventory by free-text query in any language. Returns ranked products with id, brand, model, price, specs and an allowed discount. Use this whenever the customer asks about phones, budgets, cameras, or any product attribute.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "Product search keywords. Examples: phones under 80000, best camera phone, Samsung flagship.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *FindProductInput) (*FindProductOutput, error) {
			query := strings.TrimSpace(in.Query)
			if query == "" {
				return nil, fmt.Errorf("query is required")
			}

			products, err := c.Search(ctx, query)
			if err != nil {
				return nil, err
			}

			return &FindProductOutput{
				Products: products,
				Total:    len(products),
			}, nil
		},
	)
}
