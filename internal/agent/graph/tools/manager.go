// Package tools defines the callable operations the decision model may
// request: product search and special-deal computation.
package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/salesvoice-poc/server/internal/catalog"
)

const (
	ToolFindProduct = "find_product"
	ToolGetDeal     = "get_deal"
)

// GetQueryTools returns the business tools bound to the response model.
func GetQueryTools(c *catalog.Client) []tool.BaseTool {
	return []tool.BaseTool{
		createFindProductTool(c),
		createGetDealTool(),
	}
}

// GetToolInfos collects ToolInfo descriptors for model binding.
func GetToolInfos(ctx context.Context, tools []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
