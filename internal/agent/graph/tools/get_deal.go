package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/salesvoice-poc/server/internal/agent/model"
	"github.com/salesvoice-poc/server/internal/catalog"
	logx "github.com/salesvoice-poc/server/pkg/logger"
)

type GetDealInput struct {
	ProductID string `json:"product_id"`
}

// GetDealOutput carries either a computed offer or an Error the model can
// recover from. A missing product context is a tool-level failure signal,
// never a turn-level crash.
type GetDealOutput struct {
	ProductID     string  `json:"product_id,omitempty"`
	Heading       string  `json:"heading,omitempty"`
	OriginalPrice float64 `json:"original_price,omitempty"`
	DealPrice     float64 `json:"deal_price,omitempty"`
	Discount      float64 `json:"discount,omitempty"`
	Error         string  `json:"error,omitempty"`
}

func createGetDealTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolGetDeal,
			Desc: "Compute a special discounted offer for a product the customer is already discussing. Only works after find_product has established a product context.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"product_id": {
					Type: "string",
					Desc: "Product id from find_product results. Defaults to the first product in the current context when omitted.",
				},
			}),
		},
		func(ctx context.Context, in *GetDealInput) (*GetDealOutput, error) {
			var (
				contextIDs []string
				retrieved  map[string]catalog.Product
			)
			err := compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
				contextIDs = s.ProductContextIDs
				retrieved = s.RetrievedProducts
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("access conversation state: %w", err)
			}

			if len(contextIDs) == 0 {
				logx.Warn().Msg("get_deal called without product context")
				return &GetDealOutput{Error: "no product context; call find_product first"}, nil
			}

			productID := strings.TrimSpace(in.ProductID)
			if productID == "" {
				productID = contextIDs[0]
			}

			product, ok := retrieved[productID]
			if !ok {
				return &GetDealOutput{Error: fmt.Sprintf("product %s is not in the current context", productID)}, nil
			}

			return &GetDealOutput{
				ProductID:     product.ID,
				Heading:       fmt.Sprintf("Special offer on %s %s", product.Brand, product.Model),
				OriginalPrice: product.MaxPrice,
				DealPrice:     product.DealPrice(),
				Discount:      product.AllowedDiscount,
			}, nil
		},
	)
}
