package model

import (
	"github.com/cloudwego/eino/schema"

	"github.com/salesvoice-poc/server/internal/catalog"
)

// Roles accepted in caller-supplied history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one caller-supplied history entry.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryInput is the orchestrator input for one chat turn. History carries the
// full prior conversation; nothing persists between requests.
type QueryInput struct {
	UserMessage string     `json:"user_message"`
	History     []ChatTurn `json:"history"`
	Language    string     `json:"language"`
}

// AppState stores per-invocation state for the Eino graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
//
// Merge contract per step: History appends, RetrievedProducts is a key-wise
// union with last write winning, ProductContextIDs is replaced wholesale by
// each product search.
type AppState struct {
	History           []*schema.Message
	RetrievedProducts map[string]catalog.Product
	ProductContextIDs []string
	DetectedLanguage  string

	DecideSteps   int // decision model invocations this turn
	ToolCallIDSeq int // local sequence to synthesize tool_call_id when provider omits

	// Accumulated total LLM cost (USD) across model invocations for this turn
	TotalCostUSD float64
}

// MergeSearchResults applies the product search merge semantics: the context
// id list is replaced with the new result ids in order, and each result is
// unioned into the retrieved product map.
func (s *AppState) MergeSearchResults(products []catalog.Product) {
	if s.RetrievedProducts == nil {
		s.RetrievedProducts = make(map[string]catalog.Product, len(products))
	}
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
		s.RetrievedProducts[p.ID] = p
	}
	s.ProductContextIDs = ids
}

// FinalAnswer is the structured terminal output of the formatting step.
// Deal fields are meaningful only together; partial deals are dropped during
// resolution.
type FinalAnswer struct {
	Text           string   `json:"text"`
	ProductIDs     []string `json:"product_ids,omitempty"`
	DealHeading    string   `json:"deal_heading,omitempty"`
	DealPrice      float64  `json:"deal_price,omitempty"`
	DealProductIDs []string `json:"deal_product_ids,omitempty"`
}

// TurnOutcome is what one completed turn hands back to the request layer:
// the final answer with its product ids already resolved against the
// products retrieved during the turn.
type TurnOutcome struct {
	Answer           FinalAnswer
	Products         []catalog.Product
	Deal             *catalog.SpecialDeal
	DetectedLanguage string
	TotalCostUSD     float64
}

// ResolveOutcome builds a TurnOutcome from a final answer and the turn's
// retrieved products. Product ids not present in retrieved are dropped, never
// an error. A deal survives only when its heading, price and at least one
// resolvable product are all present.
func ResolveOutcome(answer FinalAnswer, retrieved map[string]catalog.Product, lang string) *TurnOutcome {
	out := &TurnOutcome{
		Answer:           answer,
		DetectedLanguage: lang,
		Products:         make([]catalog.Product, 0, len(answer.ProductIDs)),
	}
	for _, id := range answer.ProductIDs {
		if p, ok := retrieved[id]; ok {
			out.Products = append(out.Products, p)
		}
	}

	if answer.DealHeading == "" || answer.DealPrice <= 0 || len(answer.DealProductIDs) == 0 {
		return out
	}
	dealProducts := make([]catalog.Product, 0, len(answer.DealProductIDs))
	for _, id := range answer.DealProductIDs {
		if p, ok := retrieved[id]; ok {
			dealProducts = append(dealProducts, p)
		}
	}
	if len(dealProducts) == 0 {
		return out
	}
	out.Deal = &catalog.SpecialDeal{
		Heading:          answer.DealHeading,
		DealPrice:        answer.DealPrice,
		ProductsInvolved: dealProducts,
	}
	return out
}
