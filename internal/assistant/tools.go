package assistant

import openrouter "github.com/revrost/go-openrouter"

// SystemPrompt frames the assistant as a back-office analyst over the shop
// API. The model answers only from tool results, never from memory.
const SystemPrompt = `You are the back-office assistant of a small retail shop.
Answer the operator's questions about sales, stock, profit and expenses using
the available tools. Always call tools to get real numbers; never invent
figures. Keep answers short: one or two sentences plus the key numbers.
Amounts are in rupees. If a question cannot be answered from the tools, say so
and suggest which view of the dashboard to check instead.`

func ToolSchemas() []openrouter.Tool {
	return []openrouter.Tool{
		dashboardSummaryTool(),
		salesAnalysisTool(),
		topProductsTool(),
		stockSummaryTool(),
		lowStockTool(),
		slowMovingTool(),
		profitReportTool(),
		searchProductsTool(),
		listExpensesTool(),
	}
}

func noArgsSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": false,
	}
}

func dashboardSummaryTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        "GetDashboardSummary",
			Description: "Overall shop counters: admins, staff, categories, products, purchased quantity, total sales count and total revenue. Use for 'how is the shop doing' style questions.",
			Parameters:  noArgsSchema(),
		},
	}
}

func salesAnalysisTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        "GetSalesAnalysis",
			Description: "Sales revenue split by period: daily, weekly and monthly totals. Use for 'how much did we sell today/this week/this month'.",
			Parameters:  noArgsSchema(),
		},
	}
}

func topProductsTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        "GetTopProducts",
			Description: "Best-selling products with sold quantities. Use for 'what sells best'.",
			Parameters:  noArgsSchema(),
		},
	}
}

func stockSummaryTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        "GetStockSummary",
			Description: "Current stock quantity of every product.",
			Parameters:  noArgsSchema(),
		},
	}
}

func lowStockTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        "GetLowStock",
			Description: "Products at or below a stock threshold. Use for restock questions.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"threshold": map[string]any{
						"type":        "integer",
						"description": "Stock quantity threshold (default: 10).",
					},
				},
				"additionalProperties": false,
			},
		},
	}
}

func slowMovingTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        "GetSlowMoving",
			Description: "Products with no or low sales over a trailing period. Use for 'what is not selling'.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"days": map[string]any{
						"type":        "integer",
						"description": "Length of the trailing period in days (default: 30).",
					},
				},
				"additionalProperties": false,
			},
		},
	}
}

func profitReportTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        "GetProfitReport",
			Description: "Product-wise profit with sold quantities and the overall total profit.",
			Parameters:  noArgsSchema(),
		},
	}
}

func searchProductsTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        "SearchProducts",
			Description: "Find products by free-text query. Case-insensitive substring match on product names. Returns name, barcode, selling price and stock quantity. Default limit: 10.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Text to search for in product names.",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of products to return (default: 10, max: 50).",
					},
				},
				"required":             []string{"query"},
				"additionalProperties": false,
			},
		},
	}
}

func listExpensesTool() openrouter.Tool {
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        "ListExpenses",
			Description: "Recorded business expenses with date, category, amount and description.",
			Parameters:  noArgsSchema(),
		},
	}
}
