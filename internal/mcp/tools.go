package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// HoldingsTool lists current holdings.
func HoldingsTool() mcp.Tool {
	return mcp.NewTool("get_holdings",
		mcp.WithDescription("Get current portfolio holdings: symbol, shares, cost basis, value, gain, dividend yield and allocation."),
	)
}

// DividendsTool lists received dividend payments.
func DividendsTool() mcp.Tool {
	return mcp.NewTool("get_dividends",
		mcp.WithDescription("Get received dividend payments in date order, with a total."),
		mcp.WithString("symbol", mcp.Description("Only payments for this symbol (e.g., 'AAPL'). All symbols if not specified.")),
	)
}

// ProjectionTool projects dividend income.
func ProjectionTool() mcp.Tool {
	return mcp.NewTool("get_income_projection",
		mcp.WithDescription("Project dividend income for the next twelve months from detected payment cadence, with per-symbol dividend profiles."),
	)
}

// PeriodTool reports activity within a period.
func PeriodTool() mcp.Tool {
	return mcp.NewTool("get_period_report",
		mcp.WithDescription("Get transactions, dividends, income and gain within a period."),
		mcp.WithString("period", mcp.Description("One of: mtd, qtd, ytd, prior-year, custom, all (default: ytd)")),
		mcp.WithArray("months", mcp.WithStringItems(), mcp.Description("Month names for the custom period (e.g., ['January', 'Mar']). Matches any year.")),
	)
}

// ImportTool imports a brokerage CSV export.
func ImportTool() mcp.Tool {
	return mcp.NewTool("import_csv",
		mcp.WithDescription("Import a brokerage CSV export (positions snapshot or transaction history). Re-importing the same file is harmless."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Raw CSV file content")),
		mcp.WithString("filename", mcp.Description("Original file name; helps detect the file type (e.g., 'History_2024.csv')")),
	)
}

// VersionTool reports the server version.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the folio MCP server version. Use this to verify connectivity."),
	)
}
