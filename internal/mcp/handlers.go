package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/models"
	"github.com/bobmcallan/vire-folio/internal/normalizer"
	"github.com/bobmcallan/vire-folio/internal/period"
	"github.com/bobmcallan/vire-folio/internal/portfolio"
	"github.com/bobmcallan/vire-folio/internal/report"
)

// Service is the portfolio surface the tools call.
type Service interface {
	Import(ctx context.Context, data []byte, filename string) (*portfolio.ImportResult, error)
	Holdings(ctx context.Context) ([]models.Holding, error)
	Dividends(ctx context.Context, symbol string) ([]models.DividendPayment, error)
	Projection(ctx context.Context) (*portfolio.IncomeProjection, error)
	Period(ctx context.Context, p period.Period, months []string) (*period.Result, error)
}

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}
}

// HoldingsHandler renders the holdings table.
func HoldingsHandler(svc Service, currency string) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		holdings, err := svc.Holdings(ctx)
		if err != nil {
			return errorResult("failed to load holdings: " + err.Error()), nil
		}
		return textResult(report.Holdings(holdings, currency)), nil
	}
}

// DividendsHandler renders dividend payments, optionally for one symbol.
func DividendsHandler(svc Service, currency string) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		divs, err := svc.Dividends(ctx, r.GetString("symbol", ""))
		if err != nil {
			return errorResult("failed to load dividends: " + err.Error()), nil
		}
		return textResult(report.Dividends(divs, currency)), nil
	}
}

// ProjectionHandler renders the income projection.
func ProjectionHandler(svc Service, currency string) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		proj, err := svc.Projection(ctx)
		if err != nil {
			return errorResult("failed to project income: " + err.Error()), nil
		}
		return textResult(report.Income(proj, currency)), nil
	}
}

// PeriodHandler renders a period report.
func PeriodHandler(svc Service, currency string) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, err := period.ParsePeriod(r.GetString("period", "ytd"))
		if err != nil {
			return errorResult(err.Error()), nil
		}
		months := r.GetStringSlice("months", nil)
		for _, m := range months {
			if _, err := period.ParseMonth(m); err != nil {
				return errorResult(err.Error()), nil
			}
		}
		res, err := svc.Period(ctx, p, months)
		if err != nil {
			return errorResult("failed to build period report: " + err.Error()), nil
		}
		return textResult(report.Period(res, currency)), nil
	}
}

// ImportHandler imports CSV content passed inline.
func ImportHandler(svc Service, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := r.RequireString("content")
		if err != nil {
			return errorResult("content is required"), nil
		}
		filename := r.GetString("filename", "upload.csv")

		res, err := svc.Import(ctx, []byte(content), filename)
		if err != nil {
			var perr *normalizer.ParseError
			if errors.As(err, &perr) {
				return errorResult(perr.Error()), nil
			}
			logger.Error().Err(err).Str("file", filename).Msg("MCP import failed")
			return errorResult("import failed: " + err.Error()), nil
		}

		out, err := json.Marshal(res)
		if err != nil {
			return errorResult("failed to marshal import result"), nil
		}
		return textResult(string(out)), nil
	}
}
