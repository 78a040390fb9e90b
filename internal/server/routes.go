package server

import "net/http"

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	ph := s.app.PortfolioHandler

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)

	// Portfolio
	mux.HandleFunc("/api/import", ph.HandleImport)
	mux.HandleFunc("/api/holdings", ph.HandleHoldings)
	mux.HandleFunc("/api/transactions", ph.HandleTransactions)
	mux.HandleFunc("/api/dividends", ph.HandleDividends)
	mux.HandleFunc("/api/projection", ph.HandleProjection)
	mux.HandleFunc("/api/period", ph.HandlePeriod)
	mux.HandleFunc("/api/summary", ph.HandleSummary)
	mux.HandleFunc("/api/data", ph.HandleClear)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)
	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

// handleNotFound returns a JSON 404 for unmatched routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
}
