// Command folio imports brokerage CSV exports and reports on the resulting
// portfolio from the terminal. "folio mcp" serves the same tools over stdio.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/bobmcallan/vire-folio/internal/common"
)

func main() {
	_ = godotenv.Load()
	common.LoadVersionFromFile()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
