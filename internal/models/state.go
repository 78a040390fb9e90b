package models

// FileType is the detected kind of brokerage export.
type FileType string

const (
	FileTypePositions    FileType = "positions"
	FileTypeTransactions FileType = "transactions"
)

// ParseResult is the typed output of a Parser.
type ParseResult struct {
	FileType     FileType          `json:"file_type"`
	Transactions []Transaction     `json:"transactions"`
	Dividends    []DividendPayment `json:"dividends"`
	Holdings     []Holding         `json:"holdings"`
	SkippedRows  int               `json:"skipped_rows"`
}

// State is the persisted portfolio: one canonical record set per entity.
type State struct {
	Holdings     []Holding         `json:"holdings"`
	Transactions []Transaction     `json:"transactions"`
	Dividends    []DividendPayment `json:"dividends"`
}
