package models

import (
	"strings"

	"github.com/google/uuid"
)

// namespace scopes every name-based identifier minted by vire-folio.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/bobmcallan/vire-folio"))

// HoldingID returns the stable identifier of the holding for symbol.
func HoldingID(symbol string) string {
	return uuid.NewSHA1(namespace, []byte("holding:"+strings.ToUpper(symbol))).String()
}

// TransactionID returns a stable identifier derived from the transaction's
// natural key, so re-imports of the same event keep the same id.
func TransactionID(t Transaction) string {
	return uuid.NewSHA1(namespace, []byte("transaction:"+t.Key())).String()
}

// DividendID returns a stable identifier derived from the payment's natural key.
func DividendID(d DividendPayment) string {
	return uuid.NewSHA1(namespace, []byte("dividend:"+d.Key())).String()
}
