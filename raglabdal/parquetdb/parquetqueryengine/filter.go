package parquetqueryengine

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/xitongsys/parquet-go/parquet"
)

type ShouldScanResult int

const (
	ShouldScanResultYes     ShouldScanResult = iota + 1
	ShouldScanResultNotSure                  // appropriate when the statistics cannot rule the row group in or out
	ShouldScanResultNo
)

var shouldScanResultStrings = []string{
	"Unknown",
	"Yes",
	"Not Sure",
	"No",
}

func (csr ShouldScanResult) String() string {
	return shouldScanResultStrings[csr]
}

// GetRowValueFunc fetches the value of the named field for the row currently
// being evaluated.
type GetRowValueFunc func(fieldName string) (Operand, errorsx.Error)

type Filter interface {
	Validate() errorsx.Error
	// ShouldRowGroupBeScanned inspects the row group's column statistics
	// (zonemaps). A row group is only skipped on a definite No; a NotSure
	// row group must still be scanned.
	ShouldRowGroupBeScanned(rowGroup *parquet.RowGroup) (ShouldScanResult, errorsx.Error)
	MatchesRow(getValue GetRowValueFunc) (bool, errorsx.Error)
	ColumnsWanted() map[string]struct{} // map[fieldName]void
}
