package parquetqueryengine

import (
	"fmt"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/xitongsys/parquet-go/parquet"
)

type LogicalFilterOperator string

const (
	LogicalFilterOperatorAnd LogicalFilterOperator = "AND"
)

type LogicalFilter struct {
	Operator     LogicalFilterOperator
	ChildFilters []Filter
}

func (lf *LogicalFilter) Validate() errorsx.Error {
	if lf.Operator != LogicalFilterOperatorAnd {
		return errorsx.Errorf("unrecognised operator: %q", lf.Operator)
	}

	if len(lf.ChildFilters) == 0 {
		return errorsx.Errorf("no child filters supplied")
	}

	for _, childFilter := range lf.ChildFilters {
		err := childFilter.Validate()
		if err != nil {
			return err
		}
	}

	return nil
}

func (lf *LogicalFilter) ShouldRowGroupBeScanned(rowGroup *parquet.RowGroup) (ShouldScanResult, errorsx.Error) {
	switch lf.Operator {
	case LogicalFilterOperatorAnd:
		var shouldScan ShouldScanResult = ShouldScanResultNotSure
		for _, childFilter := range lf.ChildFilters {
			childFilterScanResult, err := childFilter.ShouldRowGroupBeScanned(rowGroup)
			if err != nil {
				return 0, errorsx.Wrap(err)
			}

			switch childFilterScanResult {
			case ShouldScanResultNo:
				return ShouldScanResultNo, nil
			case ShouldScanResultYes:
				// mark the row group as wanted, but don't exit yet (wait to see the result of the other child filters)
				shouldScan = ShouldScanResultYes
			case ShouldScanResultNotSure:
				// no effect on this
			default:
				return 0, errorsx.Errorf("unknown filter scan result: %v", childFilterScanResult)
			}
		}
		return shouldScan, nil
	default:
		return 0, errorsx.Errorf("unrecognised operator: %q", lf.Operator)
	}
}

func (lf *LogicalFilter) MatchesRow(getValue GetRowValueFunc) (bool, errorsx.Error) {
	switch lf.Operator {
	case LogicalFilterOperatorAnd:
		for _, childFilter := range lf.ChildFilters {
			matches, err := childFilter.MatchesRow(getValue)
			if err != nil {
				return false, err
			}

			if !matches {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, errorsx.Errorf("unrecognised operator: %q", lf.Operator)
	}
}

func (lf *LogicalFilter) ColumnsWanted() map[string]struct{} {
	wantedMap := make(map[string]struct{})
	for _, subFilter := range lf.ChildFilters {
		wantedSubMap := subFilter.ColumnsWanted()
		for wantedSubCol := range wantedSubMap {
			wantedMap[wantedSubCol] = struct{}{}
		}
	}
	return wantedMap
}

func (lf *LogicalFilter) String() string {
	var s []string
	for _, childFilter := range lf.ChildFilters {
		s = append(s, fmt.Sprintf("(%s)", childFilter))
	}

	return strings.Join(s, fmt.Sprintf(" %s ", lf.Operator))
}
