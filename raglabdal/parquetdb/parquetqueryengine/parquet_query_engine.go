package parquetqueryengine

import (
	"fmt"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/xitongsys/parquet-go/common"
	"github.com/xitongsys/parquet-go/reader"
)

type Query struct {
	Select []string
	Where  Filter
	Limit  int64 // 0 = no limit
}

type ResultRow []interface{}

func (r *ResultRow) GoString() string {
	var fragments []string
	for _, item := range *r {
		fragments = append(fragments, fmt.Sprintf("%#v", item))
	}

	return fmt.Sprintf("{%s}", strings.Join(fragments, ", "))
}

// ScanStats reports how much of the file a query actually touched.
type ScanStats struct {
	RowGroupsTotal   int
	RowGroupsScanned int
	ColumnsRead      int
}

type columnCacheType map[string][]interface{}

// Run executes the query against the given parquet reader. Only columns named
// in the SELECT list or the WHERE filter are read, and row groups ruled out
// by their column statistics are never scanned.
func (q *Query) Run(parquetReader *reader.ParquetReader, rootSchemaElementName string) ([]*ResultRow, *ScanStats, errorsx.Error) {
	if len(q.Select) == 0 {
		return nil, nil, errorsx.Errorf("no SELECT columns supplied")
	}

	if q.Where != nil {
		err := q.Where.Validate()
		if err != nil {
			return nil, nil, err
		}
	}

	stats := new(ScanStats)
	columnCache := make(columnCacheType)

	readColumn := func(fieldName string) ([]interface{}, errorsx.Error) {
		values, ok := columnCache[fieldName]
		if ok {
			return values, nil
		}

		fullPath := common.PathToStr([]string{rootSchemaElementName, common.HeadToUpper(fieldName)})

		values, repetitionLevels, definitionLevels, err := parquetReader.ReadColumnByPath(fullPath, parquetReader.GetNumRows())
		if err != nil {
			return nil, errorsx.Wrap(err, "path", fullPath)
		}

		for i := range values {
			if repetitionLevels[i] != 0 {
				return nil, errorsx.Errorf("repeated fields are not supported (field %q)", fieldName)
			}
			if definitionLevels[i] != 0 {
				return nil, errorsx.Errorf("optional fields are not supported (field %q)", fieldName)
			}
		}

		columnCache[fieldName] = values
		stats.ColumnsRead++

		return values, nil
	}

	results := []*ResultRow{}

	rowGroups := parquetReader.Footer.GetRowGroups()
	stats.RowGroupsTotal = len(rowGroups)

	rowOffset := int64(0)
	for _, rowGroup := range rowGroups {
		numRowsInGroup := rowGroup.GetNumRows()
		firstRowID := rowOffset
		rowOffset += numRowsInGroup

		if q.Where != nil {
			scanResult, err := q.Where.ShouldRowGroupBeScanned(rowGroup)
			if err != nil {
				return nil, nil, err
			}

			if scanResult == ShouldScanResultNo {
				continue
			}
		}

		stats.RowGroupsScanned++

		for rowID := firstRowID; rowID < firstRowID+numRowsInGroup; rowID++ {
			if q.Where != nil {
				matches, err := q.Where.MatchesRow(func(fieldName string) (Operand, errorsx.Error) {
					values, err := readColumn(fieldName)
					if err != nil {
						return nil, err
					}

					return valueToOperand(values[rowID])
				})
				if err != nil {
					return nil, nil, err
				}

				if !matches {
					continue
				}
			}

			var resultRow ResultRow
			for _, selectCol := range q.Select {
				values, err := readColumn(selectCol)
				if err != nil {
					return nil, nil, err
				}

				resultRow = append(resultRow, values[rowID])
			}

			results = append(results, &resultRow)

			if q.Limit != 0 && int64(len(results)) == q.Limit {
				return results, stats, nil
			}
		}
	}

	return results, stats, nil
}

func valueToOperand(value interface{}) (Operand, errorsx.Error) {
	switch val := value.(type) {
	case int64:
		return Int64Operand(val), nil
	case int32:
		return Int64Operand(val), nil
	case float64:
		return Float64Operand(val), nil
	case string:
		return StringOperand(val), nil
	default:
		return nil, errorsx.Errorf("unsupported value type: %T", val)
	}
}
