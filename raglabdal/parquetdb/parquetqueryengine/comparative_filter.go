package parquetqueryengine

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/xitongsys/parquet-go/encoding"
	"github.com/xitongsys/parquet-go/parquet"
)

type ComparativeOperator string

const (
	ComparativeOperatorEqualTo              ComparativeOperator = "=="
	ComparativeOperatorGreaterThan          ComparativeOperator = ">"
	ComparativeOperatorLessThan             ComparativeOperator = "<"
	ComparativeOperatorLessThanOrEqualTo    ComparativeOperator = "<="
	ComparativeOperatorGreaterThanOrEqualTo ComparativeOperator = ">="
)

type ComparativeFilter struct {
	FieldName string // if a nested field, use a dot "." to denote the separate parts (e.g. "user.address.street")
	Operator  ComparativeOperator
	Operand   Operand
}

func (cf *ComparativeFilter) Validate() errorsx.Error {
	if cf.Operand == nil {
		return errorsx.Errorf("operand is nil")
	}

	switch cf.Operator {
	case ComparativeOperatorEqualTo,
		ComparativeOperatorGreaterThan,
		ComparativeOperatorLessThan,
		ComparativeOperatorLessThanOrEqualTo,
		ComparativeOperatorGreaterThanOrEqualTo:
		return nil
	}

	return errorsx.Errorf("unrecognised operator: %q", cf.Operator)
}

func (cf *ComparativeFilter) findColumn(rowGroup *parquet.RowGroup) *parquet.ColumnChunk {
	// the footer holds the mangled in-schema names ("Chunk_index" for a
	// column tagged "chunk_index"), so match case-insensitively
	for _, col := range rowGroup.GetColumns() {
		if strings.EqualFold(cf.FieldName, strings.Join(col.MetaData.PathInSchema, ".")) {
			return col
		}
	}
	return nil
}

// ShouldRowGroupBeScanned checks this filter against the column chunk's
// min/max statistics. A row group whose value range cannot contain a match
// gets a definite No.
func (cf *ComparativeFilter) ShouldRowGroupBeScanned(rowGroup *parquet.RowGroup) (ShouldScanResult, errorsx.Error) {
	column := cf.findColumn(rowGroup)
	if column == nil {
		// no statistics to prune on. Let the row scan report the unknown field.
		return ShouldScanResultNotSure, nil
	}

	stats := column.MetaData.Statistics
	if stats == nil || stats.MinValue == nil || stats.MaxValue == nil {
		return ShouldScanResultNotSure, nil
	}

	colMinVal, err := bytesToOperand(stats.MinValue, column.MetaData.Type)
	if err != nil {
		return 0, errorsx.Wrap(err)
	}

	colMaxVal, err := bytesToOperand(stats.MaxValue, column.MetaData.Type)
	if err != nil {
		return 0, errorsx.Wrap(err)
	}

	switch cf.Operator {
	case ComparativeOperatorEqualTo:
		// matches are possible only when min <= operand <= max
		minTooBig, err := colMinVal.IsGreaterThan(cf.Operand)
		if err != nil {
			return 0, errorsx.Wrap(err)
		}
		if minTooBig {
			return ShouldScanResultNo, nil
		}

		maxTooSmall, err := colMaxVal.IsLessThan(cf.Operand)
		if err != nil {
			return 0, errorsx.Wrap(err)
		}
		if maxTooSmall {
			return ShouldScanResultNo, nil
		}

		return ShouldScanResultYes, nil
	case ComparativeOperatorLessThan:
		isLess, err := colMinVal.IsLessThan(cf.Operand)
		if err != nil {
			return 0, errorsx.Wrap(err)
		}
		if isLess {
			return ShouldScanResultYes, nil
		}
		return ShouldScanResultNo, nil
	case ComparativeOperatorLessThanOrEqualTo:
		isLess, err := colMinVal.IsLessThanOrEqualTo(cf.Operand)
		if err != nil {
			return 0, errorsx.Wrap(err)
		}
		if isLess {
			return ShouldScanResultYes, nil
		}
		return ShouldScanResultNo, nil
	case ComparativeOperatorGreaterThan:
		isGreater, err := colMaxVal.IsGreaterThan(cf.Operand)
		if err != nil {
			return 0, errorsx.Wrap(err)
		}
		if isGreater {
			return ShouldScanResultYes, nil
		}
		return ShouldScanResultNo, nil
	case ComparativeOperatorGreaterThanOrEqualTo:
		isGreater, err := colMaxVal.IsGreaterThanOrEqualTo(cf.Operand)
		if err != nil {
			return 0, errorsx.Wrap(err)
		}
		if isGreater {
			return ShouldScanResultYes, nil
		}
		return ShouldScanResultNo, nil
	}

	return 0, errorsx.Errorf("unrecognised operator: %q", cf.Operator)
}

func (cf *ComparativeFilter) MatchesRow(getValue GetRowValueFunc) (bool, errorsx.Error) {
	value, err := getValue(cf.FieldName)
	if err != nil {
		return false, errorsx.Wrap(err, "fieldName", cf.FieldName)
	}

	switch cf.Operator {
	case ComparativeOperatorEqualTo:
		return value.EqualTo(cf.Operand)
	case ComparativeOperatorLessThan:
		return value.IsLessThan(cf.Operand)
	case ComparativeOperatorLessThanOrEqualTo:
		return value.IsLessThanOrEqualTo(cf.Operand)
	case ComparativeOperatorGreaterThan:
		return value.IsGreaterThan(cf.Operand)
	case ComparativeOperatorGreaterThanOrEqualTo:
		return value.IsGreaterThanOrEqualTo(cf.Operand)
	}

	return false, errorsx.Errorf("unrecognised operator: %q", cf.Operator)
}

func (cf *ComparativeFilter) ColumnsWanted() map[string]struct{} {
	return map[string]struct{}{
		cf.FieldName: {},
	}
}

func bytesToOperand(val []byte, valueType parquet.Type) (Operand, errorsx.Error) {
	switch valueType {
	case parquet.Type_INT64:
		items := make([]interface{}, 1)
		err := encoding.BinaryReadINT64(bytes.NewBuffer(val), items)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}

		return Int64Operand(items[0].(int64)), nil
	case parquet.Type_DOUBLE:
		items := make([]interface{}, 1)
		err := encoding.BinaryReadFLOAT64(bytes.NewBuffer(val), items)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}

		return Float64Operand(items[0].(float64)), nil
	case parquet.Type_BYTE_ARRAY:
		// BYTE_ARRAY statistics hold the raw bytes
		return StringOperand(val), nil
	default:
		return nil, errorsx.Errorf("unhandled type: %q", valueType)
	}
}

func (cf *ComparativeFilter) String() string {
	return fmt.Sprintf("%s %s %v", cf.FieldName, cf.Operator, cf.Operand)
}
