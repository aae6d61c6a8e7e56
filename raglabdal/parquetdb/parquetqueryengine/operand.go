package parquetqueryengine

import (
	"github.com/jamesrr39/goutil/errorsx"
)

type Operand interface {
	IsGreaterThan(val Operand) (bool, errorsx.Error)
	IsLessThan(val Operand) (bool, errorsx.Error)
	IsGreaterThanOrEqualTo(val Operand) (bool, errorsx.Error)
	IsLessThanOrEqualTo(val Operand) (bool, errorsx.Error)
	EqualTo(val Operand) (bool, errorsx.Error)
}

type Float64Operand float64

func (f Float64Operand) other(val Operand) (Float64Operand, errorsx.Error) {
	otherVal, ok := val.(Float64Operand)
	if !ok {
		return 0, errorsx.Errorf("expected a float64 operand but got %T", val)
	}
	return otherVal, nil
}

func (f Float64Operand) IsGreaterThan(val Operand) (bool, errorsx.Error) {
	otherVal, err := f.other(val)
	if err != nil {
		return false, err
	}
	return float64(f) > float64(otherVal), nil
}

func (f Float64Operand) IsLessThan(val Operand) (bool, errorsx.Error) {
	otherVal, err := f.other(val)
	if err != nil {
		return false, err
	}
	return float64(f) < float64(otherVal), nil
}

func (f Float64Operand) IsGreaterThanOrEqualTo(val Operand) (bool, errorsx.Error) {
	otherVal, err := f.other(val)
	if err != nil {
		return false, err
	}
	return float64(f) >= float64(otherVal), nil
}

func (f Float64Operand) IsLessThanOrEqualTo(val Operand) (bool, errorsx.Error) {
	otherVal, err := f.other(val)
	if err != nil {
		return false, err
	}
	return float64(f) <= float64(otherVal), nil
}

func (f Float64Operand) EqualTo(val Operand) (bool, errorsx.Error) {
	otherVal, err := f.other(val)
	if err != nil {
		return false, err
	}
	return float64(f) == float64(otherVal), nil
}

type Int64Operand int64

func (f Int64Operand) other(val Operand) (Int64Operand, errorsx.Error) {
	otherVal, ok := val.(Int64Operand)
	if !ok {
		return 0, errorsx.Errorf("expected an int64 operand but got %T", val)
	}
	return otherVal, nil
}

func (f Int64Operand) IsGreaterThan(val Operand) (bool, errorsx.Error) {
	otherVal, err := f.other(val)
	if err != nil {
		return false, err
	}
	return int64(f) > int64(otherVal), nil
}

func (f Int64Operand) IsLessThan(val Operand) (bool, errorsx.Error) {
	otherVal, err := f.other(val)
	if err != nil {
		return false, err
	}
	return int64(f) < int64(otherVal), nil
}

func (f Int64Operand) IsGreaterThanOrEqualTo(val Operand) (bool, errorsx.Error) {
	otherVal, err := f.other(val)
	if err != nil {
		return false, err
	}
	return int64(f) >= int64(otherVal), nil
}

func (f Int64Operand) IsLessThanOrEqualTo(val Operand) (bool, errorsx.Error) {
	otherVal, err := f.other(val)
	if err != nil {
		return false, err
	}
	return int64(f) <= int64(otherVal), nil
}

func (f Int64Operand) EqualTo(val Operand) (bool, errorsx.Error) {
	otherVal, err := f.other(val)
	if err != nil {
		return false, err
	}
	return int64(f) == int64(otherVal), nil
}

// StringOperand compares byte-wise, which matches the ordering parquet
// BYTE_ARRAY statistics are written with.
type StringOperand string

func (f StringOperand) other(val Operand) (StringOperand, errorsx.Error) {
	otherVal, ok := val.(StringOperand)
	if !ok {
		return "", errorsx.Errorf("expected a string operand but got %T", val)
	}
	return otherVal, nil
}

func (f StringOperand) IsGreaterThan(val Operand) (bool, errorsx.Error) {
	otherVal, err := f.other(val)
	if err != nil {
		return false, err
	}
	return string(f) > string(otherVal), nil
}

func (f StringOperand) IsLessThan(val Operand) (bool, errorsx.Error) {
	otherVal, err := f.other(val)
	if err != nil {
		return false, err
	}
	return string(f) < string(otherVal), nil
}

func (f StringOperand) IsGreaterThanOrEqualTo(val Operand) (bool, errorsx.Error) {
	otherVal, err := f.other(val)
	if err != nil {
		return false, err
	}
	return string(f) >= string(otherVal), nil
}

func (f StringOperand) IsLessThanOrEqualTo(val Operand) (bool, errorsx.Error) {
	otherVal, err := f.other(val)
	if err != nil {
		return false, err
	}
	return string(f) <= string(otherVal), nil
}

func (f StringOperand) EqualTo(val Operand) (bool, errorsx.Error) {
	otherVal, err := f.other(val)
	if err != nil {
		return false, err
	}
	return string(f) == string(otherVal), nil
}
