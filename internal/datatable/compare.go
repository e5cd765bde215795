package datatable

import (
	"cmp"
	"fmt"
	"reflect"
	"time"

	"github.com/shopspring/decimal"
)

// Compare orders two column values. Nil sorts first; numbers, strings,
// times and decimals compare naturally; mixed or other types compare by
// their printed form.
func Compare(a, b any) int {
	switch an, bn := isNil(a), isNil(b); {
	case an && bn:
		return 0
	case an:
		return -1
	case bn:
		return 1
	}

	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case decimal.Decimal:
		if bv, ok := b.(decimal.Decimal); ok {
			return av.Cmp(bv)
		}
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if fa, ok := asFloat(ra); ok {
		if fb, ok := asFloat(rb); ok {
			return cmp.Compare(fa, fb)
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func asFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}
