package interfaces

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var fixedScale = decimal.NewFromInt(1000)

// FixedToDecimal decodes a fixed-point value with three implied decimal
// places. "123.000" and "123000" both decode to 123.
func FixedToDecimal(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(value, ".", ""))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid fixed-point value %q: %w", value, err)
	}
	return d.Div(fixedScale), nil
}

// DecimalToFixed encodes a value for a fixed-point parameter.
func DecimalToFixed(d decimal.Decimal) string {
	return d.StringFixed(3)
}

// ParseEnum decodes an enum token given either as its numeric code or as a
// case-insensitive symbolic name. names keys must be upper case.
func ParseEnum[T ~int](token string, names map[string]T) (T, error) {
	if code, err := strconv.Atoi(token); err == nil {
		for _, v := range names {
			if int(v) == code {
				return v, nil
			}
		}
		return 0, fmt.Errorf("unknown enum code %d", code)
	}

	name := strings.ToUpper(token)
	if i := strings.LastIndex(name, "."); i >= 0 {
		// Qualified names such as "Firmware.Application"
		name = name[i+1:]
	}
	if v, ok := names[name]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unknown enum name %q", token)
}

func fixedResult(r Response) (any, error) {
	return FixedToDecimal(r.Result)
}

func intResult(r Response) (any, error) {
	v, err := strconv.Atoi(r.Result)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid integer result %q", r.Method, r.Result)
	}
	return v, nil
}

func stringResult(r Response) (any, error) {
	return r.Result, nil
}

func noResult(Response) (any, error) {
	return nil, nil
}
