package hostcmd

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidParam is returned by EncodeParams for unsupported parameter
// types. It indicates a programming error rather than a runtime condition.
var ErrInvalidParam = errors.New("invalid parameter type")

// tokenPattern matches a quoted string (with "" escapes), a {...} byte
// array, or a run of non-space characters.
var tokenPattern = regexp.MustCompile(`"([^"]*(?:""[^"]*)*)"|(\{.*?\})|(\S+)`)

// Tokenize splits a response line into tokens.
//
// Whitespace separates tokens except inside double-quoted strings, whose
// enclosing quotes are removed and whose doubled quotes ("") become a single
// quote, and inside {...} byte arrays, which are kept verbatim.
func Tokenize(line string) []string {
	matches := tokenPattern.FindAllString(line, -1)
	tokens := make([]string, 0, len(matches))
	for _, tok := range matches {
		if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
			tok = strings.ReplaceAll(tok[1:len(tok)-1], `""`, `"`)
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// EncodeParams renders parameters for a request line, joined by single
// spaces.
//
// Strings containing a double quote or a space are wrapped in quotes with
// internal quotes doubled; forceQuotes quotes every string. Booleans become
// 0 or 1. Integers, floats and decimals use their natural decimal text.
func EncodeParams(forceQuotes bool, params ...any) (string, error) {
	encoded := make([]string, 0, len(params))
	for i, p := range params {
		s, err := encodeParam(p, forceQuotes)
		if err != nil {
			return "", fmt.Errorf("param %d: %w", i, err)
		}
		encoded = append(encoded, s)
	}
	return strings.Join(encoded, " "), nil
}

func encodeParam(p any, forceQuotes bool) (string, error) {
	switch v := p.(type) {
	case string:
		if forceQuotes || strings.ContainsAny(v, `" `) {
			return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`, nil
		}
		return v, nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case decimal.Decimal:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrInvalidParam, p)
	}
}
