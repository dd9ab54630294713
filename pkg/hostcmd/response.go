package hostcmd

import (
	"strconv"
	"strings"

	"github.com/vantage-controls/vantage-go/pkg/clienterr"
)

const (
	replyPrefix = "R:"
	errorPrefix = "R:ERROR"
)

// Push line prefixes.
const (
	PrefixStatus      = "S:"
	PrefixLog         = "L:"
	PrefixEnhancedLog = "EL:"
)

// IsEventLine reports whether line is unsolicited push traffic rather than
// part of a reply.
func IsEventLine(line string) bool {
	return strings.HasPrefix(line, PrefixStatus) ||
		strings.HasPrefix(line, PrefixLog) ||
		strings.HasPrefix(line, PrefixEnhancedLog)
}

// Response is the reply to a command.
type Response struct {
	// Command is the echoed command name, without the "R:" prefix.
	Command string

	// Args are the tokens following the command name on the reply line.
	Args []string

	// Data are the lines preceding the reply line.
	Data []string
}

// NewResponse builds a Response from the lines of an exchange. The final
// line must be the reply line.
func NewResponse(lines []string) (*Response, error) {
	if len(lines) == 0 {
		return nil, &clienterr.ProtocolError{Op: "response", Message: "no reply line"}
	}

	reply := lines[len(lines)-1]
	tokens := Tokenize(reply)
	if len(tokens) == 0 || !strings.HasPrefix(tokens[0], replyPrefix) {
		return nil, &clienterr.ProtocolError{Op: "response", Message: "malformed reply line " + strconv.Quote(reply)}
	}

	return &Response{
		Command: strings.TrimPrefix(tokens[0], replyPrefix),
		Args:    tokens[1:],
		Data:    lines[:len(lines)-1],
	}, nil
}

// InvokeResponse is the reply to an INVOKE request:
// "R:INVOKE <vid> <result> <method> <args...>".
type InvokeResponse struct {
	VID    int
	Result string
	Method string
	Args   []string
}

// NewInvokeResponse builds an InvokeResponse from the lines of an exchange.
func NewInvokeResponse(lines []string) (*InvokeResponse, error) {
	if len(lines) == 0 {
		return nil, &clienterr.ProtocolError{Op: "INVOKE", Message: "no reply line"}
	}

	reply := lines[len(lines)-1]
	tokens := Tokenize(reply)
	if len(tokens) < 4 {
		return nil, &clienterr.ProtocolError{Op: "INVOKE", Message: "short reply line " + strconv.Quote(reply)}
	}

	vid, err := strconv.Atoi(tokens[1])
	if err != nil {
		return nil, &clienterr.ProtocolError{Op: "INVOKE", Message: "invalid vid " + strconv.Quote(tokens[1])}
	}

	return &InvokeResponse{
		VID:    vid,
		Result: tokens[2],
		Method: tokens[3],
		Args:   tokens[4:],
	}, nil
}

// parseCommandError parses "R:ERROR:<code> <message>".
func parseCommandError(line string) error {
	tag, message, _ := strings.Cut(line, " ")
	codeText := tag[strings.LastIndex(tag, ":")+1:]

	code, err := strconv.Atoi(codeText)
	if err != nil {
		return &clienterr.ProtocolError{Op: "response", Message: "malformed error line " + strconv.Quote(line)}
	}
	return &clienterr.CommandError{Code: code, Message: message}
}
