package interfaces

import (
	"context"
	"strconv"

	"github.com/vantage-controls/vantage-go/pkg/clienterr"
	"github.com/vantage-controls/vantage-go/pkg/hostcmd"
)

// Invoker sends INVOKE requests. Implemented by *hostcmd.Client.
type Invoker interface {
	Invoke(ctx context.Context, vid int, method string, params ...any) (*hostcmd.InvokeResponse, error)
}

// Compile-time interface satisfaction check.
var _ Invoker = (*hostcmd.Client)(nil)

// Response is an object interface result, from an invoke reply or a status
// event.
type Response struct {
	VID    int
	Result string
	Method string
	Args   []string
}

// FromInvoke converts an invoke reply.
func FromInvoke(r *hostcmd.InvokeResponse) Response {
	return Response{
		VID:    r.VID,
		Result: r.Result,
		Method: r.Method,
		Args:   r.Args,
	}
}

// FromStatus parses an interface status log: "<vid> <method> <result> <args...>".
func FromStatus(log string) (Response, error) {
	tokens := hostcmd.Tokenize(log)
	if len(tokens) < 3 {
		return Response{}, &clienterr.ProtocolError{Op: "interface status", Message: "short status " + strconv.Quote(log)}
	}

	vid, err := strconv.Atoi(tokens[0])
	if err != nil {
		return Response{}, &clienterr.ProtocolError{Op: "interface status", Message: "invalid vid " + strconv.Quote(tokens[0])}
	}

	return Response{
		VID:    vid,
		Method: tokens[1],
		Result: tokens[2],
		Args:   tokens[3:],
	}, nil
}
