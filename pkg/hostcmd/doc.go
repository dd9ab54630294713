// Package hostcmd implements the Host Command protocol engine.
//
// The Host Command service is a line-oriented text protocol. Requests are a
// command name and space-separated parameters terminated by "\n". Replies
// are terminated by "\r\n"; zero or more data lines are followed by a single
// reply line starting with "R:". Errors arrive as "R:ERROR:<code> <message>".
//
// The controller may also interleave unsolicited lines on any connection:
//
//	S:<TYPE> <vid> <args...>   status change (after STATUS <type>)
//	EL: <vid> <Iface.Method> <args...>
//	                           interface status (after ELLOG STATUS ON)
//	L: <log>                   legacy log
//
// Each open connection has exactly one reader goroutine. It hands event
// lines to the handler set with SetEventHandler and every other line to the
// request in flight, so an event can never be mistaken for a reply and a
// request never blocks the event path.
//
// # Usage
//
//	client, err := hostcmd.NewClient(hostcmd.DefaultConfig("192.168.1.50"))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	resp, err := client.Invoke(ctx, 12, "Load.GetLevel")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.Result)
package hostcmd
