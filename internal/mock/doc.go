// Package mock provides in-process fake controller services for tests.
//
// HostCommandServer speaks the line protocol (requests terminated by "\n",
// replies by "\r\n") and lets tests script replies per command and push
// unsolicited status lines. ACIServer answers XML requests per
// "Interface.Method". Both listen on 127.0.0.1 with an ephemeral port.
package mock
