package utils

import (
	"net"
	"net/http"
)

// ClientIP returns the remote host of the request. X-Forwarded-For is not
// trusted since clients can set it freely.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
