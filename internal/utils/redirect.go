package utils

import (
	"net/url"
	"strings"
)

var loopbackHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
}

// IsLoopbackURL reports whether raw is a plain http URL pointing at this machine.
// It is an allow-list: anything it cannot positively identify is rejected.
func IsLoopbackURL(raw string) bool {
	if raw == "" || strings.ContainsAny(raw, "\\\r\n") {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" || u.User != nil || u.Opaque != "" {
		return false
	}

	return loopbackHosts[strings.ToLower(u.Hostname())]
}
