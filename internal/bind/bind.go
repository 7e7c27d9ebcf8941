package bind

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// The only scheme accepted in legacy bind strings.
const Scheme = "tcp"

// Effective address a server binds to.
//
// A zero Host or Port means the value was not given anywhere and is left for
// the launch strategy to default.
type Address struct {
	Scheme string // Always [Scheme] when parsed from a legacy string, else empty.
	Host   string // Host name or IP, without brackets.
	Port   int    // TCP port, 0 when unset.
}

// Returns "host:port", with IPv6 hosts bracketed.
func (a Address) HostPort() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Returns the address in legacy "tcp://host:port" form.
func (a Address) String() string {
	return Scheme + "://" + a.HostPort()
}

// Resolves the effective bind address.
//
// When legacy is empty the discrete host and port are returned as-is.
// Otherwise legacy must be a "tcp://host[:port]" URI; its host and port take
// precedence only where present, so "tcp://0.0.0.0" keeps the discrete port.
// Any other scheme fails with [ErrScheme]; an unparseable string or port fails
// with [ErrMalformed].
func Resolve(host string, port int, legacy string) (Address, error) {
	if legacy == "" {
		return Address{Host: host, Port: port}, nil
	}

	parsed, err := Parse(legacy)
	if err != nil {
		return Address{}, err
	}

	addr := Address{Scheme: parsed.Scheme, Host: host, Port: port}
	if parsed.Host != "" {
		addr.Host = parsed.Host
	}
	if parsed.Port != 0 {
		addr.Port = parsed.Port
	}
	return addr, nil
}

// Parses a legacy "tcp://host[:port]" string.
//
// Missing parts are returned as zero values.
func Parse(s string) (Address, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q: %w", ErrMalformed, s, err)
	}

	if u.Scheme != Scheme {
		return Address{}, fmt.Errorf("%w: %q has scheme %q", ErrScheme, s, u.Scheme)
	}

	addr := Address{Scheme: u.Scheme, Host: u.Hostname()}
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 65535 {
			return Address{}, fmt.Errorf("%w: %q has invalid port %q", ErrMalformed, s, p)
		}
		addr.Port = n
	}

	return addr, nil
}
