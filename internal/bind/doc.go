// Package bind resolves the address a server listens on.
//
// Older deployment tooling passes a single "tcp://host:port" string, newer
// tooling passes host and port separately. Both may be present; the legacy
// string overrides only the parts it actually carries.
//
//	addr, err := bind.Resolve("127.0.0.1", 3000, "tcp://0.0.0.0")
//	// addr.Host == "0.0.0.0", addr.Port == 3000
//
// A scheme other than tcp is a fatal configuration error. The address is
// resolved once per invocation and threaded through to the launch strategy.
package bind
