package driver

import "github.com/corvidgraph/boltwire/src/internal/boltutil"

// Version returns the current version of the boltwire driver
func Version() string {
	return boltutil.LibraryVersion
}

// UserAgent returns the product part of the Bolt user agent; the HELLO message
// sent by boltutil.SendHello appends the Go runtime version, as " (Go/x.y.z)"
func UserAgent() string {
	return "boltwire::Bolt/" + boltutil.LibraryVersion
}