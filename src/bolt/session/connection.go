package session

import (
	"net"

	"github.com/corvidgraph/boltwire/src/connection_url_resolver"
	"github.com/corvidgraph/boltwire/src/internal/boltutil"
)

func checkVersion(conn net.Conn) error {
	_, _, err := boltutil.CheckVersion(conn)
	return err
}

func sendHello(conn net.Conn) error {
	return boltutil.SendHello(conn)
}

func authenticate(conn net.Conn, urlResolver *connection_url_resolver.ConnectionUrlResolver) error {
	return boltutil.Authenticate(conn, urlResolver)
}
