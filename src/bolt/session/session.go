package session

import (
	"context"

	"github.com/corvidgraph/boltwire/src/driver"
)

type Session interface {
	Close() error
	Run(ctx context.Context, query string, params map[string]interface{}, metaData map[string]interface{}) ([]string, []map[string]interface{}, error)
}
type session struct {
	driver driver.Driver
}

func NewSession(urlString string) (Session, error) {
	s := &session{}
	var err error
	s.driver, err = driver.NewDriver(urlString)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (d *session) Close() error {
	return d.driver.Close()
}
