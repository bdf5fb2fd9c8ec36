// Package commsutil provides COMMS connection helpers, subject names and the
// payload codec used for interaction events.
package commsutil

import (
	"fmt"
	"log/slog"
	"time"

	comms "github.com/nats-io/nats.go"
)

const logPrefix = "commsutil:connect"

// ConnectOptions configures Connect. Zero durations and counts use defaults.
type ConnectOptions struct {
	URL           string
	Name          string
	Logger        *slog.Logger
	Timeout       time.Duration
	ReconnectWait time.Duration
	MaxReconnects int
}

func (o *ConnectOptions) withDefaults() ConnectOptions {
	out := *o
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	if out.Timeout <= 0 {
		out.Timeout = 10 * time.Second
	}
	if out.ReconnectWait <= 0 {
		out.ReconnectWait = 2 * time.Second
	}
	if out.MaxReconnects == 0 {
		out.MaxReconnects = 60
	}
	return out
}

// Connect opens a COMMS connection. Losing the connection later is not
// fatal; the client reconnects in the background and state changes are
// logged.
func Connect(opts ConnectOptions) (*comms.Conn, error) {
	o := opts.withDefaults()
	logger := o.Logger.With("comms_url", o.URL, "client_name", o.Name)

	nc, err := comms.Connect(o.URL,
		comms.Name(o.Name),
		comms.Timeout(o.Timeout),
		comms.ReconnectWait(o.ReconnectWait),
		comms.MaxReconnects(o.MaxReconnects),
		comms.DisconnectErrHandler(func(_ *comms.Conn, err error) {
			if err != nil {
				logger.Warn(fmt.Sprintf("%s - lost COMMS connection: %v", logPrefix, err))
			}
		}),
		comms.ReconnectHandler(func(nc *comms.Conn) {
			logger.Info(fmt.Sprintf("%s - back on COMMS via %s", logPrefix, nc.ConnectedUrl()))
		}),
		comms.ClosedHandler(func(*comms.Conn) {
			logger.Info(fmt.Sprintf("%s - COMMS connection closed", logPrefix))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to connect to COMMS: %w", logPrefix, err)
	}

	logger.Info(fmt.Sprintf("%s - COMMS connected, server %s", logPrefix, nc.ConnectedServerId()))
	return nc, nil
}
