package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	natsConnectAttempts = 30
	natsConnectWait     = 2 * time.Second
)

// ConnectNATS dials the broker with bounded startup retries. After the
// initial connect the client reconnects on its own indefinitely.
func ConnectNATS(natsURL, name string) (*nats.Conn, error) {
	var nc *nats.Conn
	var err error
	for attempt := 1; attempt <= natsConnectAttempts; attempt++ {
		nc, err = nats.Connect(natsURL,
			nats.Name(name),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(natsConnectWait),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				slog.Warn("NATS disconnected", "error", err)
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				slog.Info("NATS reconnected", "url", nc.ConnectedUrl())
			}),
		)
		if err == nil {
			slog.Info("Connected to NATS", "url", nc.ConnectedUrl())
			return nc, nil
		}
		slog.Info("Waiting for NATS", "attempt", attempt, "error", err)
		time.Sleep(natsConnectWait)
	}
	return nil, fmt.Errorf("failed to connect to NATS: %w", err)
}
