package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dom/tickify/internal/events"
	gorillaWS "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Watch streams the live change feed at feedURL into handle until ctx is
// done or the server closes the connection.
func Watch(ctx context.Context, feedURL string, logger *zap.Logger, handle func(*events.Message)) error {
	dialer := *gorillaWS.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, resp, err := dialer.DialContext(ctx, feedURL, nil)
	if err != nil {
		if resp != nil {
			return &APIError{Status: resp.StatusCode, Message: "could not open live feed"}
		}
		return fmt.Errorf("connect to live feed: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(gorillaWS.CloseMessage,
				gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || gorillaWS.IsCloseError(err, gorillaWS.CloseNormalClosure, gorillaWS.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read live feed: %w", err)
		}

		var msg events.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn("skipping malformed feed message", zap.Error(err))
			continue
		}
		handle(&msg)
	}
}
