package admin

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"circulyte-backend/internal/events"
	"circulyte-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const streamKeepAlive = 25 * time.Second

// GET /api/sources/stream
// Server-sent events: the full source list on connect and after every change.
func SourceStreamHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			// fasthttp has no per-connection context; a failed flush ends the stream.
			if err := streamSources(context.Background(), w, d.Sources, d.Broker, streamKeepAlive); err != nil {
				d.Logger.Debug("source stream closed", zap.Error(err))
			}
		}))
		return nil
	}
}

// streamSources writes snapshots until ctx ends or a write fails. The broker
// subscription lives exactly as long as the loop.
func streamSources(ctx context.Context, w *bufio.Writer, sources store.SourceStore, broker events.Broker, keepAlive time.Duration) error {
	changed := make(chan struct{}, 1)
	unsubscribe, err := broker.Subscribe(events.TopicSourcesChanged, func([]byte) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer unsubscribe()

	if err := writeSourceSnapshot(ctx, w, sources); err != nil {
		return err
	}

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
			if err := writeSourceSnapshot(ctx, w, sources); err != nil {
				return err
			}
		case <-ticker.C:
			if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
				return err
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
}

func writeSourceSnapshot(ctx context.Context, w *bufio.Writer, sources store.SourceStore) error {
	list, err := sources.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("could not load sources: %w", err)
	}

	res := make([]SourceResponse, 0, len(list))
	for _, s := range list {
		res = append(res, toSourceResponse(s))
	}
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: sources\ndata: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}
