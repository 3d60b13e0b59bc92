package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"fknsrs.biz/p/viddown/internal/ctxlibrary"
	"fknsrs.biz/p/viddown/internal/ctxlogger"
	"fknsrs.biz/p/viddown/internal/ctxsession"
	"fknsrs.biz/p/viddown/internal/library"
	"fknsrs.biz/p/viddown/internal/session"
)

type sseMessage struct {
	id    uint64
	event string
	data  interface{}
}

// SessionUpdates streams session events, and library changes, as server-sent
// events until the client goes away. Slow clients miss events rather than
// holding up the session; once they catch up they get the current snapshot
// so the stream never ends on a stale state.
func SessionUpdates(rw http.ResponseWriter, r *http.Request) {
	flusher, ok := rw.(http.Flusher)
	if !ok {
		http.Error(rw, "streaming not supported", http.StatusInternalServerError)
		return
	}

	rw.Header().Set("Content-Type", "text/event-stream")
	rw.Header().Set("Cache-Control", "no-cache")
	rw.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	l := ctxlogger.GetLogger(ctx)

	messages := make(chan sseMessage, 32)

	var dropped atomic.Bool

	send := func(m sseMessage) {
		select {
		case messages <- m:
		default:
			dropped.Store(true)
			l.WithField("sse.event", m.event).Debug("dropping event for slow client")
		}
	}

	c := ctxsession.GetController(ctx)

	unsubscribeSession := c.Subscribe(func(e session.Event) { send(sseMessage{e.Seq, "session", e}) })
	defer unsubscribeSession()

	if lib := ctxlibrary.GetStore(ctx); lib != nil {
		unsubscribeLibrary := lib.Subscribe(func(ch library.Change) { send(sseMessage{0, "library", ch}) })
		defer unsubscribeLibrary()
	}

	rw.WriteHeader(http.StatusOK)

	if err := writeSSE(rw, 0, "session", session.Event{Snapshot: c.Snapshot()}); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case m := <-messages:
			if err := writeSSE(rw, m.id, m.event, m.data); err != nil {
				l.WithError(err).Debug("could not write event")
				return
			}

			if len(messages) == 0 && dropped.Swap(false) {
				if err := writeSSE(rw, 0, "session", session.Event{Snapshot: c.Snapshot()}); err != nil {
					l.WithError(err).Debug("could not write event")
					return
				}
			}

			flusher.Flush()
		}
	}
}

func writeSSE(rw http.ResponseWriter, id uint64, event string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("handlers.writeSSE: could not encode %s event: %w", event, err)
	}

	if id != 0 {
		if _, err := fmt.Fprintf(rw, "id: %d\n", id); err != nil {
			return fmt.Errorf("handlers.writeSSE: %w", err)
		}
	}

	if _, err := fmt.Fprintf(rw, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return fmt.Errorf("handlers.writeSSE: %w", err)
	}

	return nil
}
