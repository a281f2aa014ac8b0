package http

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookworm/internal/database/books"
)

const (
	streamBuffer    = 16
	streamHeartbeat = 30 * time.Second
)

// StreamController pushes store changes to browsers as Server-Sent Events
// so the list screen refreshes without polling.
type StreamController struct {
	store     BookStore
	heartbeat time.Duration
}

func NewStreamController(store BookStore) *StreamController {
	return &StreamController{store: store, heartbeat: streamHeartbeat}
}

// Stream handles GET /api/books/stream
// Slow clients miss events rather than block the writer.
func (sc *StreamController) Stream(c *gin.Context) {
	events := make(chan books.Event, streamBuffer)
	unsubscribe := sc.store.Subscribe(func(e books.Event) {
		select {
		case events <- e:
		default:
		}
	})
	defer unsubscribe()

	ticker := time.NewTicker(sc.heartbeat)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"at": time.Now()})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case e := <-events:
			c.SSEvent(string(e.Kind), e)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now()})
			return true
		}
	})
}
