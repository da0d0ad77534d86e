package preview

import (
	"bufio"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// DefaultPattern matches screen preview paths and captures the screen
// name.
var DefaultPattern = regexp.MustCompile(`^/screens/(?P<name>[\w-]+)/preview$`)

// Middleware streams Server Sent Events for screen previews. A request
// whose path matches the pattern is answered with a live event stream
// bound to the captured name; everything else is handed to the next
// handler unchanged.
func Middleware(pattern *regexp.Regexp, hub *Hub) fiber.Handler {
	nameIndex := pattern.SubexpIndex("name")

	return func(c *fiber.Ctx) error {
		match := pattern.FindStringSubmatch(c.Path())
		if match == nil {
			return c.Next()
		}
		name := match[nameIndex]

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")
		c.Status(fiber.StatusOK)

		sub := hub.Subscribe(name)
		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer hub.Unsubscribe(sub)

			for event := range sub.Events() {
				payload, err := json.Marshal(event)
				if err != nil {
					continue
				}

				if _, err := fmt.Fprintf(w, "event: update\ndata: %s\n\n", payload); err != nil {
					return
				}
				// A failed flush means the client dropped the connection.
				if err := w.Flush(); err != nil {
					return
				}
			}
		}))

		return nil
	}
}
