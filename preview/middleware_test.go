package preview

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(hub *Hub) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(DefaultPattern, hub))
	app.Get("/screens", func(c *fiber.Ctx) error {
		return c.SendString("delegated")
	})

	return app
}

func TestMiddlewareDelegatesNonMatchingPaths(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	app := testApp(hub)

	response, err := app.Test(httptest.NewRequest("GET", "/screens", nil))
	require.NoError(t, err)
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, response.StatusCode)
	assert.Equal(t, "delegated", string(body))
	assert.Equal(t, 0, hub.Count("lobby"))
}

func TestMiddlewareStreamsMatchingPath(t *testing.T) {
	hub := NewHub()
	app := testApp(hub)

	// Emit an update once the connection is subscribed, then shut the
	// hub down so the stream terminates and the response completes.
	go func() {
		deadline := time.Now().Add(2 * time.Second)
		for hub.Count("lobby") == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		hub.Publish("lobby")
		time.Sleep(50 * time.Millisecond)
		hub.Close()
	}()

	response, err := app.Test(httptest.NewRequest("GET", "/screens/lobby/preview", nil), 5000)
	require.NoError(t, err)
	defer response.Body.Close()

	assert.Equal(t, fiber.StatusOK, response.StatusCode)
	assert.Equal(t, "text/event-stream", response.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "no-cache", response.Header.Get(fiber.HeaderCacheControl))
	assert.Equal(t, "no", response.Header.Get("X-Accel-Buffering"))

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "event: update")
	assert.Contains(t, string(body), `"name":"lobby"`)
}

func TestDefaultPatternCapturesName(t *testing.T) {
	match := DefaultPattern.FindStringSubmatch("/screens/front-desk_2/preview")
	require.NotNil(t, match)
	assert.Equal(t, "front-desk_2", match[DefaultPattern.SubexpIndex("name")])

	assert.Nil(t, DefaultPattern.FindStringSubmatch("/screens/front/desk/preview"))
	assert.Nil(t, DefaultPattern.FindStringSubmatch("/screens"))
}
