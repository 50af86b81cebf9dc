package health

import (
	"net/http"

	"github.com/dmitrymomot/rgwnotify/core/handler"
)

// Liveness indicates the process is running. Always "ALIVE" with 200 OK.
func Liveness(*http.Request) handler.Response {
	return handler.String("ALIVE")
}
