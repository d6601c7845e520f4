package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"writer-studio/internal/sse"
)

type EventsHandler struct {
	events *sse.Manager
	logger echo.Logger
}

func NewEventsHandler(events *sse.Manager, logger echo.Logger) *EventsHandler {
	return &EventsHandler{
		events: events,
		logger: logger,
	}
}

// Stream provides Server-Sent Events for collection, conversation, notice
// and owner changes of the caller's workspace.
func (h *EventsHandler) Stream(c echo.Context) error {
	ws := CurrentWorkspace(c)

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	clientChannel := h.events.AddClient(ws.ID)
	defer h.events.RemoveClient(ws.ID, clientChannel)

	// The first event carries the full current state.
	initEvent := map[string]any{
		"type": "connection",
		"data": map[string]any{
			"owner":         ws.Owner(),
			"collection":    ws.Artifacts.Snapshot(),
			"conversations": ws.Conversations.Snapshot(),
		},
		"time": time.Now().Unix(),
	}
	initJSON, err := json.Marshal(initEvent)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Response(), "data: %s\n\n", initJSON)
	c.Response().Flush()

	for {
		select {
		case eventData, ok := <-clientChannel:
			if !ok {
				return nil
			}
			fmt.Fprintf(c.Response(), "data: %s\n\n", eventData)
			c.Response().Flush()
		case <-c.Request().Context().Done():
			return nil
		}
	}
}
