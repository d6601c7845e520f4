package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"writer-studio/internal/apperr"
	"writer-studio/internal/export"
	"writer-studio/internal/model"
	"writer-studio/internal/view"
)

type ConversationHandler struct {
	logger echo.Logger
}

func NewConversationHandler(logger echo.Logger) *ConversationHandler {
	return &ConversationHandler{logger: logger}
}

type conversationSummary struct {
	*model.Conversation
	Preview  string `json:"preview"`
	Activity string `json:"activity"`
}

func summarize(c *model.Conversation) conversationSummary {
	activity := "1 message"
	if n := len(c.Messages); n >= 2 {
		activity = fmt.Sprintf("%d messages • %d min", n, int(c.Duration()/time.Minute))
	}
	return conversationSummary{
		Conversation: c,
		Preview:      c.Preview(100),
		Activity:     activity,
	}
}

func (h *ConversationHandler) ListConversations(c echo.Context) error {
	all := CurrentWorkspace(c).Conversations.Snapshot()
	q := view.ParseQuery(c.QueryParams())
	shown := view.Conversations(all, q)

	items := make([]conversationSummary, len(shown))
	for i, conv := range shown {
		items[i] = summarize(conv)
	}
	return c.JSON(http.StatusOK, listResponse[conversationSummary]{
		Items:   items,
		Shown:   len(shown),
		Total:   len(all),
		Summary: view.Summary(len(shown), len(all), "conversations"),
		Query:   q,
	})
}

// SaveConversation bundles the session transcript under the posted title.
func (h *ConversationHandler) SaveConversation(c echo.Context) error {
	var body struct {
		Title string `json:"title"`
	}
	if err := c.Bind(&body); err != nil {
		return RespondError(c, bindError(err))
	}

	ws := CurrentWorkspace(c)
	saved, err := ws.Conversations.Save(c.Request().Context(), body.Title, ws.Transcript.Messages())
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, saved)
}

func (h *ConversationHandler) DeleteConversation(c echo.Context) error {
	ws := CurrentWorkspace(c)
	id := c.Param("id")
	if _, ok := ws.Conversations.Get(id); !ok {
		return RespondError(c, apperr.NewNotFound("conversation", id))
	}
	if err := ws.Conversations.Remove(c.Request().Context(), id); err != nil {
		return RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// OpenConversation loads a saved conversation into the live transcript.
func (h *ConversationHandler) OpenConversation(c echo.Context) error {
	ws := CurrentWorkspace(c)
	id := c.Param("id")
	conv, ok := ws.Conversations.Get(id)
	if !ok {
		return RespondError(c, apperr.NewNotFound("conversation", id))
	}
	ws.Transcript.Reopen(conv)
	return c.JSON(http.StatusOK, map[string][]model.Message{"messages": ws.Transcript.Messages()})
}

func (h *ConversationHandler) ExportConversation(c echo.Context) error {
	id := c.Param("id")
	conv, ok := CurrentWorkspace(c).Conversations.Get(id)
	if !ok {
		return RespondError(c, apperr.NewNotFound("conversation", id))
	}
	attach(c, export.ConversationFilename(conv, time.Now()))
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(export.ConversationText(conv)))
}
