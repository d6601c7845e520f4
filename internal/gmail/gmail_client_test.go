package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"writer-studio/internal/logger"
	"writer-studio/internal/model"
)

func decode(t *testing.T, raw string) string {
	t.Helper()
	b, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	return string(b)
}

func TestEncodeMessage(t *testing.T) {
	a := &model.Artifact{
		Subject:   "Invoice follow-up",
		Recipient: "sam@example.com",
		Content:   "Subject: Invoice follow-up\n\nHi Sam,\nPlease pay.",
	}
	msg := decode(t, EncodeMessage(a))
	assert.True(t, strings.HasPrefix(msg, "To: <sam@example.com>\r\nSubject: Invoice follow-up\r\n"))
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nHi Sam,\r\nPlease pay."))

	a.Recipient = "Sam"
	a.Subject = "Café"
	msg = decode(t, EncodeMessage(a))
	assert.NotContains(t, msg, "To:")
	assert.Contains(t, msg, "Subject: =?utf-8?q?Caf=C3=A9?=")
}

func TestDraftClient_CreateDraft(t *testing.T) {
	var auth, raw string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/users/me/drafts"), r.URL.Path)
		auth = r.Header.Get("Authorization")

		var d struct {
			Message struct {
				Raw string `json:"raw"`
			} `json:"message"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&d))
		raw = d.Message.Raw

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"draft-1","message":{"id":"m1"}}`))
	}))
	defer server.Close()

	client, err := NewDraftClient("token-123", logger.Discard(), option.WithEndpoint(server.URL+"/"))
	require.NoError(t, err)

	id, err := client.CreateDraft(context.Background(), &model.Artifact{ID: "a1", Subject: "Hi", Content: "Body"})
	require.NoError(t, err)
	assert.Equal(t, "draft-1", id)
	assert.Equal(t, "Bearer token-123", auth)
	assert.Contains(t, decode(t, raw), "Subject: Hi")
}

func TestDraftClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":401,"message":"bad token"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewDraftClient("expired", logger.Discard(), option.WithEndpoint(server.URL+"/"))
	require.NoError(t, err)

	_, err = client.CreateDraft(context.Background(), &model.Artifact{ID: "a1", Subject: "Hi", Content: "Body"})
	assert.Error(t, err)
}
