package email

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatame/tatame-backend/pkg/config"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
)

func TestSendPostsMailPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer SG.key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewClient(config.SendgridConfig{APIKey: "SG.key", DefaultFrom: "no-reply@tatame.app", FromName: "Tatame"}, nil, WithHost(srv.URL))
	require.NoError(t, err)

	require.NoError(t, client.Send(context.Background(), WelcomeMessage("rickson@example.com", "Rickson")))
	assert.Equal(t, "Welcome to Tatame", got["subject"])
	from := got["from"].(map[string]any)
	assert.Equal(t, "no-reply@tatame.app", from["email"])
}

func TestSendSurfacesProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad"}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(config.SendgridConfig{APIKey: "SG.key", DefaultFrom: "no-reply@tatame.app"}, nil, WithHost(srv.URL))
	require.NoError(t, err)

	err = client.Send(context.Background(), Message{To: "a@b.c", Subject: "x", Text: "y"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(config.SendgridConfig{DefaultFrom: "x@y.z"}, nil)
	assert.Error(t, err)
}
