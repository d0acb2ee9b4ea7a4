package registration_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/auth-bridge/internal/config"
	"github.com/openkcm/auth-bridge/internal/registration"
)

func startRegistrationServer(t *testing.T, status int, response string, gotBody *[]byte, gotAuth *string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/registration/register", r.URL.Path)

		if gotAuth != nil {
			*gotAuth = r.Header.Get("Authorization")
		}
		if gotBody != nil {
			*gotBody, _ = io.ReadAll(r.Body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *registration.Client {
	t.Helper()

	client, err := registration.NewClient(
		config.Backend{BaseURL: srv.URL},
		config.Registration{RegisterPath: "/api/registration/register"},
		srv.Client(),
	)
	require.NoError(t, err)

	return client
}

func TestClient_Register_Individual(t *testing.T) {
	var body []byte
	var auth string
	srv := startRegistrationServer(t, http.StatusCreated, `{"id":"123"}`, &body, &auth)
	client := newTestClient(t, srv)

	err := client.Register(t.Context(), "fresh-token", registration.Profile{
		Email:       "a@b.com",
		FullName:    "Ana Silva",
		BirthDate:   "1990-01-01",
		CPF:         "12345678900",
		Phone:       "11999999999",
		AccountType: "individual",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer fresh-token", auth)

	// the professional field must be an explicit null, not omitted
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &raw))
	require.Contains(t, raw, "professional")
	assert.Equal(t, "null", string(raw["professional"]))
}

func TestClient_Register_Professional(t *testing.T) {
	var body []byte
	srv := startRegistrationServer(t, http.StatusCreated, `{}`, &body, nil)
	client := newTestClient(t, srv)

	err := client.Register(t.Context(), "fresh-token", registration.Profile{
		Email:       "dr@b.com",
		FullName:    "Ana Silva",
		BirthDate:   "1990-01-01",
		CPF:         "12345678900",
		Phone:       "11999999999",
		AccountType: "professional",
		Professional: &registration.Professional{
			Kind:               "physician",
			RegistrationNumber: "123456",
			RegistrationIssuer: "CRM",
		},
	})
	require.NoError(t, err)

	var raw struct {
		Professional map[string]json.RawMessage `json:"professional"`
	}
	require.NoError(t, json.Unmarshal(body, &raw))
	require.Contains(t, raw.Professional, "registration_state")
	assert.Equal(t, "null", string(raw.Professional["registration_state"]))
}

func TestClient_Register_ServerMessage(t *testing.T) {
	srv := startRegistrationServer(t, http.StatusConflict, `{"message":"CPF já cadastrado"}`, nil, nil)
	client := newTestClient(t, srv)

	err := client.Register(t.Context(), "fresh-token", registration.Profile{})

	var regErr *registration.Error
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, http.StatusConflict, regErr.StatusCode)
	assert.Equal(t, "CPF já cadastrado", regErr.Message)
}

func TestClient_Register_GenericFallback(t *testing.T) {
	srv := startRegistrationServer(t, http.StatusInternalServerError, `boom`, nil, nil)
	client := newTestClient(t, srv)

	err := client.Register(t.Context(), "fresh-token", registration.Profile{})

	var regErr *registration.Error
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "Erro ao registrar usuário", regErr.Message)
}
