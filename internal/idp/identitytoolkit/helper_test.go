package identitytoolkit_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// toolkitServer fakes the identity toolkit REST API. It accepts one
// known account and counts token refreshes so tests can assert cache
// behaviour.
type toolkitServer struct {
	*httptest.Server

	email    string
	password string

	refreshCalls atomic.Int64
}

func startToolkitServer(t *testing.T, email, password string) *toolkitServer {
	t.Helper()

	ts := &toolkitServer{email: email, password: password}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "" {
			writeToolkitError(w, http.StatusBadRequest, "MISSING_API_KEY")
			return
		}

		switch r.URL.Path {
		case "/v1/accounts:signUp":
			var req struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)

			if req.Email == ts.email {
				writeToolkitError(w, http.StatusBadRequest, "EMAIL_EXISTS")
				return
			}
			if len(req.Password) < 6 {
				writeToolkitError(w, http.StatusBadRequest, "WEAK_PASSWORD : Password should be at least 6 characters")
				return
			}

			writeCredentials(w, "uid-new", req.Email)
		case "/v1/accounts:signInWithPassword":
			var req struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)

			if req.Email != ts.email {
				writeToolkitError(w, http.StatusBadRequest, "EMAIL_NOT_FOUND")
				return
			}
			if req.Password != ts.password {
				writeToolkitError(w, http.StatusBadRequest, "INVALID_PASSWORD")
				return
			}

			writeCredentials(w, "uid-1", req.Email)
		case "/v1/token":
			ts.refreshCalls.Add(1)

			if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "refresh_token" {
				writeToolkitError(w, http.StatusBadRequest, "INVALID_GRANT_TYPE")
				return
			}

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{
				"id_token":      "id-token-refreshed",
				"refresh_token": r.PostForm.Get("refresh_token"),
				"expires_in":    "3600",
			})
		default:
			http.NotFound(w, r)
		}
	}))

	t.Cleanup(ts.Server.Close)

	return ts
}

func writeCredentials(w http.ResponseWriter, uid, email string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"localId":      uid,
		"email":        email,
		"idToken":      "id-token-initial",
		"refreshToken": "refresh-" + uid,
		"expiresIn":    "3600",
	})
}

func writeToolkitError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": message,
		},
	})
}
