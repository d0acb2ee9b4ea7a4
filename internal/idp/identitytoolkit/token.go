package identitytoolkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	"github.com/openkcm/auth-bridge/internal/idp"
)

var signingAlgs = []jose.SignatureAlgorithm{jose.RS256}

// tokenLifetime derives how long an identity token stays valid, from
// the expires_in hint when present, otherwise from the token's exp
// claim. The token is not signature-verified here; that is the
// backend's job.
func tokenLifetime(idToken, expiresIn string) (time.Duration, error) {
	if expiresIn != "" {
		seconds, err := strconv.Atoi(expiresIn)
		if err != nil {
			return 0, fmt.Errorf("parsing expires_in: %w", err)
		}

		return time.Duration(seconds) * time.Second, nil
	}

	token, err := jwt.ParseSigned(idToken, signingAlgs)
	if err != nil {
		return 0, fmt.Errorf("parsing identity token: %w", err)
	}

	var claims jwt.Claims
	if err := token.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return 0, fmt.Errorf("reading identity token claims: %w", err)
	}

	if claims.Expiry == nil {
		return 0, errors.New("identity token has no expiry claim")
	}

	return time.Until(claims.Expiry.Time()), nil
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// decodeAPIError maps a non-2xx identity toolkit response to an
// idp.Error. The provider packs the machine code into the message
// field, sometimes with a human-readable suffix after a colon.
func decodeAPIError(resp *http.Response) error {
	var body apiError
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return &idp.Error{
			Code:    idp.CodeNetwork,
			Message: fmt.Sprintf("provider responded with status %d", resp.StatusCode),
		}
	}

	code, message, found := strings.Cut(body.Error.Message, ":")
	code = strings.TrimSpace(code)
	if !found {
		message = ""
	}

	return &idp.Error{
		Code:    idp.Code(code),
		Message: strings.TrimSpace(message),
	}
}
