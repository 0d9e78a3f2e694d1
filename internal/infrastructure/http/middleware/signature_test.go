package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyHMAC(t *testing.T) {
	payload := []byte(`{"meeting_id":"M"}`)
	sig := Sign("s3cret", payload)

	assert.True(t, VerifyHMAC("s3cret", payload, sig))
	assert.True(t, VerifyHMAC("s3cret", payload, strings.ToUpper(sig)))
	assert.False(t, VerifyHMAC("other", payload, sig))
	assert.False(t, VerifyHMAC("s3cret", []byte("tampered"), sig))
	assert.False(t, VerifyHMAC("", payload, sig))
	assert.False(t, VerifyHMAC("s3cret", payload, ""))
}

func serveSigned(t *testing.T, secret, body, signature string) (*httptest.ResponseRecorder, string, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcripts", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	handler := RequireSignature(secret, nil)(func(c echo.Context) error {
		data, err := io.ReadAll(c.Request().Body)
		require.NoError(t, err)
		seen = string(data)
		return c.NoContent(http.StatusAccepted)
	})
	return rec, seen, handler(c)
}

func TestRequireSignature(t *testing.T) {
	body := `{"meeting_id":"M","content":"hi"}`

	rec, seen, err := serveSigned(t, "k", body, "sha256="+Sign("k", []byte(body)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, body, seen)

	_, _, err = serveSigned(t, "k", body, Sign("wrong", []byte(body)))
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)

	_, _, err = serveSigned(t, "k", body, "")
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRequireSignature_DisabledWithoutSecret(t *testing.T) {
	rec, seen, err := serveSigned(t, "", "{}", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "{}", seen)
}
