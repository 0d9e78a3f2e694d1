package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SignatureHeader carries the hex sha256 HMAC of the raw request body.
// A "sha256=" prefix is accepted.
const SignatureHeader = "X-Signature"

// maxSignedBody bounds the body read for verification
const maxSignedBody = 1 << 20

// VerifyHMAC verifies a sha256 HMAC hex signature against payload and secret
func VerifyHMAC(secret string, payload []byte, signatureHex string) bool {
	if secret == "" || signatureHex == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signatureHex)))
}

// Sign returns the hex signature a caller should send for payload
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// RequireSignature rejects requests whose body does not match SignatureHeader.
// An empty secret disables the check.
func RequireSignature(secret string, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if secret == "" {
			return next
		}
		return func(c echo.Context) error {
			req := c.Request()
			body, err := io.ReadAll(io.LimitReader(req.Body, maxSignedBody))
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
			}
			_ = req.Body.Close()
			req.Body = io.NopCloser(bytes.NewReader(body))

			signature := strings.TrimPrefix(strings.TrimSpace(req.Header.Get(SignatureHeader)), "sha256=")
			if !VerifyHMAC(secret, body, signature) {
				if logger != nil {
					logger.Warn("⚠️ Rejected request with invalid signature",
						zap.String("path", c.Path()),
						zap.String("remote_ip", c.RealIP()),
					)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid signature")
			}
			return next(c)
		}
	}
}
