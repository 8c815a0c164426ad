package middleware

import (
	"crypto/ed25519"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

// ParseDiscordPublicKey decodes the hex public key shown on the Discord
// application page.
func ParseDiscordPublicKey(hexKey string) (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, errors.Wrap(err, "decoding discord public key")
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.Errorf("discord public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// DiscordSignature rejects requests whose X-Signature-Ed25519 header does
// not verify against key. Discord probes endpoints with bad signatures and
// expects a 401.
func DiscordSignature(key ed25519.PublicKey, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !discordgo.VerifyInteraction(r, key) {
				logger.Warn("rejected discord interaction: invalid signature",
					"requestID", RequestID(r.Context()),
				)
				http.Error(w, "invalid request signature", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SlackSignature validates X-Slack-Signature against the signing secret.
// It needs the body buffered by BodyReader.
func SlackSignature(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, ok := RawBody(r.Context())
			if !ok {
				http.Error(w, "request body not available for signature verification", http.StatusInternalServerError)
				return
			}
			if err := verifySlack(r.Header, body, secret); err != nil {
				logger.Warn("rejected slack interaction: invalid signature",
					"requestID", RequestID(r.Context()),
					"error", err,
				)
				http.Error(w, "invalid request signature", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func verifySlack(header http.Header, body []byte, secret string) error {
	sv, err := slack.NewSecretsVerifier(header, secret)
	if err != nil {
		return errors.Wrap(err, "reading slack signature headers")
	}
	if _, err := sv.Write(body); err != nil {
		return errors.Wrap(err, "hashing body")
	}
	return sv.Ensure()
}
