package push

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Notifier delivers best-effort notifications to users. Failures are
// logged and never propagated: a notification must not be able to roll
// back the financial transaction that triggered it.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string)
}

// FCMNotifier resolves a user's device tokens and fans the message out
// through FCM, fire-and-forget.
type FCMNotifier struct {
	db     *sqlx.DB
	client *FCMClient
}

func NewFCMNotifier(db *sqlx.DB, client *FCMClient) *FCMNotifier {
	return &FCMNotifier{db: db, client: client}
}

func (n *FCMNotifier) activeTokens(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var tokens []string
	err := n.db.SelectContext(ctx, &tokens, `
		SELECT token FROM device_tokens WHERE user_id = $1 AND is_active = true
	`, userID)
	return tokens, err
}

func (n *FCMNotifier) Notify(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string) {
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		tokens, err := n.activeTokens(sendCtx, userID)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to load device tokens")
			return
		}

		for _, token := range tokens {
			if err := n.client.Send(sendCtx, &PushMessage{
				Token: token,
				Title: title,
				Body:  body,
				Data:  data,
			}); err != nil {
				log.Warn().Err(err).Str("user_id", userID.String()).Msg("Push delivery failed")
			}
		}
	}()
}

// NopNotifier is used when FCM is not configured.
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string) {
	log.Debug().Str("user_id", userID.String()).Str("title", title).Msg("Notification suppressed (push not configured)")
}
