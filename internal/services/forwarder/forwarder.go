// Package forwarder пересылает заявки с формы обратной связи во внешний webhook.
package forwarder

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/metrics"
	"github.com/magabrotheeeer/luxera-dashboard/internal/lib/sl"
)

// SignatureHeader заголовок с HMAC-SHA256 подписью тела запроса.
const SignatureHeader = "X-Luxera-Signature"

// maxErrorBody сколько байт ответа webhook попадает в лог при ошибке.
const maxErrorBody = 512

// Forwarder отправляет тело сообщения в webhook с подписью.
type Forwarder struct {
	client *http.Client
	url    string
	secret []byte
	log    *slog.Logger
}

// New создаёт отправителя.
func New(url, secret string, timeout time.Duration, log *slog.Logger) *Forwarder {
	return &Forwarder{
		client: &http.Client{Timeout: timeout},
		url:    url,
		secret: []byte(secret),
		log:    log,
	}
}

// Sign возвращает hex HMAC-SHA256 от payload.
func Sign(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Forward пересылает сообщение как есть. Ошибка возвращает сообщение в очередь,
// поэтому битый JSON подтверждается и отбрасывается.
func (f *Forwarder) Forward(ctx context.Context, body []byte) error {
	const op = "services.forwarder.Forward"
	log := f.log.With(sl.Op(op))

	if !json.Valid(body) {
		log.Error("dropping malformed message", slog.Int("size", len(body)))
		metrics.ContactForwards.WithLabelValues("dropped").Inc()
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, Sign(f.secret, body))

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.ContactForwards.WithLabelValues("error").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Error("webhook rejected message",
			slog.Int("status", resp.StatusCode),
			slog.String("detail", string(detail)))
		metrics.ContactForwards.WithLabelValues("rejected").Inc()
		return fmt.Errorf("%s: webhook responded with status %d", op, resp.StatusCode)
	}

	metrics.ContactForwards.WithLabelValues("delivered").Inc()
	log.Info("contact forwarded")
	return nil
}
