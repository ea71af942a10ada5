package contact

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Verdict ответ siteverify.
type Verdict struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score,omitempty"`
	Action     string   `json:"action,omitempty"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

// RecaptchaVerifier проверяет токены reCAPTCHA v3 через siteverify.
type RecaptchaVerifier struct {
	client    *http.Client
	verifyURL string
	secret    string
}

// NewRecaptchaVerifier создаёт верификатор. timeout ограничивает запрос к siteverify.
func NewRecaptchaVerifier(verifyURL, secret string, timeout time.Duration) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		client:    &http.Client{Timeout: timeout},
		verifyURL: verifyURL,
		secret:    secret,
	}
}

// Verify отправляет токен на проверку. Ошибка означает, что вердикт получить не удалось.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) (*Verdict, error) {
	const op = "contact.RecaptchaVerifier.Verify"

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	return &verdict, nil
}
