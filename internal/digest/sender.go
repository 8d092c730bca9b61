package digest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

const resendAPIURL = "https://api.resend.com/emails"

// DeliveryError is a failed digest delivery. It is run-fatal: the seen cache
// must not be persisted when the digest never went out.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivering digest: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Sender delivers a rendered digest.
type Sender interface {
	Deliver(ctx context.Context, d *Digest) error
}

// ResendSender delivers the digest through the Resend REST API.
type ResendSender struct {
	apiKey     string
	from       string
	to         string
	logger     *zap.Logger
	HTTPClient *http.Client
	APIURL     string
}

func NewResendSender(apiKey, from, to string, logger *zap.Logger) *ResendSender {
	return &ResendSender{
		apiKey: apiKey,
		from:   from,
		to:     to,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		APIURL: resendAPIURL,
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

func (s *ResendSender) Deliver(ctx context.Context, d *Digest) error {
	html, err := BuildHTML(d)
	if err != nil {
		return &DeliveryError{Err: err}
	}

	payload, err := json.Marshal(sendRequest{
		From:    s.from,
		To:      []string{s.to},
		Subject: d.Subject(),
		HTML:    html,
	})
	if err != nil {
		return &DeliveryError{Err: fmt.Errorf("encoding send request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.APIURL, bytes.NewReader(payload))
	if err != nil {
		return &DeliveryError{Err: err}
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return &DeliveryError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &DeliveryError{Err: fmt.Errorf("bad status: %s: %s", resp.Status, body)}
	}

	var parsed sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		s.logger.Debug("undecodable resend response", zap.Error(err))
	}

	s.logger.Info("digest delivered",
		zap.String("to", s.to),
		zap.String("message_id", parsed.ID),
		zap.Int("entries", len(d.Entries)),
	)

	return nil
}

// FileSender renders the digest to a local HTML file instead of sending it.
// Used by the dry-run and preview modes.
type FileSender struct {
	Path   string
	logger *zap.Logger
}

func NewFileSender(path string, logger *zap.Logger) *FileSender {
	return &FileSender{Path: path, logger: logger}
}

func (s *FileSender) Deliver(_ context.Context, d *Digest) error {
	html, err := BuildHTML(d)
	if err != nil {
		return &DeliveryError{Err: err}
	}

	if err := os.WriteFile(s.Path, []byte(html), 0o644); err != nil {
		return &DeliveryError{Err: fmt.Errorf("writing digest preview: %w", err)}
	}

	s.logger.Info("digest preview written", zap.String("path", s.Path))
	return nil
}
