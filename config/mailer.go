package config

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	mail "github.com/go-mail/mail/v2"
	"github.com/google/uuid"

	"lab-request-api/models"
)

var skipTLSVerify = os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1"

var mailHTTPClient = &http.Client{Timeout: 15 * time.Second}

// SendMail delivers one message through whichever single channel the stored
// configuration selects: the HTTP API channel when an API key is set,
// otherwise SMTP login+send. A single attempt, no built-in retry.
func SendMail(cfg models.SmtpConfig, to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	if cfg.UsesAPIChannel() {
		return sendViaAPI(cfg, to, subject, html)
	}
	return sendViaSMTP(cfg, to, subject, html)
}

func sendViaSMTP(cfg models.SmtpConfig, to []string, subject, html string) error {
	if cfg.SmtpHost == "" || cfg.FromAddress == "" {
		return fmt.Errorf("smtp not configured (host/from_address)")
	}

	m := mail.NewMessage()
	m.SetAddressHeader("From", cfg.FromAddress, cfg.FromName)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := mail.NewDialer(cfg.SmtpHost, cfg.SmtpPort, cfg.SmtpUser, cfg.SmtpPassword)
	if cfg.UseTLS {
		d.StartTLSPolicy = mail.MandatoryStartTLS
	} else {
		d.StartTLSPolicy = mail.OpportunisticStartTLS
	}
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.SmtpHost,
		InsecureSkipVerify: skipTLSVerify,
	}

	return d.DialAndSend(m)
}

type apiSendPayload struct {
	MessageID string   `json:"message_id"`
	From      string   `json:"from"`
	FromName  string   `json:"from_name,omitempty"`
	To        []string `json:"to"`
	Subject   string   `json:"subject"`
	HTML      string   `json:"html"`
}

func sendViaAPI(cfg models.SmtpConfig, to []string, subject, html string) error {
	if cfg.APIEndpoint == nil || *cfg.APIEndpoint == "" {
		return fmt.Errorf("mail api endpoint not configured")
	}

	payload := apiSendPayload{
		MessageID: uuid.NewString(),
		From:      cfg.FromAddress,
		FromName:  cfg.FromName,
		To:        to,
		Subject:   subject,
		HTML:      html,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, *cfg.APIEndpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+*cfg.APIKey)

	resp, err := mailHTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail api returned %s", resp.Status)
	}
	return nil
}
