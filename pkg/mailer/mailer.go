package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/mail"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/virginiacakes/storefront-backend/pkg/logger"
)

var ErrNoRecipients = errors.New("mailer: message has no recipients")

// Message is a single outbound email. HTML is required, Text is optional.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	From         string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	// SMTPTimeout bounds one SMTP attempt, dial to QUIT. Zero means 5s.
	SMTPTimeout  time.Duration
	ResendAPIKey string
	ResendURL    string
}

const defaultSMTPTimeout = 5 * time.Second

// New picks a transport: SMTP when a host is configured, the Resend API when
// an API key is set, else a dev sender that only logs. With both configured,
// Resend is tried after a failed SMTP attempt.
func New(cfg Config) Sender {
	var resend Sender
	if cfg.ResendAPIKey != "" {
		resend = &resendSender{
			cfg:        cfg,
			httpClient: &http.Client{Timeout: 15 * time.Second},
		}
	}

	switch {
	case cfg.SMTPHost != "" && resend != nil:
		return &fallbackSender{senders: []Sender{newSMTPSender(cfg), resend}}
	case cfg.SMTPHost != "":
		return newSMTPSender(cfg)
	case resend != nil:
		return resend
	default:
		return devSender{}
	}
}

type smtpSender struct {
	cfg     Config
	timeout time.Duration
}

func newSMTPSender(cfg Config) *smtpSender {
	timeout := cfg.SMTPTimeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	return &smtpSender{cfg: cfg, timeout: timeout}
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	timeout := s.timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addr := net.JoinHostPort(s.cfg.SMTPHost, s.cfg.SMTPPort)
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	// the deadline covers every read and write; cancellation closes the socket
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("smtp deadline: %w", err)
		}
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := s.deliver(conn, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("smtp send: %w", ctxErr)
		}
		return fmt.Errorf("smtp send: %w", err)
	}

	logger.Info("Email sent via SMTP", map[string]interface{}{
		"to":      strings.Join(msg.To, ","),
		"subject": msg.Subject,
	})
	return nil
}

func (s *smtpSender) deliver(conn net.Conn, msg Message) error {
	c, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.SMTPHost}); err != nil {
			return err
		}
	}

	if s.cfg.SMTPPassword != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			user := s.cfg.SMTPUser
			if user == "" {
				user = envelopeAddress(s.cfg.From)
			}
			if err := c.Auth(smtp.PlainAuth("", user, s.cfg.SMTPPassword, s.cfg.SMTPHost)); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(envelopeAddress(s.cfg.From)); err != nil {
		return err
	}
	for _, rcpt := range msg.To {
		if err := c.Rcpt(envelopeAddress(rcpt)); err != nil {
			return err
		}
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(buildMIME(s.cfg.From, msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// envelopeAddress strips a display name: "Shop <a@b.c>" becomes "a@b.c"
func envelopeAddress(addr string) string {
	if parsed, err := mail.ParseAddress(addr); err == nil {
		return parsed.Address
	}
	return strings.TrimSpace(addr)
}

// fallbackSender tries each sender in order and stops at the first success
type fallbackSender struct {
	senders []Sender
}

func (f *fallbackSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	var errs []error
	for i, sender := range f.senders {
		err := sender.Send(ctx, msg)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
		if i < len(f.senders)-1 {
			logger.Warn("Email transport failed, trying next", map[string]interface{}{
				"subject": msg.Subject,
				"error":   err.Error(),
			})
		}
	}
	return errors.Join(errs...)
}

func buildMIME(from string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

type resendSender struct {
	cfg        Config
	httpClient *http.Client
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

func (s *resendSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	body, err := json.Marshal(resendPayload{
		From:    s.cfg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.ResendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.ResendAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("resend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("resend returned status %d: %s", resp.StatusCode, string(detail))
	}

	logger.Info("Email sent via Resend", map[string]interface{}{
		"to":      strings.Join(msg.To, ","),
		"subject": msg.Subject,
	})
	return nil
}

type devSender struct{}

func (devSender) Send(_ context.Context, msg Message) error {
	logger.Warn("No email transport configured, email not sent", map[string]interface{}{
		"to":      strings.Join(msg.To, ","),
		"subject": msg.Subject,
	})
	return nil
}

// Recorder keeps every message instead of sending it. Err, when set, is returned from Send.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}
