package smtp

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/magabrotheeeer/beauty-booking/internal/config"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/sl"
)

// ErrNoStartTLS is returned when the server does not offer STARTTLS.
var ErrNoStartTLS = errors.New("smtp server does not support STARTTLS")

const dialTimeout = 10 * time.Second

// Transport connects to the configured SMTP server over STARTTLS with PLAIN auth.
type Transport struct {
	cfg config.SMTP
	log *slog.Logger
}

// NewTransport returns a Transport for cfg.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log}
}

// Connect dials the server, upgrades to TLS and authenticates.
func (t *Transport) Connect() (Client, error) {
	const op = "smtp.Connect"
	log := t.log.With(slog.String("op", op))

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(t.cfg.Host, t.cfg.Port), dialTimeout)
	if err != nil {
		log.Error("failed to dial SMTP server", sl.Err(err))
		return nil, fmt.Errorf("%s: dial: %w", op, err)
	}

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		log.Error("failed to create SMTP client", sl.Err(err))
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, ErrNoStartTLS)
	}
	if err = client.StartTLS(&tls.Config{ServerName: t.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
		log.Error("failed to start TLS", sl.Err(err))
		_ = client.Close()
		return nil, fmt.Errorf("%s: starttls: %w", op, err)
	}

	if err = client.Auth(smtp.PlainAuth("", t.cfg.User, t.cfg.Password, t.cfg.Host)); err != nil {
		log.Error("smtp auth failed", sl.Err(err))
		_ = client.Close()
		return nil, fmt.Errorf("%s: auth: %w", op, err)
	}

	return client, nil
}

// GetSMTPUser returns the account used as the sender address.
func (t *Transport) GetSMTPUser() string {
	return t.cfg.User
}
