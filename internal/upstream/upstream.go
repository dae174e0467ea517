// Package upstream hands transformed messages to the next SMTP hop.
package upstream

import (
	"crypto/tls"
	"io"
	"net"

	"github.com/certifi/gocertifi"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/pkg/errors"

	"github.com/danzipie/go-plain2html/internal/config"
)

// Forwarder delivers a serialized message to its recipients.
type Forwarder interface {
	// Forward relays a raw message using the given envelope.
	Forward(from string, to []string, r io.Reader) error

	// Name returns a human-readable name of the relay.
	Name() string
}

// SMTPForwarder relays messages to an upstream SMTP server, optionally
// over STARTTLS with SASL PLAIN authentication.
type SMTPForwarder struct {
	addr      string
	username  string
	password  string
	startTLS  bool
	tlsConfig *tls.Config
}

// NewSMTPForwarder creates a forwarder for the configured relay.
func NewSMTPForwarder(cfg config.UpstreamConfig) (*SMTPForwarder, error) {
	f := &SMTPForwarder{
		addr:     cfg.Addr,
		username: cfg.Username,
		password: cfg.Password,
		startTLS: cfg.StartTLS,
	}

	if cfg.StartTLS {
		pool, err := gocertifi.CACerts()
		if err != nil {
			return nil, errors.Wrap(err, "failed to load CA certificates")
		}
		host, _, err := net.SplitHostPort(cfg.Addr)
		if err != nil {
			return nil, errors.Wrap(err, "invalid upstream address")
		}
		f.tlsConfig = &tls.Config{
			RootCAs:    pool,
			ServerName: host,
			MinVersion: tls.VersionTLS12,
		}
	}
	return f, nil
}

// Forward implements Forwarder.Forward.
func (f *SMTPForwarder) Forward(from string, to []string, r io.Reader) error {
	var (
		c   *smtp.Client
		err error
	)
	if f.startTLS {
		c, err = smtp.DialStartTLS(f.addr, f.tlsConfig)
	} else {
		c, err = smtp.Dial(f.addr)
	}
	if err != nil {
		return errors.Wrap(err, "failed to dial upstream")
	}
	defer c.Close()

	if f.username != "" {
		if err := c.Auth(sasl.NewPlainClient("", f.username, f.password)); err != nil {
			return errors.Wrap(err, "upstream authentication failed")
		}
	}

	if err := c.Mail(from, nil); err != nil {
		return errors.Wrap(err, "MAIL command failed")
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt, nil); err != nil {
			return errors.Wrapf(err, "RCPT command failed for %s", rcpt)
		}
	}

	w, err := c.Data()
	if err != nil {
		return errors.Wrap(err, "DATA command failed")
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return errors.Wrap(err, "failed to write message data")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "failed to finish message data")
	}

	return c.Quit()
}

// Name implements Forwarder.Name.
func (f *SMTPForwarder) Name() string {
	return "smtp:" + f.addr
}
