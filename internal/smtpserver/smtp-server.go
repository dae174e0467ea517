// Package smtpserver exposes the processor as an SMTP submission proxy:
// every accepted message gets its HTML alternative attached before it is
// archived and handed to the upstream relay.
package smtpserver

import (
	"bytes"
	"errors"
	"io"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/danzipie/go-plain2html/internal/logger"
	"github.com/danzipie/go-plain2html/internal/processor"
	"github.com/danzipie/go-plain2html/internal/store"
	"github.com/danzipie/go-plain2html/internal/upstream"
)

// The Backend implements SMTP server methods.
type Backend struct {
	processor *processor.Processor
	forwarder upstream.Forwarder
	archive   store.MessageStore
	username  string
	password  string
}

// NewBackend creates a backend. Empty credentials disable AUTH.
func NewBackend(p *processor.Processor, f upstream.Forwarder, archive store.MessageStore, username, password string) *Backend {
	return &Backend{
		processor: p,
		forwarder: f,
		archive:   archive,
		username:  username,
		password:  password,
	}
}

// NewSession is called after client greeting (EHLO, HELO).
func (bkd *Backend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &Session{
		backend: bkd,
		auth:    bkd.username == "",
	}, nil
}

// A Session collects the envelope and transforms the submitted message.
type Session struct {
	backend *Backend
	from    string
	to      []string
	auth    bool
}

// AuthMechanisms returns a slice of available auth mechanisms; only
// PLAIN is supported.
func (s *Session) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

// Auth is the handler for supported authenticators.
func (s *Session) Auth(mech string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(identity, username, password string) error {
		if username != s.backend.username || password != s.backend.password {
			return errors.New("invalid username or password")
		}
		s.auth = true
		return nil
	}), nil
}

func (s *Session) Mail(from string, opts *smtp.MailOptions) error {
	if !s.auth {
		return smtp.ErrAuthRequired
	}
	s.from = from
	return nil
}

func (s *Session) Rcpt(to string, opts *smtp.RcptOptions) error {
	if !s.auth {
		return smtp.ErrAuthRequired
	}
	s.to = append(s.to, to)
	return nil
}

// Data transforms the submitted message and relays the result.
func (s *Session) Data(r io.Reader) error {
	if !s.auth {
		return smtp.ErrAuthRequired
	}
	logger.LogMessageReceived(s.from, s.to)

	msg, err := s.backend.processor.TransformReader(r)
	if err != nil {
		logger.LogError("failed to transform message", err, map[string]string{
			"from": s.from,
		})
		var typeErr *processor.MessageTypeError
		if errors.As(err, &typeErr) {
			return &smtp.SMTPError{
				Code:         554,
				EnhancedCode: smtp.EnhancedCode{5, 6, 1},
				Message:      "unsupported message structure",
			}
		}
		return err
	}
	logger.LogTransformed(s.from, msg.Header.Get("Subject"))

	var buf bytes.Buffer
	if err := msg.WriteTo(&buf); err != nil {
		logger.LogError("failed to serialize message", err, map[string]string{
			"from": s.from,
		})
		return err
	}

	if s.backend.archive != nil {
		if err := s.backend.archive.Add(s.from, buf.Bytes()); err != nil {
			// Archiving is best effort; delivery still proceeds.
			logger.LogError("failed to archive message", err, map[string]string{
				"from": s.from,
			})
		}
	}

	if err := s.backend.forwarder.Forward(s.from, s.to, bytes.NewReader(buf.Bytes())); err != nil {
		logger.LogError("failed to forward message", err, map[string]string{
			"from":     s.from,
			"upstream": s.backend.forwarder.Name(),
		})
		return err
	}
	logger.LogForwarded(s.from, s.to, s.backend.forwarder.Name())
	return nil
}

func (s *Session) Reset() {
	s.from = ""
	s.to = nil
}

func (s *Session) Logout() error {
	return nil
}

// Start starts the SMTP server with the given configuration.
func Start(addr, domain string, maxMessageSize int64, bkd *Backend) error {
	s := smtp.NewServer(bkd)
	s.Addr = addr
	s.Domain = domain
	s.MaxMessageBytes = maxMessageSize
	s.AllowInsecureAuth = true

	return s.ListenAndServe()
}
