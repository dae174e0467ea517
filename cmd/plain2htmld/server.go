package main

import (
	"github.com/danzipie/go-plain2html/internal/config"
	"github.com/danzipie/go-plain2html/internal/processor"
	"github.com/danzipie/go-plain2html/internal/render"
	"github.com/danzipie/go-plain2html/internal/smtpserver"
	"github.com/danzipie/go-plain2html/internal/store"
	"github.com/danzipie/go-plain2html/internal/upstream"
)

// ProxyServer ties the processor, archive and upstream relay together
// behind the listening SMTP server.
type ProxyServer struct {
	config  *config.Config
	backend *smtpserver.Backend
	archive store.MessageStore
}

// NewProxyServer assembles a server from a validated configuration.
func NewProxyServer(cfg *config.Config) (*ProxyServer, error) {
	var (
		archive store.MessageStore
		err     error
	)
	if cfg.Archive.Dir != "" {
		archive, err = store.NewDirStore(cfg.Archive.Dir)
		if err != nil {
			return nil, err
		}
	} else {
		archive = store.NewInMemoryStore()
	}

	forwarder, err := upstream.NewSMTPForwarder(cfg.Upstream)
	if err != nil {
		return nil, err
	}

	renderer := render.Text()
	if cfg.Render.Markdown {
		renderer = render.Markdown()
	}
	p := processor.New(renderer, cfg.Render.Allow8Bit)

	backend := smtpserver.NewBackend(p, forwarder, archive, cfg.SMTP.Username, cfg.SMTP.Password)

	return &ProxyServer{
		config:  cfg,
		backend: backend,
		archive: archive,
	}, nil
}

// Start runs the SMTP server until it fails.
func (s *ProxyServer) Start() error {
	return smtpserver.Start(s.config.SMTP.Listen, s.config.SMTP.Domain,
		s.config.SMTP.MaxMessageSize, s.backend)
}

// Stop releases the server resources.
func (s *ProxyServer) Stop() error {
	return s.archive.Close()
}
