package main

import (
	"testing"

	"github.com/danzipie/go-plain2html/internal/config"
)

func TestNewProxyServer(t *testing.T) {
	cfg := &config.Config{}
	cfg.SMTP.Listen = "localhost:1025"
	cfg.SMTP.Domain = "localhost"
	cfg.SMTP.MaxMessageSize = 1 << 20
	cfg.Upstream.Addr = "relay.example.com:25"
	cfg.Render.Markdown = true

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	server, err := NewProxyServer(cfg)
	if err != nil {
		t.Fatalf("failed to create proxy server: %v", err)
	}
	if server.config == nil {
		t.Error("server config is nil")
	}
	if server.backend == nil {
		t.Error("server backend is nil")
	}
	if server.archive == nil {
		t.Error("message archive is nil")
	}
}

func TestNewProxyServerWithArchiveDir(t *testing.T) {
	cfg := &config.Config{}
	cfg.SMTP.Listen = "localhost:1025"
	cfg.SMTP.Domain = "localhost"
	cfg.SMTP.MaxMessageSize = 1 << 20
	cfg.Upstream.Addr = "relay.example.com:25"
	cfg.Archive.Dir = t.TempDir()

	server, err := NewProxyServer(cfg)
	if err != nil {
		t.Fatalf("failed to create proxy server: %v", err)
	}
	if err := server.Stop(); err != nil {
		t.Errorf("failed to stop server: %v", err)
	}
}
