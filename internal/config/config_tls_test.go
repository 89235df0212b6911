package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tlsWithFiles(mode string) TLSConfig {
	return TLSConfig{
		Mode:     mode,
		CertFile: "testdata/server.crt",
		KeyFile:  "testdata/server.key",
	}
}

func TestValidateTLSMode(t *testing.T) {
	t.Run("disabled mode needs nothing", func(t *testing.T) {
		assert.NoError(t, validateTLSMode(TLSConfig{Mode: "disabled"}))
	})

	t.Run("server mode with cert and key", func(t *testing.T) {
		assert.NoError(t, validateTLSMode(tlsWithFiles("server")))
	})

	t.Run("mutual mode with CA", func(t *testing.T) {
		tls := tlsWithFiles("mutual")
		tls.CAFile = "testdata/ca.crt"
		assert.NoError(t, validateTLSMode(tls))
	})

	t.Run("unknown mode rejected", func(t *testing.T) {
		err := validateTLSMode(TLSConfig{Mode: "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid TLS mode: invalid")
	})
}

func TestValidateServerModeTLS(t *testing.T) {
	tests := []struct {
		name    string
		tls     TLSConfig
		wantErr string
	}{
		{
			name: "file-based cert and key",
			tls:  tlsWithFiles(""),
		},
		{
			name: "content-based cert and key",
			tls:  TLSConfig{CertContent: "PEM CERT", KeyContent: "PEM KEY"},
		},
		{
			name:    "key without cert",
			tls:     TLSConfig{KeyFile: "testdata/server.key"},
			wantErr: "TLS certificate and key are required for server mode",
		},
		{
			name:    "cert without key",
			tls:     TLSConfig{CertFile: "testdata/server.crt"},
			wantErr: "TLS certificate and key are required for server mode",
		},
		{
			name: "cert from both file and content",
			tls: TLSConfig{
				CertFile:    "testdata/server.crt",
				CertContent: "PEM CERT",
				KeyFile:     "testdata/server.key",
			},
			wantErr: "cannot specify both certFile and certContent",
		},
		{
			name: "key from both file and content",
			tls: TLSConfig{
				CertFile:   "testdata/server.crt",
				KeyFile:    "testdata/server.key",
				KeyContent: "PEM KEY",
			},
			wantErr: "cannot specify both keyFile and keyContent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateServerModeTLS(tt.tls)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateMutualModeTLS(t *testing.T) {
	validMutual := func() TLSConfig {
		tls := tlsWithFiles("")
		tls.CAFile = "testdata/ca.crt"
		return tls
	}

	tests := []struct {
		name    string
		tls     func() TLSConfig
		wantErr string
	}{
		{
			name: "file-based certs with CA",
			tls:  validMutual,
		},
		{
			name: "content-based certs with CA",
			tls: func() TLSConfig {
				return TLSConfig{CertContent: "PEM CERT", KeyContent: "PEM KEY", CAContent: "PEM CA"}
			},
		},
		{
			name: "explicit require policy",
			tls: func() TLSConfig {
				tls := validMutual()
				tls.ClientAuthPolicy = "require"
				return tls
			},
		},
		{
			name: "CA missing entirely",
			tls: func() TLSConfig {
				return tlsWithFiles("")
			},
			wantErr: "CA certificate is required for mutual TLS mode",
		},
		{
			name: "CA from both file and content",
			tls: func() TLSConfig {
				tls := validMutual()
				tls.CAContent = "PEM CA"
				return tls
			},
			wantErr: "cannot specify both caFile and caContent",
		},
		{
			name: "unknown client auth policy",
			tls: func() TLSConfig {
				tls := validMutual()
				tls.ClientAuthPolicy = "bogus"
				return tls
			},
			wantErr: "invalid clientAuthPolicy: bogus",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateMutualModeTLS(tt.tls())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateClientAuthPolicy(t *testing.T) {
	for _, policy := range []string{"require", "request", "verify", ""} {
		assert.NoError(t, validateClientAuthPolicy(TLSConfig{ClientAuthPolicy: policy}), "policy %q", policy)
	}
	assert.Error(t, validateClientAuthPolicy(TLSConfig{ClientAuthPolicy: "always"}))
}

func TestValidateTLSVersion(t *testing.T) {
	for _, version := range []string{"1.2", "1.3", ""} {
		assert.NoError(t, validateTLSVersion(TLSConfig{MinVersion: version}), "version %q", version)
	}
	for _, version := range []string{"1.0", "1.1", "latest"} {
		assert.Error(t, validateTLSVersion(TLSConfig{MinVersion: version}), "version %q", version)
	}
}

func TestValidateTLSConfigIntegration(t *testing.T) {
	t.Run("disabled mode passes", func(t *testing.T) {
		cfg := &Config{Server: ServerConfig{TLS: TLSConfig{Mode: "disabled"}}}
		assert.NoError(t, cfg.ValidateTLSConfig())
	})

	t.Run("server mode with old TLS version fails", func(t *testing.T) {
		tls := tlsWithFiles("server")
		tls.MinVersion = "1.1"
		cfg := &Config{Server: ServerConfig{TLS: tls}}
		assert.Error(t, cfg.ValidateTLSConfig())
	})

	t.Run("mutual mode with content passes", func(t *testing.T) {
		cfg := &Config{Server: ServerConfig{TLS: TLSConfig{
			Mode:        "mutual",
			CertContent: "PEM CERT",
			KeyContent:  "PEM KEY",
			CAContent:   "PEM CA",
			MinVersion:  "1.3",
		}}}
		assert.NoError(t, cfg.ValidateTLSConfig())
	})
}
