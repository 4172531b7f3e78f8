// SPDX-License-Identifier: Apache-2.0

package tls

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

type Config struct {
	// Enabled determines if TLS should be used. Defaults to false.
	Enabled bool
	// CA certificate, either as a PEM file path or as PEM content. The
	// system pool is used when neither is set.
	CaCertFile string
	CaCertPEM  string
	// Client certificate and key, as file paths or PEM contents. Both or
	// none must be set.
	ClientCertFile string
	ClientCertPEM  string
	ClientKeyFile  string
	ClientKeyPEM   string
}

var (
	ErrInvalidCACert       = errors.New("no certificate found in CA PEM")
	ErrIncompleteClientKey = errors.New("client certificate and key must be provided together")
)

// NewConfig returns nil when TLS is disabled.
func NewConfig(cfg *Config) (*tls.Config, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	certPool, err := getCertPool(cfg)
	if err != nil {
		return nil, err
	}

	certificates, err := getCertificates(cfg)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: certificates,
		RootCAs:      certPool,
	}, nil
}

func (c *Config) hasClientCert() bool {
	return c.ClientCertFile != "" || c.ClientCertPEM != ""
}

func (c *Config) hasClientKey() bool {
	return c.ClientKeyFile != "" || c.ClientKeyPEM != ""
}

func getCertPool(cfg *Config) (*x509.CertPool, error) {
	pemCertBytes, err := readPEMBytes(cfg.CaCertFile, cfg.CaCertPEM)
	if err != nil {
		return nil, fmt.Errorf("reading CA certificate: %w", err)
	}

	if len(pemCertBytes) == 0 {
		return x509.SystemCertPool()
	}

	certPool := x509.NewCertPool()
	if !certPool.AppendCertsFromPEM(pemCertBytes) {
		return nil, ErrInvalidCACert
	}
	return certPool, nil
}

func getCertificates(cfg *Config) ([]tls.Certificate, error) {
	switch {
	case !cfg.hasClientCert() && !cfg.hasClientKey():
		return []tls.Certificate{}, nil
	case cfg.hasClientCert() != cfg.hasClientKey():
		return nil, ErrIncompleteClientKey
	}

	pemCertBytes, err := readPEMBytes(cfg.ClientCertFile, cfg.ClientCertPEM)
	if err != nil {
		return nil, fmt.Errorf("reading client certificate: %w", err)
	}
	pemKeyBytes, err := readPEMBytes(cfg.ClientKeyFile, cfg.ClientKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("reading client key: %w", err)
	}
	cert, err := tls.X509KeyPair(pemCertBytes, pemKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("loading client key pair: %w", err)
	}
	return []tls.Certificate{cert}, nil
}

// readPEMBytes prefers the file over the inline PEM content.
func readPEMBytes(certFile, certPEM string) ([]byte, error) {
	if certFile != "" {
		return os.ReadFile(certFile)
	}
	return []byte(certPEM), nil
}
