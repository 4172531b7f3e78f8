// SPDX-License-Identifier: Apache-2.0

package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func Test_NewConfig(t *testing.T) {
	t.Parallel()

	certPEM, keyPEM := newTestCertificate(t)
	dir := t.TempDir()
	certFile := filepath.Join(dir, "test.pem")
	keyFile := filepath.Join(dir, "test.key")
	require.NoError(t, os.WriteFile(certFile, certPEM, 0o600))
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0o600))

	systemCAs, err := x509.SystemCertPool()
	require.NoError(t, err)
	testCertPool := x509.NewCertPool()
	testCertPool.AppendCertsFromPEM(certPEM)
	testKeyPair, err := tls.X509KeyPair(certPEM, keyPEM)
	require.NoError(t, err)

	tests := []struct {
		name string
		cfg  *Config

		wantConfig *tls.Config
		wantErr    error
	}{
		{
			name: "ok - tls not enabled",
			cfg:  &Config{Enabled: false},
		},
		{
			name: "ok - tls enabled no certificates",
			cfg:  &Config{Enabled: true},

			wantConfig: &tls.Config{
				MinVersion:   tls.VersionTLS12,
				Certificates: []tls.Certificate{},
				RootCAs:      systemCAs,
			},
		},
		{
			name: "ok - CA certificate file",
			cfg:  &Config{Enabled: true, CaCertFile: certFile},

			wantConfig: &tls.Config{
				MinVersion:   tls.VersionTLS12,
				Certificates: []tls.Certificate{},
				RootCAs:      testCertPool,
			},
		},
		{
			name: "ok - inline client certificate",
			cfg:  &Config{Enabled: true, CaCertPEM: string(certPEM), ClientCertPEM: string(certPEM), ClientKeyFile: keyFile},

			wantConfig: &tls.Config{
				MinVersion:   tls.VersionTLS12,
				Certificates: []tls.Certificate{testKeyPair},
				RootCAs:      testCertPool,
			},
		},
		{
			name: "error - missing CA certificate file",
			cfg:  &Config{Enabled: true, CaCertFile: filepath.Join(dir, "doesnotexist.pem")},

			wantErr: os.ErrNotExist,
		},
		{
			name: "error - CA without certificates",
			cfg:  &Config{Enabled: true, CaCertPEM: "not a pem"},

			wantErr: ErrInvalidCACert,
		},
		{
			name: "error - client certificate without key",
			cfg:  &Config{Enabled: true, ClientCertFile: certFile},

			wantErr: ErrIncompleteClientKey,
		},
		{
			name: "error - missing client key file",
			cfg:  &Config{Enabled: true, ClientCertFile: certFile, ClientKeyFile: filepath.Join(dir, "doesnotexist.key")},

			wantErr: os.ErrNotExist,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tlsCfg, err := NewConfig(tc.cfg)
			require.ErrorIs(t, err, tc.wantErr)
			require.Empty(t, cmp.Diff(tc.wantConfig, tlsCfg, cmpopts.IgnoreUnexported(tls.Config{}, tls.Certificate{}))) //nolint:gosec
		})
	}
}

func Test_NewConfig_InvalidKeyPair(t *testing.T) {
	t.Parallel()

	certPEM, _ := newTestCertificate(t)
	_, err := NewConfig(&Config{Enabled: true, ClientCertPEM: string(certPEM), ClientKeyPEM: string(certPEM)})
	require.ErrorContains(t, err, "loading client key pair")
}

func newTestCertificate(t *testing.T) (certPEM, keyPEM []byte) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "commons-test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
}
