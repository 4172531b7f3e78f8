// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

var errInvalidURL = errors.New("invalid URL")

// ParseConfig retries with the password escaped when the URL can't be parsed
// as is, the way psql accepts unescaped special characters.
func ParseConfig(pgurl string) (*pgx.ConnConfig, error) {
	pgCfg, err := pgx.ParseConfig(pgurl)
	if err == nil {
		return pgCfg, nil
	}

	urlErr := &url.Error{}
	if !errors.As(err, &urlErr) {
		return nil, fmt.Errorf("failed parsing postgres connection string: %w", MapError(err))
	}
	escapedURL, err := escapeConnectionURL(pgurl)
	if err != nil {
		return nil, fmt.Errorf("failed to escape connection URL: %w", err)
	}
	return pgx.ParseConfig(escapedURL)
}

var postgresURLRegex = regexp.MustCompile(`^(postgres(?:ql)?://)([^@]+?)@(.+)$`)

func escapeConnectionURL(rawURL string) (string, error) {
	if !strings.HasPrefix(rawURL, "postgresql://") && !strings.HasPrefix(rawURL, "postgres://") {
		return rawURL, nil
	}

	matches := postgresURLRegex.FindStringSubmatch(rawURL)
	if matches == nil {
		return "", errInvalidURL
	}
	scheme, userInfo, hostAndPath := matches[1], matches[2], matches[3]

	// the password starts after the first colon, as in psql
	username, password, found := strings.Cut(userInfo, ":")
	if !found {
		return rawURL, nil
	}
	if username == "" {
		return "", errInvalidURL
	}

	// already escaped passwords must not be escaped twice
	if strings.Contains(password, "%") {
		if unescaped, err := url.PathUnescape(password); err == nil {
			password = unescaped
		}
	}

	return fmt.Sprintf("%s%s:%s@%s", scheme, username, url.QueryEscape(password), hostAndPath), nil
}

// configureTCPKeepalive bounds the connection setup to 90s and detects broken
// idle connections after about 150s (15s idle, then 9 probes 15s apart).
func configureTCPKeepalive(cfg *pgx.ConnConfig) {
	cfg.ConnectTimeout = 90 * time.Second

	cfg.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		d := &net.Dialer{
			Timeout: 90 * time.Second,
			KeepAliveConfig: net.KeepAliveConfig{
				Enable:   true,
				Idle:     15 * time.Second,
				Interval: 15 * time.Second,
				Count:    9,
			},
		}
		return d.DialContext(ctx, network, addr)
	}
}
