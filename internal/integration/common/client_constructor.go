package common

import (
	"fmt"

	"github.com/futig/issue-assistant/internal/config"
	pkgHTTP "github.com/futig/issue-assistant/pkg/http"
	"go.uber.org/zap"
)

const userAgent = "issue-assistant/1.0"

func NewBaseConnector(cfg config.HTTPClientConfig, source pkgHTTP.TokenSource, logger *zap.Logger) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	return pkgHTTP.NewConnector(
		connCfg,
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithUserAgent(userAgent),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithTokenSource(source),
	)
}

// NewTokenSource picks key-pair JWT authentication when a private key is configured,
// otherwise the static token with its configured type.
func NewTokenSource(cfg config.SnowflakeConfig) (pkgHTTP.TokenSource, error) {
	if cfg.PrivateKeyPath == "" {
		return pkgHTTP.StaticToken{Value: cfg.Token, Type: cfg.TokenType}, nil
	}

	source, err := NewKeyPairTokenSourceFromFile(cfg.Account, cfg.User, cfg.PrivateKeyPath, cfg.JWTLifetime)
	if err != nil {
		return nil, fmt.Errorf("key-pair auth: %w", err)
	}
	return source, nil
}
