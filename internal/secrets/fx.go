package secrets

import (
	"github.com/smallbiznis/quotient/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("secrets",
	fx.Provide(Provide),
)

// Provide builds the Box from the configured key. Without a configured key a
// random one is generated; sealed values then survive only until restart.
func Provide(cfg config.Config, log *zap.Logger) (*Box, error) {
	key := cfg.EncryptionKey
	if key == "" {
		generated, err := GenerateKey()
		if err != nil {
			return nil, err
		}
		key = generated
		log.Warn("no encryption key configured, generated an ephemeral one; set ENCRYPTION_KEY to keep stored credentials readable across restarts")
	}
	return NewBox(key)
}
