package pool

import (
	"fmt"

	"github.com/minedesk/minedesk/internal/config"
)

// New constructs the pool connector selected by configuration.
func New(cfg config.Config) (Client, error) {
	switch cfg.PoolProvider {
	case "luxor":
		return NewLuxorClient(cfg.LuxorAPIURL, cfg.LuxorAPIKey), nil
	case "binance":
		return NewBinanceClient(cfg.BinanceAPIURL, cfg.BinanceAPIKey, cfg.BinanceAPISecret), nil
	default:
		return nil, fmt.Errorf("unsupported pool provider %q", cfg.PoolProvider)
	}
}
