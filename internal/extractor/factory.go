package extractor

import (
	"fmt"

	"sjsage522/pagewatch/config"
	apperrors "sjsage522/pagewatch/pkg/errors"
)

// CreateExtractor returns the extractor for the configured strategy
func CreateExtractor(cfg *config.Config) (Extractor, error) {
	switch cfg.Strategy {
	case config.StrategyLinks:
		return NewLinkSetExtractor(cfg.LinkDenylist), nil
	case config.StrategyHash:
		return NewHashExtractor(), nil
	case config.StrategyLatest:
		return NewLatestLinkExtractor(), nil
	default:
		return nil, apperrors.NewConfiguration(fmt.Sprintf("unknown strategy %q", cfg.Strategy), nil)
	}
}
