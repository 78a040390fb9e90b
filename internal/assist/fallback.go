package assist

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/config"
	"github.com/bobmcallan/vire-folio/internal/interfaces"
	"github.com/bobmcallan/vire-folio/internal/models"
	"github.com/bobmcallan/vire-folio/internal/normalizer"
)

// FallbackParser tries Primary and consults Secondary only when Primary
// cannot interpret the file.
type FallbackParser struct {
	Primary   interfaces.Parser
	Secondary interfaces.Parser
	Logger    *common.Logger
}

// Parse implements interfaces.Parser. When both parsers fail the primary's
// error is returned.
func (f *FallbackParser) Parse(ctx context.Context, data []byte, filename string) (*models.ParseResult, error) {
	result, err := f.Primary.Parse(ctx, data, filename)
	if err == nil {
		return result, nil
	}

	var pe *normalizer.ParseError
	if !errors.As(err, &pe) || f.Secondary == nil {
		return nil, err
	}

	f.Logger.Info().Str("file", filename).Str("reason", pe.Reason).Msg("rule parser failed, trying assistant")

	result, secondErr := f.Secondary.Parse(ctx, data, filename)
	if secondErr != nil {
		f.Logger.Warn().Str("file", filename).Err(secondErr).Msg("assistant parser failed")
		return nil, err
	}
	return result, nil
}

// NewParser builds the parser chain selected by mode: "rules", "assist" or "auto".
func NewParser(ctx context.Context, mode string, cfg config.AssistConfig, rules *normalizer.Normalizer, logger *common.Logger) (interfaces.Parser, error) {
	switch mode {
	case "", "rules":
		return rules, nil
	case "assist", "auto":
		if cfg.APIKey == "" {
			if mode == "assist" {
				return nil, fmt.Errorf("import parser %q requires assist.api_key", mode)
			}
			logger.Warn().Msg("no assist.api_key configured; using rule parser only")
			return rules, nil
		}
		gen, err := NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		assistant := NewGeminiParser(gen, rules, cfg.SampleRows, logger)
		if mode == "assist" {
			return assistant, nil
		}
		return &FallbackParser{Primary: rules, Secondary: assistant, Logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown import parser %q", mode)
	}
}
