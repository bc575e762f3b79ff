package config

import (
	"fmt"

	"github.com/cognicore/tagassoc/pkg/tagassoc/ingest"
	"github.com/cognicore/tagassoc/pkg/tagassoc/pmi"
)

// Components holds the objects built from a Config.
type Components struct {
	Tokenizer  *ingest.Tokenizer
	Calculator *pmi.Calculator
}

// Components builds the tokenizer and score calculator a Config describes.
func (c Config) Components() (*Components, error) {
	tok := ingest.NewTokenizer(c.IgnoreTags)
	tok.SetLowercase(c.Lowercase)
	if c.IgnoreFile != "" {
		il, err := LoadIgnoreList(c.IgnoreFile)
		if err != nil {
			return nil, fmt.Errorf("load ignore list: %w", err)
		}
		for _, term := range il.Terms {
			tok.Ignore(term)
		}
	}

	f, err := pmi.ParseFormula(c.Formula)
	if err != nil {
		return nil, fmt.Errorf("formula: %w", err)
	}

	return &Components{
		Tokenizer:  tok,
		Calculator: pmi.NewCalculator(f),
	}, nil
}
