// Package config loads collation settings from TOML files.
//
// A configuration file has three optional tables:
//
//	[search]
//	max_expansions = 200000   # 0 = unbounded
//	timeout = "30s"           # empty or "0s" = no deadline
//
//	[output]
//	coalesce = true
//	format = "json"           # json, dot or svg
//
//	[import]
//	root = "//text"           # XPath selecting the witness text
//	case_fold = true
//
// Keys that are absent keep their [Default] values. Unknown keys are
// rejected so that typos do not go unnoticed.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/antchfx/xpath"

	"github.com/matzehuels/hypercollate/pkg/collate"
	hcerrors "github.com/matzehuels/hypercollate/pkg/errors"
	"github.com/matzehuels/hypercollate/pkg/witness"
	"github.com/matzehuels/hypercollate/pkg/witness/xmlwitness"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// Formats lists the supported output formats.
var Formats = []string{FormatJSON, FormatDOT, FormatSVG}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config holds all collation settings.
type Config struct {
	Search Search `toml:"search"`
	Output Output `toml:"output"`
	Import Import `toml:"import"`
}

// Search bounds the match search per witness.
type Search struct {
	MaxExpansions int      `toml:"max_expansions"`
	Timeout       Duration `toml:"timeout"`
}

// Output controls the produced graph and its format.
type Output struct {
	Coalesce bool   `toml:"coalesce"`
	Format   string `toml:"format"`
}

// Import controls how XML witnesses are read.
type Import struct {
	Root     string `toml:"root"`
	CaseFold bool   `toml:"case_fold"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Search: Search{MaxExpansions: collate.DefaultMaxExpansions},
		Output: Output{Coalesce: true, Format: FormatJSON},
		Import: Import{CaseFold: true},
	}
}

// Load reads a TOML file on top of Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, hcerrors.Wrap(hcerrors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(string(data))
}

// Parse decodes TOML text on top of Default and validates the result.
func Parse(text string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return nil, hcerrors.Wrap(hcerrors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, hcerrors.New(hcerrors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges, the output format and the XPath root.
func (c *Config) Validate() error {
	if c.Search.MaxExpansions < 0 {
		return hcerrors.New(hcerrors.ErrCodeInvalidConfig, "search.max_expansions must not be negative")
	}
	if c.Search.Timeout < 0 {
		return hcerrors.New(hcerrors.ErrCodeInvalidConfig, "search.timeout must not be negative")
	}
	if !slices.Contains(Formats, c.Output.Format) {
		return hcerrors.New(hcerrors.ErrCodeInvalidConfig, "output.format %q must be one of %s",
			c.Output.Format, strings.Join(Formats, ", "))
	}
	if c.Import.Root != "" {
		if _, err := xpath.Compile(c.Import.Root); err != nil {
			return hcerrors.Wrap(hcerrors.ErrCodeInvalidConfig, err, "import.root %q", c.Import.Root)
		}
	}
	return nil
}

// CollateOptions maps the search and output settings to collate.Options.
// A max_expansions of zero disables the cap.
func (c *Config) CollateOptions() collate.Options {
	maxExp := c.Search.MaxExpansions
	if maxExp == 0 {
		maxExp = -1
	}
	return collate.Options{
		MaxExpansions: maxExp,
		Timeout:       time.Duration(c.Search.Timeout),
		Coalesce:      c.Output.Coalesce,
	}
}

// ImportOptions maps the import settings to xmlwitness.Options.
func (c *Config) ImportOptions() xmlwitness.Options {
	norm := witness.NormalizeExact
	if c.Import.CaseFold {
		norm = witness.Normalize
	}
	return xmlwitness.Options{Root: c.Import.Root, Normalize: norm}
}
