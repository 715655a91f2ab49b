package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-impact-export/compose"
	"github.com/goliatone/go-impact-export/layout"
	"gopkg.in/yaml.v3"
)

// Config holds the export daemon configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Export   ExportConfig   `yaml:"export"`
	Database DatabaseConfig `yaml:"database"`
	PDF      PDFConfig      `yaml:"pdf"`
	Style    StyleConfig    `yaml:"style"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	BasePath     string `yaml:"base_path"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// ExportConfig holds value formatting settings shared by every format.
type ExportConfig struct {
	Timezone     string `yaml:"timezone"`
	CSVDelimiter string `yaml:"csv_delimiter"`
}

// DatabaseConfig selects the dataset source. A DSN wins over Fixtures.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Fixtures string `yaml:"fixtures"`
	MaxRows  int    `yaml:"max_rows"`
	// Migrate creates the entity tables on start.
	Migrate bool `yaml:"migrate"`
}

// PDFConfig holds document rendering settings.
type PDFConfig struct {
	Enabled         bool     `yaml:"enabled"`
	Engine          string   `yaml:"engine"`
	ChromiumPath    string   `yaml:"chromium_path"`
	Headless        bool     `yaml:"headless"`
	Args            []string `yaml:"args"`
	WKHTMLTOPDFPath string   `yaml:"wkhtmltopdf_path"`
	// Timeout is in seconds.
	Timeout             int     `yaml:"timeout"`
	Scale               float64 `yaml:"scale"`
	PrintBackground     bool    `yaml:"print_background"`
	BaseURL             string  `yaml:"base_url"`
	BlockExternalAssets bool    `yaml:"block_external_assets"`
	Orientation         string  `yaml:"orientation"`
	AllPages            bool    `yaml:"all_pages"`
	MaxHTMLBytes        int64   `yaml:"max_html_bytes"`

	Geometry *layout.Geometry `yaml:"geometry,omitempty"`
}

// StyleConfig holds the document brand settings.
type StyleConfig struct {
	Brand          string  `yaml:"brand"`
	Tagline        string  `yaml:"tagline"`
	FontFamily     string  `yaml:"font_family"`
	BaseFontSize   float64 `yaml:"base_font_size"`
	HeaderFontSize float64 `yaml:"header_font_size"`
	PrimaryColor   string  `yaml:"primary_color"`
	AccentColor    string  `yaml:"accent_color"`
	ZebraColor     string  `yaml:"zebra_color"`
	FooterText     string  `yaml:"footer_text"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// LogConfig configures the daemon logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// PDF engine names.
const (
	EngineChromium    = "chromium"
	EngineWKHTMLTOPDF = "wkhtmltopdf"
	EngineChain       = "chain"
)

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	style := compose.DefaultStyle()
	return Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			BasePath:     "/api/exports",
			MaxBodyBytes: 10 * 1024 * 1024,
		},
		Export: ExportConfig{
			Timezone:     "UTC",
			CSVDelimiter: ",",
		},
		Database: DatabaseConfig{
			MaxRows: 50000,
		},
		PDF: PDFConfig{
			Enabled:         true,
			Engine:          EngineChain,
			Headless:        true,
			Timeout:         30,
			Scale:           1,
			PrintBackground: true,
			Orientation:     "landscape",
			MaxHTMLBytes:    8 * 1024 * 1024,
		},
		Style: StyleConfig{
			Brand:          style.Brand(),
			Tagline:        style.Tagline(),
			FontFamily:     style.FontFamily(),
			BaseFontSize:   style.BaseFontSize(),
			HeaderFontSize: style.HeaderFontSize(),
			PrimaryColor:   style.PrimaryColor(),
			AccentColor:    style.AccentColor(),
			ZebraColor:     style.ZebraColor(),
			FooterText:     style.FooterText(),
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "impact",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load returns Defaults overlaid with the YAML file at path (when given)
// and then with EXPORT_* environment variables.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := cfg.Decode(f); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Decode overlays YAML from r onto cfg. Unknown keys are rejected.
func (c *Config) Decode(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// LookupFunc reads an environment variable.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg from environment variables read through lookup.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}
	env := envReader{lookup: lookup}

	env.strVar("HOST", &c.Server.Host)
	env.strVar("PORT", &c.Server.Port)
	env.strVar("EXPORT_BASE_PATH", &c.Server.BasePath)
	env.int64Var("EXPORT_MAX_BODY_BYTES", &c.Server.MaxBodyBytes)

	env.strVar("EXPORT_TIMEZONE", &c.Export.Timezone)
	env.strVar("EXPORT_CSV_DELIMITER", &c.Export.CSVDelimiter)

	env.strVar("EXPORT_DB_DSN", &c.Database.DSN)
	env.strVar("EXPORT_FIXTURES", &c.Database.Fixtures)
	env.intVar("EXPORT_MAX_ROWS", &c.Database.MaxRows)
	env.boolVar("EXPORT_DB_MIGRATE", &c.Database.Migrate)

	env.boolVar("EXPORT_PDF_ENABLED", &c.PDF.Enabled)
	env.strVar("EXPORT_PDF_ENGINE", &c.PDF.Engine)
	env.strVar("EXPORT_PDF_CHROMIUM_PATH", &c.PDF.ChromiumPath)
	env.boolVar("EXPORT_PDF_HEADLESS", &c.PDF.Headless)
	env.listVar("EXPORT_PDF_CHROMIUM_ARGS", &c.PDF.Args)
	env.strVar("EXPORT_WKHTMLTOPDF_PATH", &c.PDF.WKHTMLTOPDFPath)
	env.intVar("EXPORT_PDF_TIMEOUT", &c.PDF.Timeout)
	env.floatVar("EXPORT_PDF_SCALE", &c.PDF.Scale)
	env.boolVar("EXPORT_PDF_PRINT_BACKGROUND", &c.PDF.PrintBackground)
	env.strVar("EXPORT_PDF_BASE_URL", &c.PDF.BaseURL)
	env.boolVar("EXPORT_PDF_BLOCK_EXTERNAL_ASSETS", &c.PDF.BlockExternalAssets)
	env.strVar("EXPORT_PDF_ORIENTATION", &c.PDF.Orientation)
	env.boolVar("EXPORT_PDF_ALL_PAGES", &c.PDF.AllPages)

	env.strVar("EXPORT_STYLE_BRAND", &c.Style.Brand)
	env.strVar("EXPORT_STYLE_TAGLINE", &c.Style.Tagline)
	env.strVar("EXPORT_STYLE_FOOTER", &c.Style.FooterText)

	env.boolVar("EXPORT_METRICS_ENABLED", &c.Metrics.Enabled)
	env.strVar("EXPORT_METRICS_PATH", &c.Metrics.Path)

	env.strVar("EXPORT_LOG_LEVEL", &c.Log.Level)
	env.strVar("EXPORT_LOG_FORMAT", &c.Log.Format)

	return env.err
}

type envReader struct {
	lookup LookupFunc
	err    error
}

func (e *envReader) value(key string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	raw, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func (e *envReader) fail(key, raw string, err error) {
	e.err = fmt.Errorf("env %s=%q: %w", key, raw, err)
}

func (e *envReader) strVar(key string, dst *string) {
	if raw, ok := e.value(key); ok {
		*dst = raw
	}
}

func (e *envReader) listVar(key string, dst *[]string) {
	raw, ok := e.value(key)
	if !ok {
		return
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func (e *envReader) boolVar(key string, dst *bool) {
	raw, ok := e.value(key)
	if !ok {
		return
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		e.fail(key, raw, err)
		return
	}
	*dst = parsed
}

func (e *envReader) intVar(key string, dst *int) {
	raw, ok := e.value(key)
	if !ok {
		return
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		e.fail(key, raw, err)
		return
	}
	*dst = parsed
}

func (e *envReader) int64Var(key string, dst *int64) {
	raw, ok := e.value(key)
	if !ok {
		return
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		e.fail(key, raw, err)
		return
	}
	*dst = parsed
}

func (e *envReader) floatVar(key string, dst *float64) {
	raw, ok := e.value(key)
	if !ok {
		return
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		e.fail(key, raw, err)
		return
	}
	*dst = parsed
}

// Validate rejects settings the daemon cannot start with.
func (c Config) Validate() error {
	if c.Export.Timezone != "" {
		if _, err := time.LoadLocation(c.Export.Timezone); err != nil {
			return fmt.Errorf("export.timezone: %w", err)
		}
	}
	if c.Export.CSVDelimiter != "" && utf8.RuneCountInString(c.Export.CSVDelimiter) != 1 {
		return fmt.Errorf("export.csv_delimiter must be a single character")
	}
	switch c.PDF.Engine {
	case "", EngineChromium, EngineWKHTMLTOPDF, EngineChain:
	default:
		return fmt.Errorf("pdf.engine %q must be one of %s, %s, %s", c.PDF.Engine, EngineChromium, EngineWKHTMLTOPDF, EngineChain)
	}
	switch strings.ToLower(c.PDF.Orientation) {
	case "", "landscape", "portrait":
	default:
		return fmt.Errorf("pdf.orientation %q must be landscape or portrait", c.PDF.Orientation)
	}
	if c.PDF.Timeout < 0 {
		return fmt.Errorf("pdf.timeout must not be negative")
	}
	if c.Database.MaxRows < 0 {
		return fmt.Errorf("database.max_rows must not be negative")
	}
	if g := c.PDF.Geometry; g != nil && (g.PageWidth != 0 || g.PageHeight != 0) && !g.Valid() {
		return fmt.Errorf("pdf.geometry page size must be positive and at most %.0f points", layout.MaxPageDimension)
	}
	return nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Delimiter returns the CSV delimiter rune, defaulting to a comma.
func (c Config) Delimiter() rune {
	if r, _ := utf8.DecodeRuneInString(c.Export.CSVDelimiter); r != utf8.RuneError {
		return r
	}
	return ','
}

// PDFTimeout returns the engine timeout.
func (c Config) PDFTimeout() time.Duration {
	return time.Duration(c.PDF.Timeout) * time.Second
}

// Geometry returns the page geometry: an explicit geometry block wins,
// otherwise A4 in the configured orientation.
func (c Config) Geometry() layout.Geometry {
	if c.PDF.Geometry != nil {
		return c.PDF.Geometry.WithDefaults()
	}
	if strings.EqualFold(c.PDF.Orientation, "portrait") {
		return layout.A4Portrait()
	}
	return layout.A4Landscape()
}

// ComposeStyle builds the immutable document style.
func (c Config) ComposeStyle() compose.StyleConfig {
	s := c.Style
	return compose.NewStyle(
		compose.WithBrand(s.Brand, s.Tagline),
		compose.WithFont(s.FontFamily, s.BaseFontSize, s.HeaderFontSize),
		compose.WithColors(s.PrimaryColor, s.AccentColor, s.ZebraColor),
		compose.WithFooterText(s.FooterText),
	)
}
