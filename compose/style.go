package compose

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	hexColorPattern   = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	fontFamilyPattern = regexp.MustCompile(`^[A-Za-z0-9 ,\-]+$`)
)

// StyleConfig is the immutable visual configuration of a document. Build
// it with DefaultStyle or NewStyle; it has no setters.
type StyleConfig struct {
	brand          string
	tagline        string
	fontFamily     string
	baseFontSize   float64
	headerFontSize float64
	primaryColor   string
	accentColor    string
	zebraColor     string
	footerText     string
}

// StyleOption customizes a StyleConfig under construction.
type StyleOption func(*StyleConfig)

// DefaultStyle returns the stock brand style.
func DefaultStyle() StyleConfig {
	return StyleConfig{
		brand:          "Impact Report",
		tagline:        "Data export",
		fontFamily:     "Helvetica, Arial, sans-serif",
		baseFontSize:   8,
		headerFontSize: 8.5,
		primaryColor:   "#1F4E79",
		accentColor:    "#E8EEF4",
		zebraColor:     "#F7F9FB",
		footerText:     "Confidential",
	}
}

// NewStyle applies opts over DefaultStyle. Invalid values are ignored.
func NewStyle(opts ...StyleOption) StyleConfig {
	style := DefaultStyle()
	for _, opt := range opts {
		if opt != nil {
			opt(&style)
		}
	}
	return style
}

// WithBrand sets the header brand name and tagline.
func WithBrand(name, tagline string) StyleOption {
	return func(s *StyleConfig) {
		if name = strings.TrimSpace(name); name != "" {
			s.brand = name
		}
		s.tagline = strings.TrimSpace(tagline)
	}
}

// WithFont sets the font family and the body and header sizes in points.
func WithFont(family string, base, header float64) StyleOption {
	return func(s *StyleConfig) {
		if family = strings.TrimSpace(family); fontFamilyPattern.MatchString(family) {
			s.fontFamily = family
		}
		if base > 0 {
			s.baseFontSize = base
		}
		if header > 0 {
			s.headerFontSize = header
		}
	}
}

// WithColors sets the primary, accent and zebra-stripe colors (#rrggbb).
func WithColors(primary, accent, zebra string) StyleOption {
	return func(s *StyleConfig) {
		if hexColorPattern.MatchString(primary) {
			s.primaryColor = primary
		}
		if hexColorPattern.MatchString(accent) {
			s.accentColor = accent
		}
		if hexColorPattern.MatchString(zebra) {
			s.zebraColor = zebra
		}
	}
}

// WithFooterText sets the text printed before the page number.
func WithFooterText(text string) StyleOption {
	return func(s *StyleConfig) {
		s.footerText = strings.TrimSpace(text)
	}
}

func (s StyleConfig) Brand() string           { return s.brand }
func (s StyleConfig) Tagline() string         { return s.tagline }
func (s StyleConfig) FontFamily() string      { return s.fontFamily }
func (s StyleConfig) BaseFontSize() float64   { return s.baseFontSize }
func (s StyleConfig) HeaderFontSize() float64 { return s.headerFontSize }
func (s StyleConfig) PrimaryColor() string    { return s.primaryColor }
func (s StyleConfig) AccentColor() string     { return s.accentColor }
func (s StyleConfig) ZebraColor() string      { return s.zebraColor }
func (s StyleConfig) FooterText() string      { return s.footerText }

// Footer returns the footer line for a page.
func (s StyleConfig) Footer(page, total int) string {
	label := fmt.Sprintf("Page %d of %d", page, total)
	if s.footerText == "" {
		return label
	}
	return s.footerText + " | " + label
}
