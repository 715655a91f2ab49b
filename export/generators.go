package export

import "fmt"

// GeneratorSet holds one generator per format. Dispatch is a switch over the
// Format enum, so a new format needs a field here and a case in For.
type GeneratorSet struct {
	CSV   Generator
	Excel Generator
	JSON  Generator
	// PDF is optional; a nil document generator degrades to structured data.
	PDF Generator
}

// DefaultGenerators returns the built-in generators. The document generator
// lives in adapters/pdf and must be supplied by the caller.
func DefaultGenerators() GeneratorSet {
	return GeneratorSet{
		CSV:   CSVRenderer{},
		Excel: XLSXRenderer{},
		JSON:  JSONRenderer{},
	}
}

// For returns the generator registered for format.
func (s GeneratorSet) For(format Format) (Generator, error) {
	switch format {
	case FormatCSV:
		return requireGenerator(s.CSV, format)
	case FormatExcel:
		return requireGenerator(s.Excel, format)
	case FormatJSON:
		return requireGenerator(s.JSON, format)
	case FormatPDF:
		if s.PDF == nil {
			return nil, NewError(KindDegraded, "document renderer not configured", nil)
		}
		return s.PDF, nil
	default:
		return nil, NewError(KindValidation, fmt.Sprintf("invalid format %q", format), nil).
			WithAllowed("format", FormatNames())
	}
}

func (s GeneratorSet) empty() bool {
	return s.CSV == nil && s.Excel == nil && s.JSON == nil && s.PDF == nil
}

func requireGenerator(gen Generator, format Format) (Generator, error) {
	if gen == nil {
		return nil, NewError(KindNotImpl, fmt.Sprintf("generator for %q not configured", format), nil)
	}
	return gen, nil
}
