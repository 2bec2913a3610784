package genetic

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ExportFormat specifies the output format for DNA export.
type ExportFormat string

const (
	FormatYAML ExportFormat = "yaml"
	FormatJSON ExportFormat = "json"
)

// ExportOptions configures DNA export behavior.
type ExportOptions struct {
	// Format specifies the output format (yaml or json)
	Format ExportFormat

	// PrettyPrint enables indented output (JSON only; YAML is always indented)
	PrettyPrint bool
}

// DefaultExportOptions returns the default export options.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format:      FormatYAML,
		PrettyPrint: true,
	}
}

// dnaDocument is the human-facing export form of a DNA snapshot.
type dnaDocument struct {
	SchemaVersion string      `json:"schema_version" yaml:"schema_version"`
	DNA           StrategyDNA `json:"dna" yaml:"dna"`
}

// Export serializes DNA to a human-editable document in the requested format.
func (s *Schema) Export(dna StrategyDNA, opts ExportOptions) ([]byte, error) {
	doc := dnaDocument{SchemaVersion: DNASchemaVersion, DNA: dna}

	switch opts.Format {
	case FormatJSON:
		if opts.PrettyPrint {
			return json.MarshalIndent(doc, "", "  ")
		}
		return json.Marshal(doc)
	case FormatYAML, "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode dna as yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to finalize yaml output: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", opts.Format)
	}
}

// Import parses a document produced by Export, auto-detecting JSON vs YAML,
// and returns the DNA together with any validation violations found. The DNA
// is returned as parsed; callers decide whether to Clamp or discard on
// violations.
func (s *Schema) Import(data []byte) (StrategyDNA, ValidationErrors, error) {
	var doc dnaDocument

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(data, &doc); err != nil {
			return StrategyDNA{}, nil, fmt.Errorf("failed to parse dna document as json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return StrategyDNA{}, nil, fmt.Errorf("failed to parse dna document as yaml: %w", err)
		}
	}

	if doc.SchemaVersion == "" {
		return StrategyDNA{}, nil, fmt.Errorf("dna document is missing schema_version")
	}

	return doc.DNA, s.Validate(doc.DNA), nil
}
