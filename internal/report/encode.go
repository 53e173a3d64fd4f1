package report

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Write renders r to w in the given format.
func Write(w io.Writer, format Format, r *Report, opts Options) error {
	switch format {
	case FormatText, "":
		return Text(w, r, opts)
	case FormatShort:
		return Short(w, r, opts)
	case FormatJSON:
		return JSON(w, r)
	case FormatYAML:
		return YAML(w, r)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// JSON writes v as indented JSON. It is used for reports and for the
// other structured outputs of the CLI.
func JSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func YAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
