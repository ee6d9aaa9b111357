package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gitplumb/internal/utils"
)

type outputFormat string

const (
	outputFormatText outputFormat = "text"
	outputFormatYAML outputFormat = "yaml"
)

const (
	headingTemplateConstant          = "%s (%d)"
	yamlEncodeErrorTemplateConstant  = "unable to encode %s as yaml: %w"
	yamlIndentationConstant          = 2
	headingForegroundConstant        = "12"
	outputWriteErrorTemplateConstant = "unable to write %s: %w"
)

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(headingForegroundConstant))

// recordRenderer writes command results to standard output in the selected format.
type recordRenderer struct {
	format outputFormat
	writer *utils.FlushingWriter
}

func newRecordRenderer(format string, destination io.Writer) recordRenderer {
	return recordRenderer{format: outputFormat(format), writer: utils.NewFlushingWriter(destination)}
}

func (renderer recordRenderer) value(name string, value any, text string) error {
	if renderer.format == outputFormatYAML {
		return renderer.yaml(name, value)
	}
	if writeError := renderer.writer.WriteLine(text); writeError != nil {
		return fmt.Errorf(outputWriteErrorTemplateConstant, name, writeError)
	}
	return nil
}

func (renderer recordRenderer) yaml(name string, value any) error {
	encoder := yaml.NewEncoder(renderer.writer)
	encoder.SetIndent(yamlIndentationConstant)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return fmt.Errorf(yamlEncodeErrorTemplateConstant, name, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(yamlEncodeErrorTemplateConstant, name, closeError)
	}
	return nil
}

// renderRecords writes records under a heading in text mode, or as a YAML sequence.
func renderRecords[T any](renderer recordRenderer, heading string, records []T, textLine func(T) string) error {
	if renderer.format == outputFormatYAML {
		return renderer.yaml(heading, records)
	}
	if writeError := renderer.writer.WriteLine(headingStyle.Render(fmt.Sprintf(headingTemplateConstant, heading, len(records)))); writeError != nil {
		return fmt.Errorf(outputWriteErrorTemplateConstant, heading, writeError)
	}
	for _, record := range records {
		if writeError := renderer.writer.WriteLine(textLine(record)); writeError != nil {
			return fmt.Errorf(outputWriteErrorTemplateConstant, heading, writeError)
		}
	}
	return nil
}
