package utils

import "strings"

const (
	// PreviewLength is the number of characters kept by Preview.
	PreviewLength           = 150
	previewEllipsisConstant = "..."
	previewNewlineConstant  = "\n"
	previewEscapedNewline   = `\n`
	previewNullConstant     = "\x00"
	previewEscapedNull      = `\0`
)

var previewReplacer = strings.NewReplacer(previewNewlineConstant, previewEscapedNewline, previewNullConstant, previewEscapedNull)

// Preview shortens text to PreviewLength characters for log fields, escaping newlines and NUL
// separators so a preview stays on one line.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLength {
		return previewReplacer.Replace(text)
	}
	return previewReplacer.Replace(string(runes[:PreviewLength])) + previewEllipsisConstant
}
