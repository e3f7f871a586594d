// Package render holds the template helpers that display question text.
// Question prompts and options are opaque and may carry code snippets, so
// line breaks and leading indentation must survive HTML rendering.
package render

import (
	"html/template"
	"strings"
)

// Code escapes text and keeps its layout: each line's leading spaces become
// non-breaking spaces and newlines become <br>.
func Code(text string) template.HTML {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		content := strings.TrimLeft(line, " ")
		indent := len(line) - len(content)
		lines[i] = strings.Repeat("&nbsp;", indent) + template.HTMLEscapeString(content)
	}
	return template.HTML(strings.Join(lines, "<br>"))
}

// Multiline escapes text and turns newlines into <br>.
func Multiline(text string) template.HTML {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = template.HTMLEscapeString(line)
	}
	return template.HTML(strings.Join(lines, "<br>"))
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"code":      Code,
		"multiline": Multiline,
		"lower":     strings.ToLower,
		"inc":       func(i int) int { return i + 1 },
	}
}
