package parser

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Language represents a supported source language.
type Language int

const (
	// LanguageTypeScript represents TypeScript (.ts, .tsx files)
	LanguageTypeScript Language = iota
	// LanguageJavaScript represents JavaScript (.js, .jsx files), including Flow-annotated sources
	LanguageJavaScript
	// LanguageUnknown represents an unsupported language
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// DetectLanguage detects the language from a file path.
// Returns LanguageUnknown if the file extension is not recognized.
func DetectLanguage(filePath string) Language {
	return languageForExtension(strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), "."))
}

// DetectMediaType maps a content media type to a language. The extension
// (without the dot) is consulted when the media type is empty or generic.
//
// Recognized media types are application/javascript, text/javascript,
// text/jsx, text/typescript and text/tsx.
func DetectMediaType(mediaType, extension string) Language {
	switch strings.ToLower(mediaType) {
	case "application/javascript", "text/javascript", "text/jsx":
		return LanguageJavaScript
	case "application/typescript", "text/typescript", "text/tsx":
		return LanguageTypeScript
	}
	return languageForExtension(strings.TrimPrefix(strings.ToLower(extension), "."))
}

func languageForExtension(ext string) Language {
	switch ext {
	case "ts", "mts", "cts", "tsx":
		return LanguageTypeScript
	case "js", "jsx", "mjs", "cjs":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}

// IsTSXFile checks if a file path represents a TSX file.
// TSX files use the TypeScript grammar with JSX support enabled.
func IsTSXFile(filePath string) bool {
	return strings.ToLower(filepath.Ext(filePath)) == ".tsx"
}

// IsFlowSource reports whether source carries a @flow or @noflow pragma in
// its leading comments. Flow annotations are parsed with the TSX grammar.
func IsFlowSource(source []byte) bool {
	head := source
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte("@flow")) || bytes.Contains(head, []byte("@noflow"))
}

// ParseLanguageString converts a language string to a Language type.
// Returns LanguageUnknown if the string is not recognized.
func ParseLanguageString(lang string) Language {
	switch strings.ToLower(lang) {
	case "typescript", "ts":
		return LanguageTypeScript
	case "javascript", "js", "flow":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}
