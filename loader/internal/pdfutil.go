package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// pdfcpu exposes raw page content streams rather than assembled text,
// so the string literals are pulled out of the Tj/TJ show operators.
var pdfStringRe = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)

// ExtractPlainText pulls the visible text out of a PDF, page by page.
func ExtractPlainText(path string) (string, error) {
	tmp, err := os.MkdirTemp("", "courserag-pdf")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmp)

	conf := api.LoadConfiguration()
	if err := api.ExtractContentFile(path, tmp, nil, conf); err != nil {
		return "", fmt.Errorf("failed to extract PDF content: %w", err)
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(tmp, name))
		if err != nil {
			return "", err
		}
		sb.WriteString(decodeContentStream(string(data)))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func decodeContentStream(stream string) string {
	var sb strings.Builder
	for _, m := range pdfStringRe.FindAllStringSubmatch(stream, -1) {
		sb.WriteString(unescapePDFString(m[1]))
		sb.WriteString(" ")
	}
	return sb.String()
}

var pdfEscapes = strings.NewReplacer(
	`\(`, "(",
	`\)`, ")",
	`\\`, `\`,
	`\n`, "\n",
	`\r`, "",
	`\t`, " ",
)

func unescapePDFString(s string) string {
	return pdfEscapes.Replace(s)
}
