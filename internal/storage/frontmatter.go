// ABOUTME: File helpers for markdown storage: frontmatter, slugs, atomic writes.
package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

// splitFrontmatter separates a leading YAML block from the document body.
// It returns an empty YAML string when the document has no frontmatter.
func splitFrontmatter(doc string) (string, string) {
	if !strings.HasPrefix(doc, frontmatterDelim+"\n") {
		return "", doc
	}
	rest := doc[len(frontmatterDelim)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelim)
	if end < 0 {
		return "", doc
	}
	yamlStr := rest[:end]
	body := strings.TrimPrefix(rest[end+len(frontmatterDelim)+1:], "\n")
	return yamlStr, body
}

// renderFrontmatter serializes fm as YAML frontmatter followed by body.
func renderFrontmatter(fm interface{}, body string) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	return frontmatterDelim + "\n" + buf.String() + frontmatterDelim + "\n" + body, nil
}

// atomicWrite writes data to a temp file in the target directory and renames it.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	return os.Rename(tmpName, path)
}

// slugify lowercases s and collapses runs of non-alphanumerics into dashes.
func slugify(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(sb.String(), "-")
	if slug == "" {
		return "entry"
	}
	return slug
}
