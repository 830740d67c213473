package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SanitizeFileName replaces characters outside [a-zA-Z0-9-_.] so uploads
// cannot escape the upload directory or produce awkward names.
func SanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, name)
}

// SaveUpload writes uploaded bytes into uploadDir under a timestamped,
// sanitized name and returns the destination path.
func SaveUpload(uploadDir, originalName string, data []byte) (string, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %v", err)
	}

	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(filepath.Base(originalName), ext)
	filename := SanitizeFileName(fmt.Sprintf("%s_%d%s", base, time.Now().Unix(), ext))
	destPath := filepath.Join(uploadDir, filename)

	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write uploaded file: %v", err)
	}
	return destPath, nil
}

// SaveExtractedText persists the extraction output for a document so it can
// be inspected without re-running the extractor.
func SaveExtractedText(dir, documentID, text string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create extracted text directory: %v", err)
	}
	outPath := filepath.Join(dir, fmt.Sprintf("%s_extracted.txt", documentID))
	if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to save extracted text: %v", err)
	}
	return outPath, nil
}
