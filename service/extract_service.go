package service

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const transcribePromptFormat = `Transcribe ALL text content from page %d of this document.
Preserve the reading order. Return only the transcribed text, no commentary.`

var mimeTypesByExt = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// ExtractService turns uploaded invoice files into per-page text. Text-layer
// PDFs go through pdftotext; scanned pages and images fall back to the
// multimodal extractor.
type ExtractService struct {
	extractor DocumentExtractor
}

func NewExtractService(extractor DocumentExtractor) *ExtractService {
	return &ExtractService{extractor: extractor}
}

// ExtractPages returns the text of every page of the file, in order. Image
// files count as a single page.
func (s *ExtractService) ExtractPages(ctx context.Context, filePath string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext != ".pdf" {
		text, err := s.extractWithOracle(ctx, filePath, 1)
		if err != nil {
			return nil, err
		}
		return []string{text}, nil
	}

	totalPages, err := getNumPages(filePath)
	if err != nil {
		return nil, err
	}
	log.Println("Total pages: ", totalPages)

	pages := make([]string, 0, totalPages)
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		text, err := s.extractPage(ctx, filePath, pageNum)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", pageNum, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func (s *ExtractService) extractPage(ctx context.Context, filePath string, pageNumber int) (string, error) {
	text, err := extractTextWithPdftotext(filePath, pageNumber)
	if err != nil || text == "" {
		text, err = s.extractWithOracle(ctx, filePath, pageNumber)
		if err != nil {
			return "", fmt.Errorf("failed to extract text: %w", err)
		}
	}
	return cleanText(text), nil
}

// extractWithOracle ships the file bytes to the multimodal backend, used when
// there is no text layer to pull from.
func (s *ExtractService) extractWithOracle(ctx context.Context, filePath string, pageNumber int) (string, error) {
	if s.extractor == nil {
		return "", fmt.Errorf("no multimodal extractor configured")
	}
	log.Println("Try extracting with multimodal oracle")
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	mimeType, ok := mimeTypesByExt[strings.ToLower(filepath.Ext(filePath))]
	if !ok {
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(filePath))
	}
	prompt := fmt.Sprintf(transcribePromptFormat, pageNumber)
	text, err := s.extractor.GenerateFromBytes(ctx, prompt, mimeType, data)
	if err != nil {
		return "", err
	}
	if trimmed := strings.TrimSpace(text); len(trimmed) > 0 {
		return trimmed, nil
	}
	return "", fmt.Errorf("got nothing at page %d", pageNumber)
}

// extractTextWithPdftotext extracts a single page using the pdftotext utility
func extractTextWithPdftotext(filePath string, pageNumber int) (string, error) {
	log.Println("Try extracting with pdftotext")
	pdftotextCmd := exec.Command("pdftotext", "-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-enc", "UTF-8", "-nopgbrk",
		filePath, "-")
	var txtOut bytes.Buffer
	pdftotextCmd.Stdout = &txtOut

	if err := pdftotextCmd.Run(); err != nil {
		log.Printf("Error executing pdftotext command for page %d: %v", pageNumber, err)
	}
	pageText := txtOut.String()
	if trimmed := strings.TrimSpace(pageText); len(trimmed) > 0 {
		return trimmed, nil
	}
	return "", fmt.Errorf("got nothing at page %d", pageNumber)
}

// getNumPages uses pdfinfo to get the total number of pages in a PDF file
func getNumPages(pdfPath string) (int, error) {
	cmd := exec.Command("pdfinfo", pdfPath)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("error running pdfinfo: %v", err)
	}

	scanner := bufio.NewScanner(&out)
	re := regexp.MustCompile(`Pages:\s+(\d+)`)
	for scanner.Scan() {
		line := scanner.Text()
		if matches := re.FindStringSubmatch(line); len(matches) == 2 {
			return strconv.Atoi(matches[1])
		}
	}

	return 0, fmt.Errorf("unable to determine page count from pdfinfo")
}

func cleanText(text string) string {
	replacements := map[string]string{
		"\u0000": "",   // Null character
		"\ufffd": "",   // Unicode replacement character
		"\u001b": "",   // Escape character
		"\r":     "",   // Carriage return
		"\f":     "\n", // Form feed to newline
		"  ":     " ",  // Multiple spaces to single space
	}
	cleaned := text
	for old, new := range replacements {
		cleaned = strings.ReplaceAll(cleaned, old, new)
	}
	return strings.TrimSpace(cleaned)
}
