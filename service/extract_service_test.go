package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDocExtractor struct {
	text     string
	err      error
	lastMime string
	lastData []byte
}

func (f *fakeDocExtractor) GenerateFromBytes(ctx context.Context, prompt, mimeType string, data []byte) (string, error) {
	f.lastMime = mimeType
	f.lastData = data
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func TestExtractPagesImageUsesMultimodalExtractor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(path, []byte("fake image bytes"), 0644))
	extractor := &fakeDocExtractor{text: "Invoice INV-001 total 120.50"}
	svc := NewExtractService(extractor)

	pages, err := svc.ExtractPages(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "Invoice INV-001 total 120.50", pages[0])
	assert.Equal(t, "image/png", extractor.lastMime)
	assert.Equal(t, []byte("fake image bytes"), extractor.lastData)
}

func TestExtractPagesUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0644))
	svc := NewExtractService(&fakeDocExtractor{text: "x"})

	_, err := svc.ExtractPages(context.Background(), path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestExtractPagesImageWithoutExtractor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.jpg")
	require.NoError(t, os.WriteFile(path, []byte("bytes"), 0644))
	svc := NewExtractService(nil)

	_, err := svc.ExtractPages(context.Background(), path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no multimodal extractor")
}

func TestExtractPagesEmptyOracleText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(path, []byte("bytes"), 0644))
	svc := NewExtractService(&fakeDocExtractor{text: "   "})

	_, err := svc.ExtractPages(context.Background(), path)

	require.Error(t, err)
}

func TestExtractPagesOracleError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(path, []byte("bytes"), 0644))
	svc := NewExtractService(&fakeDocExtractor{err: errors.New("quota exhausted")})

	_, err := svc.ExtractPages(context.Background(), path)

	require.Error(t, err)
}

func TestCleanText(t *testing.T) {
	got := cleanText("  Invoice\u0000 total\f120.50\r  ")

	assert.Equal(t, "Invoice total\n120.50", got)
}
