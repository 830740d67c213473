package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiService talks to the Gemini API, rotating across keys when one is
// exhausted. It implements both Oracle and DocumentExtractor.
type GeminiService struct {
	apiKeys    []string
	currentKey int
	model      string
	client     *genai.Client
	mu         sync.Mutex
}

func NewGeminiService(apiKeys []string, model string) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("no Gemini API keys provided")
	}
	s := &GeminiService{
		apiKeys: apiKeys,
		model:   model,
	}
	if err := s.initClient(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *GeminiService) initClient() error {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %v", err)
	}
	if s.client != nil {
		s.client.Close()
	}
	s.client = client
	return nil
}

func (s *GeminiService) rotateAPIKey() error {
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	log.Printf("Rotating to Gemini API key #%d", s.currentKey)
	return s.initClient()
}

func (s *GeminiService) Generate(ctx context.Context, prompt, document string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := []genai.Part{
		genai.Text(prompt),
		genai.Text(document),
	}
	text, err := s.generateOnce(ctx, parts)
	if err != nil {
		if rerr := s.rotateAPIKey(); rerr != nil {
			return "", rerr
		}
		text, err = s.generateOnce(ctx, parts)
		if err != nil {
			return "", fmt.Errorf("failed to generate content: %v", err)
		}
	}
	return text, nil
}

// GenerateFromBytes sends raw document bytes alongside the prompt, used for
// scanned PDFs and images that have no extractable text layer.
func (s *GeminiService) GenerateFromBytes(ctx context.Context, prompt, mimeType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := []genai.Part{
		genai.Text(prompt),
		genai.Blob{MIMEType: mimeType, Data: data},
	}
	text, err := s.generateOnce(ctx, parts)
	if err != nil {
		if rerr := s.rotateAPIKey(); rerr != nil {
			return "", rerr
		}
		text, err = s.generateOnce(ctx, parts)
		if err != nil {
			return "", fmt.Errorf("failed to generate content: %v", err)
		}
	}
	return text, nil
}

func (s *GeminiService) generateOnce(ctx context.Context, parts []genai.Part) (string, error) {
	model := s.client.GenerativeModel(s.model)
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

func (s *GeminiService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		s.client.Close()
	}
}
