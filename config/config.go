package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string            `mapstructure:"port"`
	UploadDir        string            `mapstructure:"upload_dir"`
	ExtractedTextDir string            `mapstructure:"extracted_text_dir"`
	SampleFilePath   string            `mapstructure:"sample_file_path"`
	VendorDBPath     string            `mapstructure:"vendor_db_path"`
	AllowedOrigins   []string          `mapstructure:"allowed_origins"`
	Oracle           OracleConfig      `mapstructure:"oracle"`
	VectorStore      VectorStoreConfig `mapstructure:"vector_store"`
	Chunker          ChunkerConfig     `mapstructure:"chunker"`
	RetrievalTopK    int               `mapstructure:"retrieval_top_k"`
	Search           SearchConfig      `mapstructure:"search"`
}

type OracleConfig struct {
	Backend       string   `mapstructure:"backend"` // gemini or openai
	Model         string   `mapstructure:"model"`
	GeminiAPIKeys []string `mapstructure:"gemini_api_keys"`
	OpenAIBaseURL string   `mapstructure:"openai_base_url"`
	OpenAIAPIKey  string   `mapstructure:"OPENAI_API_KEY"`
}

type VectorStoreConfig struct {
	Backend  string              `mapstructure:"backend"` // weaviate or chroma
	Weaviate WeaviateStoreConfig `mapstructure:"weaviate"`
	Chroma   ChromaStoreConfig   `mapstructure:"chroma"`
}

type WeaviateStoreConfig struct {
	Host         string       `mapstructure:"host"`
	APIKey       string       `mapstructure:"WEAVIATE_APIKEY"`
	Text2Vec     string       `mapstructure:"text2vec"`
	ModuleConfig ModuleConfig `mapstructure:"module_config"`
}

type ChromaStoreConfig struct {
	URL        string `mapstructure:"url"`
	Collection string `mapstructure:"collection"`
}

type ChunkerConfig struct {
	ChunkSize int `mapstructure:"chunk_size"`
	Overlap   int `mapstructure:"overlap"`
}

type SearchConfig struct {
	APIKey   string `mapstructure:"GOOGLE_SEARCH_API_KEY"`
	EngineID string `mapstructure:"search_engine_id"`
}

type ModuleConfig map[string]interface{}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.BindEnv("GEMINI_API_KEYS")
	v.BindEnv("oracle.OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("vector_store.weaviate.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")
	v.BindEnv("search.GOOGLE_SEARCH_API_KEY", "GOOGLE_SEARCH_API_KEY")

	v.SetDefault("port", "8000")
	v.SetDefault("upload_dir", "temp_uploads")
	v.SetDefault("extracted_text_dir", "extracted_texts")
	v.SetDefault("sample_file_path", "samples/sample_invoice.pdf")
	v.SetDefault("vendor_db_path", "vendor_database.json")
	v.SetDefault("chunker.chunk_size", 1000)
	v.SetDefault("chunker.overlap", 200)
	v.SetDefault("retrieval_top_k", 2)
	v.SetDefault("oracle.backend", "gemini")
	v.SetDefault("oracle.model", "gemini-2.5-flash")
	v.SetDefault("vector_store.backend", "weaviate")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// GEMINI_API_KEYS is a comma separated list when set from the environment
	if envKeys := v.GetString("GEMINI_API_KEYS"); envKeys != "" {
		keys := strings.Split(envKeys, ",")
		config.Oracle.GeminiAPIKeys = config.Oracle.GeminiAPIKeys[:0]
		for _, key := range keys {
			if key = strings.TrimSpace(key); key != "" {
				config.Oracle.GeminiAPIKeys = append(config.Oracle.GeminiAPIKeys, key)
			}
		}
	}

	return &config, nil
}
