package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the PDF question-answering pipeline.
type Config struct {
	Extract   ExtractConfig   `yaml:"extract"`
	Chunk     ChunkConfig     `yaml:"chunk"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Generate  GenerateConfig  `yaml:"generate"`
}

// ExtractConfig holds PDF extraction and OCR configuration.
type ExtractConfig struct {
	// ScannedTextThreshold is the native character count below which a page
	// is treated as scanned and routed through OCR.
	ScannedTextThreshold int `yaml:"scanned_text_threshold"`
	// OCRLang is the tesseract language pack identifier, e.g. "hin+eng".
	OCRLang string `yaml:"ocr_lang"`
	// OCRTimeout bounds a single page's OCR run.
	OCRTimeout time.Duration `yaml:"ocr_timeout"`
	// Includes and Excludes filter files on directory ingest.
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// ChunkConfig holds chunking configuration.
type ChunkConfig struct {
	Size    int `yaml:"size"`    // maximum chunk length in runes
	Overlap int `yaml:"overlap"` // runes shared with the previous chunk
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "openai", "ollama", "mock"
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// IndexConfig holds vector index storage configuration.
type IndexConfig struct {
	// Dir is the durable index directory. The database file inside it is
	// opaque to callers.
	Dir string `yaml:"dir"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK int `yaml:"top_k"`
	// MinScore drops retrieved chunks below this similarity (0 disables).
	MinScore float64 `yaml:"min_score"`
}

// GenerateConfig holds generation model configuration.
type GenerateConfig struct {
	Provider    string        `yaml:"provider"` // "openai", "ollama", "mock"
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	APIKeyEnv   string        `yaml:"api_key_env"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	// ContextBudget is the estimated-token budget for retrieved context.
	ContextBudget int           `yaml:"context_budget"`
	Timeout       time.Duration `yaml:"timeout"`
	// QueueDepth bounds how many answer requests may wait on the model
	// before new ones fail fast.
	QueueDepth int `yaml:"queue_depth"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Extract: ExtractConfig{
			ScannedTextThreshold: 50,
			OCRLang:              "hin+eng",
			OCRTimeout:           2 * time.Minute,
			Includes:             []string{"**/*.pdf", "**/*.PDF"},
			Excludes:             []string{"**/.*/**"},
		},
		Chunk: ChunkConfig{
			Size:    800,
			Overlap: 200,
		},
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			Model:     "paraphrase-multilingual-minilm",
			BaseURL:   "http://localhost:11434/v1",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 384,
			BatchSize: 64,
		},
		Index: IndexConfig{
			Dir: ".pdfqa",
		},
		Retrieve: RetrieveConfig{
			TopK:     4,
			MinScore: 0,
		},
		Generate: GenerateConfig{
			Provider:      "ollama",
			Model:         "llama3.2:3b-instruct",
			BaseURL:       "http://localhost:11434/v1",
			APIKeyEnv:     "OPENAI_API_KEY",
			Temperature:   0.1,
			MaxTokens:     1024,
			ContextBudget: 3000,
			Timeout:       2 * time.Minute,
			QueueDepth:    4,
		},
	}
}

// Load loads configuration from a YAML file, then applies env overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for pdfqa.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "pdfqa.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	cfg := DefaultConfig()
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables on top of file values.
func (c *Config) applyEnv() {
	envInt("CHUNK_SIZE", &c.Chunk.Size)
	envInt("CHUNK_OVERLAP", &c.Chunk.Overlap)
	envInt("TOP_K", &c.Retrieve.TopK)
	envFloat("SCORE_THRESHOLD", &c.Retrieve.MinScore)
	envInt("CONTEXT_BUDGET", &c.Generate.ContextBudget)
	envDuration("GENERATION_TIMEOUT", &c.Generate.Timeout)
	envDuration("OCR_TIMEOUT", &c.Extract.OCRTimeout)
	envStr("OCR_LANG", &c.Extract.OCRLang)
	envStr("EMBEDDING_MODEL", &c.Embedding.Model)
	envStr("EMBEDDING_BASE_URL", &c.Embedding.BaseURL)
	envStr("LLM_MODEL", &c.Generate.Model)
	envStr("LLM_BASE_URL", &c.Generate.BaseURL)
	envStr("INDEX_DIR", &c.Index.Dir)
}

func envStr(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IndexDBPath returns the path to the vector index database.
func (c *Config) IndexDBPath() string {
	return filepath.Join(c.Index.Dir, "index.db")
}

// EnsureIndexDir ensures the index directory exists.
func (c *Config) EnsureIndexDir() error {
	return os.MkdirAll(c.Index.Dir, 0755)
}
