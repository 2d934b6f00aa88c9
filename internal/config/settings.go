package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings is the runtime configuration. Defaults come from the constants in
// environmentVariables.go, then an optional YAML file, then the environment.
type Settings struct {
	ListenAddr string `yaml:"listen_addr"`
	LogLevel   string `yaml:"log_level"`
	LogFile    string `yaml:"log_file"`

	LLMProvider       string `yaml:"llm_provider"`
	EmbeddingProvider string `yaml:"embedding_provider"`
	OpenAIKey         string `yaml:"-"`
	GoogleKey         string `yaml:"-"`
	ChatModel         string `yaml:"chat_model"`
	EmbeddingModel    string `yaml:"embedding_model"`

	QdrantHost   string `yaml:"qdrant_host"`
	QdrantPort   int    `yaml:"qdrant_port"`
	QdrantAPIKey string `yaml:"-"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"-"`

	DocsRoot        string `yaml:"docs_root"`
	CredentialsFile string `yaml:"credentials_file"`
	AdminUser       string `yaml:"admin_user"`
	NoAuthBypass    bool   `yaml:"no_auth_bypass"`

	ChunkSize               int     `yaml:"chunk_size"`
	ChunkOverlap            int     `yaml:"chunk_overlap"`
	RetrievalTopK           int     `yaml:"retrieval_top_k"`
	RetrievalScoreThreshold float32 `yaml:"retrieval_score_threshold"`
	HistoryTokenBudget      int     `yaml:"history_token_budget"`
}

// Load reads .env (if present), the YAML file named by DELPHI_CONFIG (if set) and
// finally the process environment.
func Load() (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	s := Defaults()
	if path := os.Getenv("DELPHI_CONFIG"); path != "" {
		if err := s.loadFile(path); err != nil {
			return nil, err
		}
	}
	s.applyEnv()
	s.applyDefaults()
	return s, nil
}

func Defaults() *Settings {
	return &Settings{
		ListenAddr:         ServerListenAddr,
		LogLevel:           "debug",
		LLMProvider:        LLMProviderOpenAI,
		EmbeddingProvider:  LLMProviderOpenAI,
		QdrantHost:         QdrantHost,
		QdrantPort:         QdrantGrpcPort,
		RedisAddr:          RedisAddr,
		DocsRoot:           DocsRoot,
		CredentialsFile:    CredentialsFile,
		AdminUser:          AdminUser,
		NoAuthBypass:       NoAuthBypass,
		ChunkSize:          ChunkSize,
		ChunkOverlap:       ChunkOverlap,
		RetrievalTopK:      RetrievalTopK,
		HistoryTokenBudget: HistoryTokenBudget,
	}
}

func (s *Settings) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, s)
}

func (s *Settings) applyEnv() {
	setString(&s.ListenAddr, "LISTEN_ADDR")
	setString(&s.LogLevel, "LOG_LEVEL")
	setString(&s.LogFile, "LOG_FILE")
	setString(&s.LLMProvider, "LLM_PROVIDER")
	setString(&s.EmbeddingProvider, "EMBEDDING_PROVIDER")
	setString(&s.OpenAIKey, "OPENAI_API_KEY")
	setString(&s.GoogleKey, "GOOGLE_API_KEY")
	setString(&s.ChatModel, "CHAT_MODEL")
	setString(&s.EmbeddingModel, "EMBEDDING_MODEL")
	setString(&s.QdrantHost, "QDRANT_HOST")
	setInt(&s.QdrantPort, "QDRANT_PORT")
	setString(&s.QdrantAPIKey, "QDRANT_API_KEY")
	setString(&s.RedisAddr, "REDIS_ADDR")
	setString(&s.RedisPassword, "REDIS_PASSWORD")
	setString(&s.DocsRoot, "DOCS_ROOT")
	setString(&s.CredentialsFile, "CREDENTIALS_FILE")
	setString(&s.AdminUser, "ADMIN_USER")
	setBool(&s.NoAuthBypass, "NO_AUTH_BYPASS")
	setInt(&s.ChunkSize, "CHUNK_SIZE")
	setInt(&s.ChunkOverlap, "CHUNK_OVERLAP")
	setInt(&s.RetrievalTopK, "RETRIEVAL_TOP_K")
	setInt(&s.HistoryTokenBudget, "HISTORY_TOKEN_BUDGET")
	if v, err := strconv.ParseFloat(os.Getenv("RETRIEVAL_SCORE_THRESHOLD"), 32); err == nil {
		s.RetrievalScoreThreshold = float32(v)
	}
}

func (s *Settings) applyDefaults() {
	if s.ChatModel == "" {
		s.ChatModel = OpenAIChatModel
		if s.LLMProvider == LLMProviderGemini {
			s.ChatModel = GeminiModelName
		}
	}
	if s.EmbeddingModel == "" {
		s.EmbeddingModel = OpenAIEmbeddingModel
		if s.EmbeddingProvider == LLMProviderGemini {
			s.EmbeddingModel = GoogleEmbeddingModel
		}
	}
	if s.RetrievalTopK <= 0 {
		s.RetrievalTopK = RetrievalTopK
	}
	if s.HistoryTokenBudget <= 0 {
		s.HistoryTokenBudget = HistoryTokenBudget
	}
	if s.DocsRoot == "" {
		s.DocsRoot = DocsRoot
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		*dst = v
	}
}
