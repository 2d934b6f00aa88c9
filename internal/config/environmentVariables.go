package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD                         = false
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, it falls back to an internal in-memory store
	FALLBACK_QDRANT_TO_MEMORY       = true //same for qdrant - vectors are lost on restart, dev only
	TRACE_ID_KEY                    = "traceId"
	IDENTITY_KEY                    = "identity"
	RATE_LIMIT_PER_SECOND           = 10 //status polling counts too
	BURST_RATE_LIMIT_PER_SECOND     = 20
	RateLimiterIdleEviction         = 10 * time.Minute

	//TODO:this will differ based on the request and provider
	EmbeddingOutputDimensionality int32 = 1536
	EmbeddingBatchSize                  = 100
	HugeDataSetChunkCount               = 1000000

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	//IdleWorkerTimeout = 1 * time.Second //fo tests
	MaxConcurrentIngestions = 2 //the rest of the workers keep answering questions

	//job timeouts - ingestion embeds whole batches so it gets more room
	QueryJobTimeout  = 60 * time.Second
	IngestJobTimeout = 10 * time.Minute

	//serverTimeouts
	ReadTimeout            = 15 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//uploads
	MaxUploadSize = 64 << 20 //64mb
	UploadTempDir = "temporary_data"

	//documents cache - one folder per collection
	DocsRoot = "docs"

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = "localhost"
	QdrantPort              = 6333 //http
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false //set for https
	QdrantPoolSize          = 1     //2-5 is preferred for prod according to documentation

	//llm
	LLMProviderOpenAI = "openai"
	LLMProviderGemini = "gemini"

	OpenAIChatModel      = "gpt-3.5-turbo"
	OpenAIEmbeddingModel = "text-embedding-3-small"
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"

	//question rewriting is kept close to deterministic, answers get a bit more room
	RewriteTemperature float32 = 0.1
	AnswerTemperature  float32 = 0.5
	RewriteMaxTokens   int32   = 500
	AnswerMaxTokens    int32   = 500

	//chunking
	ChunkSize    = 1000
	ChunkOverlap = 150

	//retrieval
	RetrievalTopK           = 15
	RetrievalScoreThreshold = 0.0 //0 disables the cut-off

	//chat history
	HistoryTokenBudget = 3500
	TokenizerModel     = OpenAIChatModel

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//auth
	CredentialsFile = "static/credentials.yml"
	AdminUser       = "admin"
	NoAuthBypass    = false

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore        = 0
	RedisSessionStore    = 1
	RedisCollectionStore = 2

	//redis timeouts
	RedisJobStoreTTL     = 24 * time.Hour
	RedisSessionStoreTTL = 24 * time.Hour
)
