package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/vbonduro/lunchroulette/internal/domain"
)

// Generation backends.
const (
	BackendOpenAI = "openai"
	BackendClaude = "claude"
	BackendGemini = "gemini"
	BackendOllama = "ollama"
)

type Config struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	GoogleMapsAPIKey    string  `envconfig:"GOOGLE_MAPS_API_KEY"`
	PublicGoogleMapsKey string  `envconfig:"NEXT_PUBLIC_GOOGLE_MAPS_API_KEY"`
	PlacesBaseURL       string  `envconfig:"PLACES_BASE_URL"`
	Language            string  `envconfig:"LANGUAGE" default:"ko"`
	CenterLat           float64 `envconfig:"CENTER_LAT" default:"37.560843"`
	CenterLng           float64 `envconfig:"CENTER_LNG" default:"126.975881"`
	DefaultRadius       int     `envconfig:"DEFAULT_RADIUS" default:"500"`

	GenerationBackend string `envconfig:"GENERATION_BACKEND" default:"openai"`
	OpenAIAPIKey      string `envconfig:"OPENAI_API_KEY"`
	PublicOpenAIKey   string `envconfig:"NEXT_PUBLIC_OPENAI_API_KEY"`
	OpenAIModel       string `envconfig:"OPENAI_MODEL" default:"gpt-3.5-turbo"`
	OpenAIBaseURL     string `envconfig:"OPENAI_BASE_URL"`
	ClaudeAPIKey      string `envconfig:"CLAUDE_API_KEY"`
	ClaudeModel       string `envconfig:"CLAUDE_MODEL"`
	GeminiAPIKey      string `envconfig:"GEMINI_API_KEY"`
	GeminiModel       string `envconfig:"GEMINI_MODEL"`
	OllamaHost        string `envconfig:"OLLAMA_HOST" default:"http://localhost:11434"`
	OllamaModel       string `envconfig:"OLLAMA_MODEL" default:"llama3.2"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`
}

// Load reads envFiles (".env" when none are given) into the process
// environment, then parses the environment. Variables already set win over
// file values, and a missing file is skipped.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file %s: %w", f, err)
		}
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if c.GoogleMapsAPIKey == "" {
		c.GoogleMapsAPIKey = c.PublicGoogleMapsKey
	}
	if c.OpenAIAPIKey == "" {
		c.OpenAIAPIKey = c.PublicOpenAIKey
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values that cannot be defaulted. Missing API keys are not
// an error here; searches report them to the user instead.
func (c *Config) Validate() error {
	switch c.GenerationBackend {
	case BackendOpenAI, BackendClaude, BackendGemini, BackendOllama:
	default:
		return fmt.Errorf("unknown GENERATION_BACKEND %q (want openai, claude, gemini or ollama)", c.GenerationBackend)
	}
	if c.CenterLat < -90 || c.CenterLat > 90 {
		return fmt.Errorf("CENTER_LAT %v out of range", c.CenterLat)
	}
	if c.CenterLng < -180 || c.CenterLng > 180 {
		return fmt.Errorf("CENTER_LNG %v out of range", c.CenterLng)
	}
	return nil
}

// GenerationAPIKey returns the credential for the selected backend. Ollama has
// no key, so its host stands in.
func (c *Config) GenerationAPIKey() string {
	switch c.GenerationBackend {
	case BackendClaude:
		return c.ClaudeAPIKey
	case BackendGemini:
		return c.GeminiAPIKey
	case BackendOllama:
		return c.OllamaHost
	default:
		return c.OpenAIAPIKey
	}
}

func (c *Config) Center() domain.GeoPoint {
	return domain.GeoPoint{Lat: c.CenterLat, Lng: c.CenterLng}
}

// InitialCriteria is the search the page starts with.
func (c *Config) InitialCriteria() domain.SearchCriteria {
	return domain.NewSearchCriteria(c.Center(), c.DefaultRadius, domain.CuisineAll)
}

// KeyPrefix returns the first five characters of a key for logging, or
// "missing".
func KeyPrefix(key string) string {
	if key == "" {
		return "missing"
	}
	if len(key) <= 5 {
		return key[:1] + "..."
	}
	return key[:5] + "..."
}
