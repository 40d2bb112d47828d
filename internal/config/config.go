package config

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"

	"github.com/dgallion1/personadoc/internal/pipeline"
	"github.com/dgallion1/personadoc/internal/query"
	"github.com/dgallion1/personadoc/internal/rank"
	"github.com/dgallion1/personadoc/internal/refine"
	"github.com/dgallion1/personadoc/internal/score"
	"github.com/dgallion1/personadoc/internal/segment"
)

// Config holds the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Segment  SegmentConfig  `yaml:"segment" mapstructure:"segment"`
	Query    QueryConfig    `yaml:"query" mapstructure:"query"`
	Score    ScoreConfig    `yaml:"score" mapstructure:"score"`
	Refine   RefineConfig   `yaml:"refine" mapstructure:"refine"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	APIKey         string   `yaml:"api_key" mapstructure:"api_key"` // Empty disables bearer auth
	CORSOrigins    []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
	TimeoutSecs    int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AnalysisConfig controls selection and concurrency of a run.
type AnalysisConfig struct {
	TopN           int     `yaml:"top_n" mapstructure:"top_n"`
	MinScore       float64 `yaml:"min_score" mapstructure:"min_score"`
	MaxPerDocument int     `yaml:"max_per_document" mapstructure:"max_per_document"`
	RefineTop      int     `yaml:"refine_top" mapstructure:"refine_top"`
	Parallelism    int     `yaml:"parallelism" mapstructure:"parallelism"`
	MinDocuments   int     `yaml:"min_documents" mapstructure:"min_documents"`
}

// SegmentConfig bounds section and heading sizes.
type SegmentConfig struct {
	MaxSectionChars int `yaml:"max_section_chars" mapstructure:"max_section_chars"`
	MaxHeadingChars int `yaml:"max_heading_chars" mapstructure:"max_heading_chars"`
	MaxTitleChars   int `yaml:"max_title_chars" mapstructure:"max_title_chars"`
}

// QueryConfig weighs persona and task terms.
type QueryConfig struct {
	PersonaWeight   float64             `yaml:"persona_weight" mapstructure:"persona_weight"`
	TaskWeight      float64             `yaml:"task_weight" mapstructure:"task_weight"`
	PhraseWeight    float64             `yaml:"phrase_weight" mapstructure:"phrase_weight"`
	SynonymWeight   float64             `yaml:"synonym_weight" mapstructure:"synonym_weight"`
	DisableSynonyms bool                `yaml:"disable_synonyms" mapstructure:"disable_synonyms"`
	Synonyms        map[string][]string `yaml:"synonyms" mapstructure:"synonyms"`
}

// ScoreConfig tunes the relevance formula.
type ScoreConfig struct {
	TitleBoost     float64 `yaml:"title_boost" mapstructure:"title_boost"`
	K1             float64 `yaml:"k1" mapstructure:"k1"`
	CoverageWeight float64 `yaml:"coverage_weight" mapstructure:"coverage_weight"`
}

// RefineConfig bounds refined passages.
type RefineConfig struct {
	MaxChars int `yaml:"max_chars" mapstructure:"max_chars"`
}

// CacheConfig configures the upload extraction cache.
type CacheConfig struct {
	TTLMinutes     int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
	CleanupMinutes int `yaml:"cleanup_minutes" mapstructure:"cleanup_minutes"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from personadoc.yaml (optional) and
// PERSONADOC_* environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("personadoc")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PERSONADOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.max_upload_bytes", 52428800) // 50MB
	v.SetDefault("server.timeout_secs", 120)
	v.SetDefault("analysis.top_n", 10)
	v.SetDefault("analysis.min_score", 0.0)
	v.SetDefault("analysis.max_per_document", 0)
	v.SetDefault("analysis.refine_top", 0)
	v.SetDefault("analysis.parallelism", 0)
	v.SetDefault("analysis.min_documents", 3)
	v.SetDefault("segment.max_section_chars", 2000)
	v.SetDefault("segment.max_heading_chars", 100)
	v.SetDefault("segment.max_title_chars", 80)
	v.SetDefault("query.persona_weight", 1.0)
	v.SetDefault("query.task_weight", 2.0)
	v.SetDefault("query.phrase_weight", 1.0)
	v.SetDefault("query.synonym_weight", 0.5)
	v.SetDefault("query.disable_synonyms", false)
	v.SetDefault("score.title_boost", 2.0)
	v.SetDefault("score.k1", 1.2)
	v.SetDefault("score.coverage_weight", 1.0)
	v.SetDefault("refine.max_chars", 500)
	v.SetDefault("cache.ttl_minutes", 60)
	v.SetDefault("cache.cleanup_minutes", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// Validate rejects settings no run could use.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return eris.Errorf("server.port %d out of range", c.Server.Port)
	case c.Server.MaxUploadBytes <= 0:
		return eris.New("server.max_upload_bytes must be positive")
	case c.Analysis.TopN < 1 || c.Analysis.TopN > rank.MaxTopN:
		return eris.Errorf("analysis.top_n must be between 1 and %d", rank.MaxTopN)
	case c.Analysis.MinScore < 0:
		return eris.New("analysis.min_score must not be negative")
	case c.Analysis.MaxPerDocument < 0 || c.Analysis.RefineTop < 0 || c.Analysis.Parallelism < 0 || c.Analysis.MinDocuments < 0:
		return eris.New("analysis limits must not be negative")
	case c.Query.PersonaWeight < 0 || c.Query.TaskWeight < 0 || c.Query.PhraseWeight < 0 || c.Query.SynonymWeight < 0:
		return eris.New("query weights must not be negative")
	case c.Query.PersonaWeight == 0 && c.Query.TaskWeight == 0:
		return eris.New("query.persona_weight and query.task_weight cannot both be zero")
	case c.Score.K1 <= 0:
		return eris.New("score.k1 must be positive")
	case c.Score.TitleBoost < 0 || c.Score.CoverageWeight < 0:
		return eris.New("score weights must not be negative")
	case c.Refine.MaxChars <= 0:
		return eris.New("refine.max_chars must be positive")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return eris.Errorf("log.format %q must be json or text", c.Log.Format)
	}
	return nil
}

// PipelineOptions maps the configuration onto analysis options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Segment: segment.Config{
			MaxSectionChars: c.Segment.MaxSectionChars,
			MaxHeadingChars: c.Segment.MaxHeadingChars,
			MaxTitleChars:   c.Segment.MaxTitleChars,
		},
		Query: query.Options{
			PersonaWeight:   c.Query.PersonaWeight,
			TaskWeight:      c.Query.TaskWeight,
			PhraseWeight:    c.Query.PhraseWeight,
			SynonymWeight:   c.Query.SynonymWeight,
			Synonyms:        c.Query.Synonyms,
			DisableSynonyms: c.Query.DisableSynonyms,
		},
		Score: score.Options{
			TitleBoost:     c.Score.TitleBoost,
			K1:             c.Score.K1,
			CoverageWeight: c.Score.CoverageWeight,
		},
		Rank: rank.Options{
			TopN:           c.Analysis.TopN,
			MinScore:       c.Analysis.MinScore,
			MaxPerDocument: c.Analysis.MaxPerDocument,
		},
		Refine:      refine.Options{MaxChars: c.Refine.MaxChars, K1: c.Score.K1},
		RefineTop:   c.Analysis.RefineTop,
		Parallelism: c.Analysis.Parallelism,
	}
}

// CacheTTL returns the extraction cache expiry and cleanup interval.
func (c *Config) CacheTTL() (time.Duration, time.Duration) {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute, time.Duration(c.Cache.CleanupMinutes) * time.Minute
}

// NewLogger builds the structured logger described by cfg.
func NewLogger(cfg LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, eris.Wrapf(err, "config: parse log level %q", s)
	}
	return level, nil
}
