package bootstrap

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/eleven-am/snapsolve/internal/solver"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/gommon/bytes"
)

type Config struct {
	Port           int           `envconfig:"PORT" default:"3000"`
	AllowedOrigin  string        `envconfig:"ALLOWED_ORIGIN" default:"http://localhost:5173"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
	UploadDir      string        `envconfig:"UPLOAD_DIR"`
	MaxUploadBytes string        `envconfig:"MAX_UPLOAD_BYTES" default:"20M"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	TextModel     string `envconfig:"TEXT_MODEL" default:"gpt-4o"`
	VisionModel   string `envconfig:"VISION_MODEL" default:"gpt-4o-mini"`
	SolvePrompt   string `envconfig:"SOLVE_PROMPT" default:"Solve the problems within the image:"`
	ImageDetail   string `envconfig:"IMAGE_DETAIL" default:"auto"`
	ImageStrategy string `envconfig:"IMAGE_STRATEGY" default:"embed"`

	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion          string `envconfig:"AWS_REGION"`
	S3Bucket           string `envconfig:"S3_BUCKET_NAME"`
	S3Endpoint         string `envconfig:"S3_ENDPOINT"`
	S3PublicBaseURL    string `envconfig:"S3_PUBLIC_BASE_URL"`
	S3KeyPrefix        string `envconfig:"S3_KEY_PREFIX" default:"uploads/"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisChannel  string `envconfig:"REDIS_CHANNEL" default:"snapsolve:events"`

	GatewayURL     string `envconfig:"GATEWAY_URL" default:"http://localhost:3000"`
	OverlayAddr    string `envconfig:"OVERLAY_ADDR" default:"localhost:3001"`
	CaptureDir     string `envconfig:"CAPTURE_DIR"`
	CaptureDisplay int    `envconfig:"CAPTURE_DISPLAY" default:"0"`
}

// LoadConfig reads an optional .env file and then the process environment.
// Values already set in the environment win over the file.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	strategy, err := solver.ParseStrategy(c.ImageStrategy)
	if err != nil {
		return err
	}
	if strategy == solver.StrategyUpload {
		if c.S3Bucket == "" {
			return errors.New("IMAGE_STRATEGY=upload requires S3_BUCKET_NAME")
		}
		if c.AWSRegion == "" {
			return errors.New("IMAGE_STRATEGY=upload requires AWS_REGION")
		}
	}
	if _, err := bytes.Parse(c.MaxUploadBytes); err != nil {
		return fmt.Errorf("invalid MAX_UPLOAD_BYTES %q: %w", c.MaxUploadBytes, err)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	return nil
}

func (c *Config) ServerAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

func (c *Config) Strategy() solver.Strategy {
	s, _ := solver.ParseStrategy(c.ImageStrategy)
	return s
}
