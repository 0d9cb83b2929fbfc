package cmd

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config contains all configuration parameters for the CLI. CDP
// credentials are optional; without them wallets are provisioned with a
// local keypair instead of the custody API.
type Config struct {
	CDPAPIKeyName       string `envconfig:"CDP_API_KEY_NAME"`
	CDPAPIKeyPrivateKey string `envconfig:"CDP_API_KEY_PRIVATE_KEY"`
	CDPAPIURL           string `envconfig:"CDP_API_URL"`
	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAIAPIURL        string `envconfig:"OPENAI_API_URL"`
	OpenAIModel         string `envconfig:"OPENAI_MODEL"`
	WalletDataFile      string `envconfig:"WALLET_DATA_FILE" default:"wallet_data.txt"`
	NetworkID           string `envconfig:"NETWORK_ID" default:"base-sepolia"`
	AutoInterval        int    `envconfig:"AUTO_INTERVAL_SECONDS" default:"10"`
	LogDebug            bool   `envconfig:"LOG_DEBUG"`
}

// LoadConfig reads the optional .env file and parses configuration from
// the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, using environment variables only.")
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return cfg, nil
}

// HasCDPCredentials reports whether the custody API can be used.
func (c *Config) HasCDPCredentials() bool {
	return c.CDPAPIKeyName != "" && c.CDPAPIKeyPrivateKey != ""
}
