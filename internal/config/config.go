// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and
// an optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// DatabaseDSN holds the database connection string for the server.
	DatabaseDSN string

	// ServerURL is the base URL of the word server, consumed by the client.
	ServerURL string

	// AIEndpoint is the AI provider endpoint used for collocation generation.
	AIEndpoint string

	// StorePath is the path of the client's local bbolt database.
	StorePath string

	// LogLevel sets the logging verbosity.
	LogLevel string

	// Config is the path to the Config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.ServerURL, "s", "", "word server base URL")
	flag.StringVar(&options.AIEndpoint, "ai", "", "AI provider endpoint")
	flag.StringVar(&options.StorePath, "store", "vocab.db", "path to local store")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags, the optional .env and JSON config
// files, and environment variables to set configuration values. It returns
// a pointer to the Options struct containing the parsed values.
// Precedence, lowest to highest: flag defaults, config file, environment.
func Parse() *Options {
	flag.Parse()

	// Load .env into the process environment if present.
	_ = godotenv.Load()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	// Override flags and file with environment variables if set
	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if serverURL := os.Getenv("VOCAB_SERVER_URL"); serverURL != "" {
		options.ServerURL = serverURL
	}
	if aiEndpoint := os.Getenv("VOCAB_AI_ENDPOINT"); aiEndpoint != "" {
		options.AIEndpoint = aiEndpoint
	}
	if storePath := os.Getenv("VOCAB_STORE_PATH"); storePath != "" {
		options.StorePath = storePath
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}

	return options
}
