package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
)

// Config holds all configurable server parameters.
type Config struct {
	// MaxPlayers and MinPlayers bound how many seats a room holds and how
	// many must be ready before a round starts.
	MaxPlayers int `json:"max_players"`
	MinPlayers int `json:"min_players"`

	// HiddenReserveBase is the number of hidden-reserve cards dealt to a
	// seat with zero losses; each loss adds one.
	HiddenReserveBase int `json:"hidden_reserve_base"`

	// PileRevealMS is how long a completed battle pile stays exposed
	// before it is discarded.
	PileRevealMS int `json:"pile_reveal_ms"`

	MaxNameLength int `json:"max_name_length"`
	WSPort        int `json:"ws_port"`

	// DatabaseURL enables round-history persistence when set.
	DatabaseURL string `json:"database_url"`

	// AuthBaseURL enables bearer-token validation when set.
	AuthBaseURL string `json:"auth_base_url"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		MaxPlayers:        6,
		MinPlayers:        2,
		HiddenReserveBase: 2,
		PileRevealMS:      3000,
		MaxNameLength:     24,
		WSPort:            8080,
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	cfg := Defaults()

	// Try to load from config.json
	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			log.Printf("Warning: failed to parse config.json: %v", err)
		}
	}

	// Environment variable overrides
	overrideInt(&cfg.MaxPlayers, "MAX_PLAYERS")
	overrideInt(&cfg.MinPlayers, "MIN_PLAYERS")
	overrideInt(&cfg.HiddenReserveBase, "HIDDEN_RESERVE_BASE")
	overrideInt(&cfg.PileRevealMS, "PILE_REVEAL_MS")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")
	overrideInt(&cfg.WSPort, "WS_PORT")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.AuthBaseURL, "AUTH_BASE_URL")

	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
