package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Base mainnet constants. Single chain by design; the quote and native
// asset pair never changes.
const (
	DefaultChainID     = 8453
	DefaultWETHAddress = "0x4200000000000000000000000000000000000006"
)

type Config struct {
	// Backend hook delivery
	BackendURL    string
	InternalToken string

	// Chain access
	RPCURL        string
	AlchemyAPIKey string
	ChainID       int64
	WETHAddress   string
	ZeroXAPIKey   string

	// API
	Port            int
	APIKey          string
	CORSAllowOrigin string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BackendURL:    envStr("BACKEND_URL", "http://127.0.0.1:8080"),
		InternalToken: envStr("INTERNAL_TOKEN", ""),

		RPCURL:        envStr("RPC_URL", ""),
		AlchemyAPIKey: envStr("ALCHEMY_API_KEY", ""),
		ChainID:       int64(envInt("CHAIN_ID", DefaultChainID)),
		WETHAddress:   envStr("WETH_ADDRESS", DefaultWETHAddress),
		ZeroXAPIKey:   envStr("ZEROX_API_KEY", ""),

		Port:            envInt("PORT", 9104),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "auto_trader"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),
	}

	if cfg.RPCURL == "" && cfg.AlchemyAPIKey != "" {
		cfg.RPCURL = "https://base-mainnet.g.alchemy.com/v2/" + cfg.AlchemyAPIKey
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.RPCURL == "" {
		errs = append(errs, "RPC_URL or ALCHEMY_API_KEY is required")
	}
	if c.ZeroXAPIKey == "" {
		fmt.Println("[WARN] ZEROX_API_KEY not set, swap quotes will fail softly")
	}
	if c.InternalToken == "" {
		fmt.Println("[WARN] INTERNAL_TOKEN not set, hook events cannot fire")
	}
	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set, RPC API has no authentication")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== Auto Trader Configuration ===")
	fmt.Printf("Chain ID: %d\n", c.ChainID)
	fmt.Printf("WETH: %s\n", truncAddr(c.WETHAddress))
	fmt.Printf("0x API: %s\n", boolLabel(c.ZeroXAPIKey != "", "configured", "not set"))
	fmt.Printf("Hook delivery: %s\n", boolLabel(c.InternalToken != "", c.BackendURL, "disabled"))
	fmt.Printf("RPC: %s\n", boolLabel(c.RPCURL != "", "configured", "not set"))
	fmt.Printf("API port: %d\n", c.Port)
	fmt.Println("=================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func truncAddr(addr string) string {
	if len(addr) > 10 {
		return addr[:10] + "..."
	}
	return addr
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
