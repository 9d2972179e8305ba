package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Verify required environment variables
	required := []string{
		"OPENAI_API_KEY",
		"ANCHOR_SECRET",
	}

	for _, env := range required {
		if os.Getenv(env) == "" {
			log.Printf("Warning: %s environment variable not set\n", env)
		}
	}
}

// Getenv returns the value of key, or fallback when unset.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// OpenAIKey returns the API key for the decision-making model.
// Empty means agents fall back to WAIT decisions.
func OpenAIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// AnchorSecret is the process-wide shared secret authorizing anchor requests.
func AnchorSecret() string {
	return os.Getenv("ANCHOR_SECRET")
}

// LedgerRPCURL points at the external ledger's JSON-RPC endpoint.
func LedgerRPCURL() string {
	return Getenv("LEDGER_RPC_URL", "https://api.devnet.solana.com")
}

// LedgerSigningKey is the hex-encoded Ed25519 private key that pays for
// memo submissions. Empty disables ledger commitment (hash-only anchoring).
func LedgerSigningKey() string {
	return os.Getenv("LEDGER_SIGNING_KEY")
}
