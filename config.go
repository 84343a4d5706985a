package openpgpjs

import (
	"sync"

	"github.com/ninetyfivenorth/openpgpjs/constants"
)

// Config is the process-wide configuration. It is read by every operation
// and is meant to be adjusted once at startup, before pipelines run.
type Config struct {
	// AEADProtect enables authenticated encryption, which also makes the
	// Encrypt and Decrypt operations eligible for local execution when a
	// worker is registered.
	AEADProtect bool
	// MinRSABits is the strength floor enforced during RSA key generation.
	MinRSABits int
	// Compression selects the default compression algorithm of the
	// Encrypt operation.
	Compression int8
	// Debug logs translated errors.
	Debug bool
}

var (
	configMu sync.RWMutex
	config   = defaultConfig()
)

func defaultConfig() *Config {
	return &Config{
		MinRSABits:  2048,
		Compression: constants.NoCompression,
	}
}

// GetConfig returns a copy of the current configuration.
func GetConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return *config
}

// SetConfig replaces the process-wide configuration.
func SetConfig(c Config) {
	configMu.Lock()
	defer configMu.Unlock()
	config = &c
}
