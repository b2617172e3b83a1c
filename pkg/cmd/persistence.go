package cmd

import (
	"log/slog"
	"strings"

	"github.com/prepline/prepline/pkg/persistence"
	"github.com/prepline/prepline/pkg/persistence/file"
)

var supportedPersistenceProviders = []string{"file"}

// NewPersistence builds the persistence layer from a database URL. Only the
// file provider is implemented; an unrecognized scheme falls back to treating
// the URL as a file path.
func NewPersistence(databaseURL string, logger *slog.Logger) persistence.Persistence {
	provider := parsePersistenceProvider(databaseURL)

	switch provider {
	default:
		return file.NewPersistence(databaseURL, logger)
	}
}

func parsePersistenceProvider(databaseURL string) string {
	parts := strings.Split(databaseURL, "://")

	provider := parts[0]
	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
