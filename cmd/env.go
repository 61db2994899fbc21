package cmd

import (
	"path/filepath"

	"github.com/joho/godotenv"
)

// loadDotenv reads the .env file next to the check file, if any. Its entries
// are merged into every step's environment; per-configuration env wins.
func loadDotenv(dir string) map[string]string {
	env, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil {
		return nil
	}
	return env
}
