package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const defaultEnvFile = ".env"

// LoadDotEnv loads key/value pairs from path into the process environment
// without overriding variables that are already set. An empty path loads
// ./.env if it exists. It returns the file that was loaded, if any.
func LoadDotEnv(path string) (string, error) {
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); err != nil {
			if os.IsNotExist(err) {
				return "", nil
			}
			return "", errors.Wrap(err, "checking for .env")
		}
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		return "", errors.Wrapf(err, "loading env file %s", path)
	}
	return path, nil
}
