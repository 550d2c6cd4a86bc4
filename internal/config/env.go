package config

import (
	"os"
	"regexp"
)

// envVarRegex matches ${VAR} and ${VAR:-default}.
var envVarRegex = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func substituteEnvVars(content []byte) []byte {
	return envVarRegex.ReplaceAllFunc(content, func(match []byte) []byte {
		groups := envVarRegex.FindSubmatch(match)
		varName := string(groups[1])
		if value, exists := os.LookupEnv(varName); exists {
			return []byte(value)
		}
		if groups[2] != nil {
			return groups[2]
		}
		return match
	})
}
