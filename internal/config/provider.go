package config

import (
	"fmt"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

// LoadAPIKey resolves the provider API key from its source reference.
func LoadAPIKey(conf Provider) (string, error) {
	key, err := commoncfg.LoadValueFromSourceRef(conf.APIKey)
	if err != nil {
		return "", fmt.Errorf("loading provider API key: %w", err)
	}

	return string(key), nil
}
