// Copyright (c) 2023 Snowflake Computing Inc. All rights reserved.

package pgadaptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// log levels for easy logging
const (
	Off   string = "OFF"   // log level for logging switched off
	Error string = "ERROR" // error log level
	Warn  string = "WARN"  // warn log level
	Info  string = "INFO"  // info log level
	Debug string = "DEBUG" // debug log level
	Trace string = "TRACE" // trace log level
)

const (
	defaultClientConfigName = "pgadaptor_client_config.json"
	clientConfigEnvName     = "PGADAPTOR_CLIENT_CONFIG_FILE"
)

// ClientConfig config root
type ClientConfig struct {
	Common *ClientConfigCommonProps `json:"common"`
}

// ClientConfigCommonProps properties from "common" section
type ClientConfigCommonProps struct {
	LogLevel string `json:"log_level,omitempty"`
	LogPath  string `json:"log_path,omitempty"`
}

// getClientConfig finds and parses the client configuration. A nil config
// without error means no file was found.
func getClientConfig(filePathFromConfig string) (*ClientConfig, error) {
	dirs, err := clientConfigPredefinedDirs()
	if err != nil {
		return nil, err
	}
	filePath, err := findClientConfigFilePath(filePathFromConfig, dirs)
	if err != nil {
		return nil, err
	}
	if filePath == "" {
		return nil, nil
	}
	return parseClientConfiguration(filePath)
}

func findClientConfigFilePath(filePathFromConfig string, dirs []string) (string, error) {
	if filePathFromConfig != "" {
		return filePathFromConfig, nil
	}
	if envFilePath := os.Getenv(clientConfigEnvName); envFilePath != "" {
		return envFilePath, nil
	}
	for _, dir := range dirs {
		filePath := filepath.Join(dir, defaultClientConfigName)
		_, err := os.Stat(filePath)
		if err == nil {
			return filePath, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", nil
}

func clientConfigPredefinedDirs() ([]string, error) {
	var dirs []string
	if home := os.Getenv(homeEnv); home != "" {
		dirs = append(dirs, home)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return append(dirs, ".", homeDir), nil
}

func parseClientConfiguration(filePath string) (*ClientConfig, error) {
	if filePath == "" {
		return nil, nil
	}
	if err := validateCfgPerm(filePath); err != nil {
		return nil, parsingClientConfigError(err)
	}
	fileContents, err := os.ReadFile(filePath)
	if err != nil {
		return nil, parsingClientConfigError(err)
	}
	var clientConfig ClientConfig
	if err = json.Unmarshal(fileContents, &clientConfig); err != nil {
		return nil, parsingClientConfigError(err)
	}
	if err = validateClientConfiguration(&clientConfig); err != nil {
		return nil, parsingClientConfigError(err)
	}
	return &clientConfig, nil
}

func parsingClientConfigError(err error) error {
	return fmt.Errorf("parsing client config failed: %w", err)
}

func validateClientConfiguration(clientConfig *ClientConfig) error {
	if clientConfig == nil {
		return errors.New("client config not found")
	}
	if clientConfig.Common == nil {
		return errors.New("common section in client config not found")
	}
	if level := clientConfig.Common.LogLevel; level != "" {
		if _, err := toLogLevel(level); err != nil {
			return err
		}
	}
	return nil
}

func toLogLevel(logLevelString string) (string, error) {
	logLevel := strings.ToUpper(logLevelString)
	switch logLevel {
	case Off, Error, Warn, Info, Debug, Trace:
		return logLevel, nil
	default:
		return "", errors.New("unknown log level: " + logLevelString)
	}
}
