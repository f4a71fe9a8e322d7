// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package pgadaptor

import (
	"errors"
	"fmt"
	"os"
	path "path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/BurntSushi/toml"
)

const (
	homeEnv                  = "PGADAPTOR_HOME"
	defaultConnectionNameEnv = "PGADAPTOR_DEFAULT_CONNECTION_NAME"
	connectionsFileName      = "connections.toml"
)

// LoadConnectionConfig returns the connection config loaded from the toml file.
// By default, PGADAPTOR_HOME (the directory of connections.toml) is
// os.home/.pgadaptor and PGADAPTOR_DEFAULT_CONNECTION_NAME is 'default'.
func LoadConnectionConfig() (*Config, error) {
	cfg := &Config{
		Params: make(map[string]string),
	}
	name := getConnectionName(os.Getenv(defaultConnectionNameEnv))
	configDir, err := getTomlFilePath(os.Getenv(homeEnv))
	if err != nil {
		return nil, err
	}
	tomlFilePath := path.Join(configDir, connectionsFileName)
	if err = validateFilePermission(tomlFilePath); err != nil {
		return nil, err
	}
	tomlInfo := make(map[string]interface{})
	if _, err = toml.DecodeFile(tomlFilePath, &tomlInfo); err != nil {
		return nil, err
	}
	section, exist := tomlInfo[name]
	if !exist {
		return nil, &AdaptorError{
			Number:      ErrCodeFailedToFindDSNInToml,
			Message:     errMsgFailedToFindDSNInToml,
			MessageArgs: []interface{}{name},
		}
	}
	connection, ok := section.(map[string]interface{})
	if !ok {
		return nil, &AdaptorError{
			Number:      ErrCodeTomlFileParsingFailed,
			Message:     errMsgFailedToParseTomlFile,
			MessageArgs: []interface{}{name, section},
		}
	}
	if err = parseToml(cfg, connection); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseToml(cfg *Config, connection map[string]interface{}) error {
	var parsingErr error
	for key, value := range connection {
		switch strings.ToLower(key) {
		case "host":
			cfg.Host, parsingErr = parseString(value)
		case "port":
			cfg.Port, parsingErr = parseInt(value)
		case "database", "dbname":
			cfg.Database, parsingErr = parseString(value)
		case "user", "username":
			cfg.User, parsingErr = parseString(value)
		case "password":
			cfg.Password, parsingErr = parseString(value)
		case "connectstring", "connect_string", "url":
			cfg.ConnectString, parsingErr = parseString(value)
		case "connecttimeout", "connect_timeout":
			cfg.ConnectTimeout, parsingErr = parseDuration(value)
		case "logsql", "log_sql":
			cfg.LogSQL, parsingErr = parseBool(value)
		case "clientconfigfile", "client_config_file":
			cfg.ClientConfigFile, parsingErr = parseString(value)
		default:
			var param string
			if param, parsingErr = parseScalar(value); parsingErr == nil {
				cfg.Params[key] = param
			}
		}
		if parsingErr != nil {
			return &AdaptorError{
				Number:      ErrCodeTomlFileParsingFailed,
				Message:     errMsgFailedToParseTomlFile,
				MessageArgs: []interface{}{key, value},
				cause:       parsingErr,
			}
		}
	}
	return nil
}

func parseInt(i interface{}) (int, error) {
	switch v := i.(type) {
	case int64:
		return int(v), nil
	case int:
		return v, nil
	case string:
		return strconv.Atoi(v)
	}
	return 0, errors.New("failed to parse the value to integer")
}

func parseBool(i interface{}) (bool, error) {
	switch v := i.(type) {
	case bool:
		return v, nil
	case string:
		vv, err := strconv.ParseBool(v)
		if err != nil {
			return false, errors.New("failed to parse the value to boolean")
		}
		return vv, nil
	}
	return false, errors.New("failed to parse the value to boolean")
}

// parseDuration reads plain numbers as seconds, strings may also carry a unit.
func parseDuration(i interface{}) (time.Duration, error) {
	if s, ok := i.(string); ok {
		if d, err := time.ParseDuration(s); err == nil {
			return d, nil
		}
	}
	num, err := parseInt(i)
	if err != nil {
		return 0, err
	}
	return time.Duration(num) * time.Second, nil
}

func parseString(i interface{}) (string, error) {
	v, ok := i.(string)
	if !ok {
		return "", errors.New("failed to convert the value to string")
	}
	return v, nil
}

// parseScalar accepts strings, integers and booleans for free-form params.
func parseScalar(i interface{}) (string, error) {
	switch v := i.(type) {
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", fmt.Errorf("unsupported value type %T", i)
}

func getTomlFilePath(filePath string) (string, error) {
	if len(filePath) != 0 {
		if path.IsAbs(filePath) {
			return filePath, nil
		}
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		filePath = path.Join(homeDir, ".pgadaptor")
	}
	return path.Abs(filePath)
}

func getConnectionName(name string) string {
	if len(name) != 0 {
		return name
	}
	return "default"
}
