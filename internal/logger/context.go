package logger

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	contextConfigMu       sync.RWMutex
	logKeys               []interface{}
	clientLogContextHooks map[string]ClientLogContextHook
)

// SetLogKeys sets the context keys to be extracted from context.
// It is safe to call at runtime.
func SetLogKeys(keys []interface{}) {
	contextConfigMu.Lock()
	defer contextConfigMu.Unlock()
	logKeys = append([]interface{}(nil), keys...)
}

// GetLogKeys returns a copy of the current log keys.
func GetLogKeys() []interface{} {
	contextConfigMu.RLock()
	defer contextConfigMu.RUnlock()
	return append([]interface{}(nil), logKeys...)
}

// RegisterLogContextHook registers a hook for extracting context fields.
func RegisterLogContextHook(key string, hook ClientLogContextHook) {
	contextConfigMu.Lock()
	defer contextConfigMu.Unlock()
	if clientLogContextHooks == nil {
		clientLogContextHooks = make(map[string]ClientLogContextHook)
	}
	clientLogContextHooks[key] = hook
}

// GetClientLogContextHooks returns a copy of the registered hooks.
func GetClientLogContextHooks() map[string]ClientLogContextHook {
	contextConfigMu.RLock()
	defer contextConfigMu.RUnlock()
	hooks := make(map[string]ClientLogContextHook, len(clientLogContextHooks))
	for k, v := range clientLogContextHooks {
		hooks[k] = v
	}
	return hooks
}

// contextFields collects masked fields from ctx for every registered key and hook.
func contextFields(ctx context.Context) logrus.Fields {
	fields := logrus.Fields{}
	if ctx == nil {
		return fields
	}

	contextConfigMu.RLock()
	defer contextConfigMu.RUnlock()

	for _, key := range logKeys {
		if val := ctx.Value(key); val != nil {
			fields[fmt.Sprint(key)] = MaskSecrets(fmt.Sprint(val))
		}
	}
	for key, hook := range clientLogContextHooks {
		if val := hook(ctx); val != "" {
			fields[key] = MaskSecrets(val)
		}
	}
	return fields
}
