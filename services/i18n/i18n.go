package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

//go:embed *.json
var fs embed.FS

// DefaultLang is used when the browser expresses no preference. The back office speaks Spanish.
const DefaultLang = "es"

// translations stores flattened keys: "es" -> "dashboard.sales_today" -> "Ventas de hoy"
var (
	translations = make(map[string]map[string]string)
	mutex        sync.RWMutex
	loadOnce     sync.Once
	loadErr      error
)

// Load reads every embedded <lang>.json file. Later calls are no-ops.
func Load() error {
	loadOnce.Do(func() {
		loadErr = load()
	})
	return loadErr
}

func load() error {
	entries, err := fs.ReadDir(".")
	if err != nil {
		return fmt.Errorf("failed to read embedded locales: %w", err)
	}

	loaded := make(map[string]map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), ".json")
		content, err := fs.ReadFile(entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", entry.Name(), err)
		}

		var nested map[string]interface{}
		if err := json.Unmarshal(content, &nested); err != nil {
			return fmt.Errorf("failed to unmarshal locale %s: %w", entry.Name(), err)
		}

		flat := make(map[string]string)
		flatten("", nested, flat)
		loaded[lang] = flat
		logrus.WithFields(logrus.Fields{"lang": lang, "keys": len(flat)}).Debug("loaded locale")
	}

	mutex.Lock()
	for lang, flat := range loaded {
		translations[lang] = flat
	}
	mutex.Unlock()
	return nil
}

// flatten recursively flattens a nested map into dot-notation keys.
func flatten(prefix string, nested map[string]interface{}, result map[string]string) {
	for k, v := range nested {
		newKey := k
		if prefix != "" {
			newKey = prefix + "." + k
		}

		switch child := v.(type) {
		case map[string]interface{}:
			flatten(newKey, child, result)
		case string:
			result[newKey] = child
		default:
			result[newKey] = fmt.Sprintf("%v", child)
		}
	}
}

// Supported reports whether lang has a locale file
func Supported(lang string) bool {
	_ = Load()
	mutex.RLock()
	defer mutex.RUnlock()
	_, ok := translations[lang]
	return ok
}

// T translates key in the language carried by ctx.
// Missing keys fall back to the default language and then to the key itself.
// {name} placeholders are filled from args.
func T(ctx context.Context, key string, args ...map[string]interface{}) string {
	return Translate(GetLocale(ctx), key, args...)
}

// Translate retrieves a translation for a specific language code.
func Translate(lang, key string, args ...map[string]interface{}) string {
	_ = Load()

	mutex.RLock()
	defer mutex.RUnlock()

	if trans, ok := translations[lang]; ok {
		if val, ok := trans[key]; ok {
			return format(val, args...)
		}
	}

	if lang != DefaultLang {
		if trans, ok := translations[DefaultLang]; ok {
			if val, ok := trans[key]; ok {
				return format(val, args...)
			}
		}
	}

	return key
}

// format replaces {var} placeholders with values from args if present.
func format(text string, args ...map[string]interface{}) string {
	if len(args) == 0 {
		return text
	}

	for k, v := range args[0] {
		text = strings.ReplaceAll(text, "{"+k+"}", fmt.Sprintf("%v", v))
	}
	return text
}

type contextKey string

const LocaleContextKey contextKey = "locale"

// WithLocale returns a context carrying lang
func WithLocale(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, LocaleContextKey, lang)
}

// GetLocale extracts the locale set by the locale middleware, defaulting to DefaultLang.
func GetLocale(ctx context.Context) string {
	if ctx == nil {
		return DefaultLang
	}
	if val, ok := ctx.Value(LocaleContextKey).(string); ok && val != "" {
		return val
	}
	return DefaultLang
}
