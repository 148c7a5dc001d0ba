// Package i18n resolves surface strings. One parameter decides whether
// strings come from a locale catalog or from the built-in English defaults.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator looks up a string by key. Unknown keys come back unchanged.
type Translator interface {
	Translate(key string) string
}

// Func adapts a function to Translator.
type Func func(key string) string

func (f Func) Translate(key string) string { return f(key) }

type catalog struct {
	tag      language.Tag
	messages map[string]string
}

func (c *catalog) Translate(key string) string {
	if s, ok := c.messages[key]; ok {
		return s
	}
	return key
}

// Tag is the locale the catalog resolved to.
func (c *catalog) Tag() language.Tag { return c.tag }

var (
	catalogs  map[language.Tag]map[string]string
	supported []language.Tag
	matcher   language.Matcher
	defaults  map[string]string
)

func init() {
	var err error
	catalogs, err = loadCatalogs()
	if err != nil {
		panic(err)
	}
	supported = []language.Tag{language.English}
	for tag := range catalogs {
		if tag != language.English {
			supported = append(supported, tag)
		}
	}
	matcher = language.NewMatcher(supported)
	defaults = catalogs[language.English]
}

func loadCatalogs() (map[language.Tag]map[string]string, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	out := make(map[language.Tag]map[string]string, len(entries))
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".json")
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", e.Name(), err)
		}
		b, err := localeFS.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		msgs := map[string]string{}
		if err := json.Unmarshal(b, &msgs); err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		out[tag] = msgs
	}
	if _, ok := out[language.English]; !ok {
		return nil, fmt.Errorf("locales: missing en catalog")
	}
	return out, nil
}

// New returns a translator. With localized false the locale is ignored and
// the English defaults are used.
func New(locale string, localized bool) Translator {
	if !localized {
		return &catalog{tag: language.English, messages: defaults}
	}
	desired, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(desired) == 0 {
		desired = []language.Tag{language.English}
	}
	_, idx, _ := matcher.Match(desired...)
	tag := supported[idx]
	msgs := catalogs[tag]
	// Fall back key by key so a partial catalog never shows raw keys.
	merged := make(map[string]string, len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range msgs {
		merged[k] = v
	}
	return &catalog{tag: tag, messages: merged}
}
