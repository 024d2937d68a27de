package i18n

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-datetools/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator wraps the go-i18n bundle and the active localizer for the
// configured output language.
type Translator struct {
	Bundle             *i18n.Bundle
	Localizer          *i18n.Localizer
	SupportedLanguages []string
}

// New initializes the translation bundle from the embedded locale files and
// selects lang as the active language, falling back to the default.
func New(lang string) *Translator {
	tr := &Translator{}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return tr
	}

	var detectedLangs []string

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		trimmed := strings.TrimPrefix(name, "active.")
		langCode := strings.TrimSuffix(trimmed, ".json")

		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		detectedLangs = append(detectedLangs, langCode)

		path := "locales/" + name
		if _, err := bundle.LoadMessageFileFS(localeFS, path); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
		} else {
			slog.Debug(config.MsgLocaleLoaded,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyLang, langCode,
				config.LogKeyFile, name,
			)
		}
	}

	tr.SupportedLanguages = detectedLangs
	tr.Bundle = bundle
	tr.SetLanguage(lang)
	return tr
}

// SetLanguage refreshes the localizer for the requested language.
func (tr *Translator) SetLanguage(lang string) {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	tr.Localizer = i18n.NewLocalizer(tr.Bundle, lang, config.DefaultLanguage)
}

// Msg translates a key safely. A missing key degrades to the key itself.
func (tr *Translator) Msg(key string) string {
	return tr.MsgData(key, nil)
}

// MsgData translates a key with template data. A missing key degrades to the
// key itself so output never goes blank.
func (tr *Translator) MsgData(key string, data map[string]any) string {
	if tr.Localizer == nil {
		return key
	}
	msg, err := tr.Localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}
