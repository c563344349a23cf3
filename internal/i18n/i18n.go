// Package i18n translates user-facing strings. English and Turkish
// catalogs are embedded in the binary.
package i18n

import (
	"embed"
	"fmt"
	"log"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var locales embed.FS

var supported = []language.Tag{language.English, language.Turkish}

var matcher = language.NewMatcher(supported)

// Translator renders message IDs in one language. A missing translation
// falls back to English and then to the message ID itself.
type Translator struct {
	lang      language.Tag
	localizer *i18n.Localizer
}

// New loads the embedded catalogs and returns a translator for lang, a
// BCP 47 tag such as "tr" or "en-US". Unknown languages get English.
func New(lang string) (*Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range []string{"locales/active.en.toml", "locales/active.tr.toml"} {
		if _, err := bundle.LoadMessageFileFS(locales, file); err != nil {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	tag, _ := language.MatchStrings(matcher, lang)
	base, _ := tag.Base()
	tag = language.Make(base.String())

	return &Translator{
		lang:      tag,
		localizer: i18n.NewLocalizer(bundle, tag.String(), language.English.String()),
	}, nil
}

// Must is New for catalogs that are known to load, such as in tests.
func Must(lang string) *Translator {
	t, err := New(lang)
	if err != nil {
		panic(err)
	}
	return t
}

// Language returns the matched language tag.
func (t *Translator) Language() language.Tag {
	return t.lang
}

// T translates a message ID.
func (t *Translator) T(messageID string) string {
	return t.localize(&i18n.LocalizeConfig{MessageID: messageID})
}

// TWithData translates a message ID with template data.
func (t *Translator) TWithData(messageID string, data map[string]any) string {
	return t.localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
}

// TPlural translates a message ID with plural support. The count is
// available to the template as {{.Count}}.
func (t *Translator) TPlural(messageID string, count int) string {
	return t.localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

func (t *Translator) localize(cfg *i18n.LocalizeConfig) string {
	if t == nil || t.localizer == nil {
		return cfg.MessageID
	}
	// A message found only in the fallback language comes back together
	// with a not-found error.
	msg, err := t.localizer.Localize(cfg)
	if err != nil {
		log.Printf("i18n: %s: %v", cfg.MessageID, err)
	}
	if msg == "" {
		return cfg.MessageID
	}
	return msg
}
