package i18n

import (
	"sort"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func catalogIDs(t *testing.T, file string) []string {
	t.Helper()
	data, err := locales.ReadFile(file)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, toml.Unmarshal(data, &raw))

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func TestCatalogsHaveTheSameMessages(t *testing.T) {
	en := catalogIDs(t, "locales/active.en.toml")
	tr := catalogIDs(t, "locales/active.tr.toml")
	assert.Equal(t, en, tr)
}

func TestTranslate(t *testing.T) {
	en := Must("en")
	assert.Equal(t, "Inbox", en.T("tab_inbox"))

	tr := Must("tr")
	assert.Equal(t, language.Turkish, tr.Language())
	assert.Equal(t, "Gelen", tr.T("tab_inbox"))
}

func TestTemplateData(t *testing.T) {
	got := Must("en").TWithData("imap_missing_fields", map[string]any{"Fields": "imap_server, imap_port"})
	assert.Equal(t, "Missing: imap_server, imap_port", got)
}

func TestPlural(t *testing.T) {
	en := Must("en")
	assert.Equal(t, "1 opportunity created.", en.TPlural("banner_opportunities_created", 1))
	assert.Equal(t, "3 opportunities created.", en.TPlural("banner_opportunities_created", 3))
}

func TestUnknownLanguageFallsBackToEnglish(t *testing.T) {
	tr := Must("xx")
	assert.Equal(t, language.English, tr.Language())
	assert.Equal(t, "Inbox", tr.T("tab_inbox"))
}

func TestMissingMessageReturnsID(t *testing.T) {
	assert.Equal(t, "no_such_message", Must("en").T("no_such_message"))

	var nilTr *Translator
	assert.Equal(t, "tab_inbox", nilTr.T("tab_inbox"))
}
