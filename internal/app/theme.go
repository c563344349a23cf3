package app

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/theme"
)

// themeSavedMsg reports whether the theme choice was persisted.
type themeSavedMsg struct {
	name string
	err  error
}

// switchTheme applies the light or dark palette now and saves the choice
// to the config file.
func (m *Model) switchTheme(name string) tea.Cmd {
	if name != "dark" && name != "light" {
		m.setBanner(m.tr.TWithData("error_unknown_theme", map[string]any{"Name": name}), true)
		return nil
	}
	theme.Apply(name)
	m.deps.Config.Display.Theme = name

	path := m.deps.ConfigPath
	cfg := *m.deps.Config
	return func() tea.Msg {
		if path == "" {
			return themeSavedMsg{name: name}
		}
		err := model.SaveConfig(path, &cfg)
		if err != nil {
			log.Printf("saving theme: %v", err)
		}
		return themeSavedMsg{name: name, err: err}
	}
}
