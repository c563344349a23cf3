package config

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/keys"
	"github.com/nhle/crmterm/internal/mailcheck"
	"github.com/nhle/crmterm/internal/model"
)

type fakeBackend struct {
	imap      *model.IMAPSettings
	smtp      *model.SMTPSettings
	smtpErr   error
	savedIMAP []model.IMAPSettings
	saveErr   error
}

func (f *fakeBackend) IMAPSettings(context.Context) (*model.IMAPSettings, error) {
	return f.imap, nil
}

func (f *fakeBackend) SMTPSettings(context.Context) (*model.SMTPSettings, error) {
	return f.smtp, f.smtpErr
}

func (f *fakeBackend) UpdateIMAPSettings(_ context.Context, in model.IMAPSettings) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedIMAP = append(f.savedIMAP, in)
	return nil
}

func (f *fakeBackend) UpdateSMTPSettings(context.Context, model.SMTPSettings) error {
	return f.saveErr
}

func passingReport(protocol string) *mailcheck.Report {
	return &mailcheck.Report{Protocol: protocol, Address: "mail.example.com:993", Steps: []mailcheck.Step{{Name: "connect"}, {Name: "login"}}}
}

func failingReport(protocol string) *mailcheck.Report {
	return &mailcheck.Report{Protocol: protocol, Address: "mail.example.com:993", Steps: []mailcheck.Step{{Name: "connect"}, {Name: "login", Err: errors.New("bad credentials")}}}
}

func newView(b *fakeBackend) Model {
	return New(b, keys.DefaultKeyMap(), i18n.Must("en"), 100, 40)
}

func TestLoadSettingsKeepsPartialResults(t *testing.T) {
	b := &fakeBackend{
		imap:    &model.IMAPSettings{IMAPServer: "imap.example.com", IMAPPort: 993, IMAPUsername: "ada", UseIMAPSSL: true},
		smtpErr: errors.New("boom"),
	}
	m := newView(b)

	m, _ = m.Update(m.Init()())
	assert.Contains(t, m.View(), "imap.example.com:993")
	assert.NotEmpty(t, m.errMsg)
}

func TestFailedProbeDoesNotSave(t *testing.T) {
	b := &fakeBackend{}
	m := newView(b)
	m.probeIMAP = func(context.Context, model.IMAPSettings) *mailcheck.Report { return failingReport("imap") }

	msg := m.probeAndSaveIMAP(model.IMAPSettings{IMAPServer: "mail.example.com", IMAPPort: 993})()
	m, cmd := m.Update(msg)

	assert.Nil(t, cmd)
	assert.Empty(t, b.savedIMAP)
	assert.Equal(t, ModeProbeResult, m.Mode())
	assert.Contains(t, m.View(), "bad credentials")
}

func TestPassingProbeSavesAndAnnounces(t *testing.T) {
	b := &fakeBackend{}
	m := newView(b)
	m.probeIMAP = func(context.Context, model.IMAPSettings) *mailcheck.Report { return passingReport("imap") }

	in := model.IMAPSettings{IMAPServer: "mail.example.com", IMAPPort: 993, IMAPUsername: "ada", IMAPPassword: "pw"}
	msg := m.probeAndSaveIMAP(in)()
	m, cmd := m.Update(msg)

	require.Len(t, b.savedIMAP, 1)
	assert.Equal(t, in, b.savedIMAP[0])
	require.NotNil(t, cmd)

	var announced bool
	for _, c := range cmd().(tea.BatchMsg) {
		if _, ok := c().(SettingsSavedMsg); ok {
			announced = true
		}
	}
	assert.True(t, announced)
	assert.Equal(t, ModeProbeResult, m.Mode())
}

func TestSaveErrorIsShown(t *testing.T) {
	b := &fakeBackend{saveErr: errors.New("profile locked")}
	m := newView(b)
	m.probeIMAP = func(context.Context, model.IMAPSettings) *mailcheck.Report { return passingReport("imap") }

	m, cmd := m.Update(m.probeAndSaveIMAP(model.IMAPSettings{})())
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "profile locked")
}

func TestHostFieldMayCarryPort(t *testing.T) {
	m := newView(&fakeBackend{})
	*m.fb = formBindings{host: "mail.example.com:1143", port: "993", username: " ada ", password: "pw"}

	s := m.imapFromForm()
	assert.Equal(t, "mail.example.com", s.IMAPServer)
	assert.Equal(t, 1143, s.IMAPPort)
	assert.Equal(t, "ada", s.IMAPUsername)
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, validatePort("587"))
	assert.Error(t, validatePort(""))
	assert.Error(t, validatePort("abc"))
	assert.Error(t, validatePort("70000"))
}
