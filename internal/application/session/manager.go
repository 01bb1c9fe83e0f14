// Package session manages the live provider session: which provider is
// active, what its settings are, and what each provider's settings were
// the last time it was active.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/jbctechsolutions/parley/internal/application/ports"
	"github.com/jbctechsolutions/parley/internal/domain/errors"
	"github.com/jbctechsolutions/parley/internal/domain/provider"
	"github.com/jbctechsolutions/parley/internal/domain/session"
	"github.com/jbctechsolutions/parley/internal/infrastructure/logging"
)

// Manager tracks the active provider and a per-identity bank of remembered
// settings. Switching away from a provider banks its settings; switching
// back restores them. Every mutation is written through to the settings
// store so a new process starts where the last one left off.
type Manager struct {
	mu     sync.Mutex
	active session.Settings
	bank   map[provider.Identity]session.Settings
	store  ports.SettingsStore
	logger *logging.Logger
}

// NewManager creates a session manager with the given persistence store.
// The store may be nil, in which case settings live only for the process.
// The initial active provider is OpenAI with stored settings when present,
// documented defaults otherwise.
func NewManager(store ports.SettingsStore) (*Manager, error) {
	return NewManagerWithLogger(store, nil)
}

// NewManagerWithLogger is NewManager with an explicit logger for provider
// switch events. A nil logger falls back to the default logger.
func NewManagerWithLogger(store ports.SettingsStore, logger *logging.Logger) (*Manager, error) {
	if logger == nil {
		logger = logging.Default()
	}
	m := &Manager{
		bank:   make(map[provider.Identity]session.Settings),
		store:  store,
		logger: logger,
	}
	settings, err := m.load(provider.IdentityOpenAI)
	if err != nil {
		return nil, err
	}
	m.active = settings
	return m, nil
}

// Active returns a copy of the settings for the current provider.
func (m *Manager) Active() session.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// ActiveIdentity returns the identity of the current provider.
func (m *Manager) ActiveIdentity() provider.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active.Identity
}

// IsConfigured reports whether the active provider has a credential.
func (m *Manager) IsConfigured() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active.IsConfigured()
}

// SwitchProvider makes id the active provider. The outgoing provider's
// settings are banked and persisted first, then the incoming provider's
// remembered settings are restored. A provider never seen before starts
// from its documented defaults. Switching to the already active provider
// is a no-op.
func (m *Manager) SwitchProvider(id provider.Identity) (session.Settings, error) {
	if !id.IsValid() {
		return session.Settings{}, errors.NewError(errors.CodeValidation,
			fmt.Sprintf("invalid provider identity %q", id), errors.ErrUnknownProvider)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == m.active.Identity {
		return m.active, nil
	}

	if err := m.persistLocked(m.active); err != nil {
		return session.Settings{}, err
	}
	outgoing := m.active.Identity
	m.bank[outgoing] = m.active

	incoming, err := m.load(id)
	if err != nil {
		return session.Settings{}, err
	}
	m.active = incoming
	logging.LogProviderSwitch(context.Background(), m.logger, string(outgoing), string(id))
	return m.active, nil
}

// SetCredential updates and persists the active provider's credential.
func (m *Manager) SetCredential(credential string) error {
	return m.mutate(func(s *session.Settings) { s.Credential = credential })
}

// SetModel updates and persists the active provider's model identifier.
func (m *Manager) SetModel(model string) error {
	if model == "" {
		return errors.NewError(errors.CodeValidation, "model identifier required", nil)
	}
	return m.mutate(func(s *session.Settings) { s.Model = model })
}

// SetBaseURL updates and persists the active provider's endpoint base.
func (m *Manager) SetBaseURL(baseURL string) error {
	if baseURL == "" {
		return errors.NewError(errors.CodeValidation, "base URL required", nil)
	}
	return m.mutate(func(s *session.Settings) { s.BaseURL = baseURL })
}

func (m *Manager) mutate(apply func(*session.Settings)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated := m.active
	apply(&updated)
	if err := m.persistLocked(updated); err != nil {
		return err
	}
	m.active = updated
	m.bank[updated.Identity] = updated
	return nil
}

// load returns the remembered settings for id, consulting the in-process
// bank first, then the store, then the documented defaults.
func (m *Manager) load(id provider.Identity) (session.Settings, error) {
	if banked, ok := m.bank[id]; ok {
		return banked, nil
	}
	if m.store != nil {
		stored, err := m.store.Get(id)
		if err != nil {
			return session.Settings{}, errors.NewError(errors.CodeConfiguration,
				fmt.Sprintf("loading settings for provider %s", id), err)
		}
		if stored != nil {
			m.bank[id] = *stored
			return *stored, nil
		}
	}
	return session.DefaultSettings(id), nil
}

func (m *Manager) persistLocked(s session.Settings) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.Save(s); err != nil {
		return errors.NewError(errors.CodeConfiguration,
			fmt.Sprintf("saving settings for provider %s", s.Identity), err)
	}
	return nil
}
