package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
)

const (
	ComponentGameSession  = "GameSession"
	ComponentGameUpdate   = "GameUpdate"
	ComponentBackupImport = "BackupImport"
)

// DefaultMigrationComponents maps each routed component to whether it starts
// on the legacy path.
var DefaultMigrationComponents = map[string]bool{
	ComponentGameSession:  false,
	ComponentGameUpdate:   false,
	ComponentBackupImport: false,
}

type MigrationConfig struct {
	ForceLegacy      bool
	LegacyComponents []string
}

type ComponentState struct {
	Name       string `json:"name"`
	UseLegacy  bool   `json:"useLegacy"`
	IsMigrated bool   `json:"isMigrated"`
	HasFailed  bool   `json:"hasFailed"`
	LastError  string `json:"lastError,omitempty"`
}

// MigrationSafety owns one ComponentSafety per component name.
type MigrationSafety struct {
	defaults map[string]bool
	logger   *logging.Logger

	mu         sync.Mutex
	components map[string]*ComponentSafety
}

func NewMigrationSafety(cfg MigrationConfig, logger *logging.Logger) *MigrationSafety {
	if logger == nil {
		logger = logging.Default()
	}

	defaults := make(map[string]bool, len(DefaultMigrationComponents)+len(cfg.LegacyComponents))
	for name, legacy := range DefaultMigrationComponents {
		defaults[name] = legacy || cfg.ForceLegacy
	}
	for _, name := range cfg.LegacyComponents {
		name = strings.TrimSpace(name)
		if name != "" {
			defaults[name] = true
		}
	}

	return &MigrationSafety{
		defaults:   defaults,
		logger:     logger.Named("migration_safety"),
		components: make(map[string]*ComponentSafety, len(defaults)),
	}
}

// Component returns the safety wrapper for name, creating it on first use.
// Unknown names start on the modern path.
func (m *MigrationSafety) Component(name string) *ComponentSafety {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.components[name]; ok {
		return c
	}

	legacy := m.defaults[name]
	c := &ComponentSafety{
		defaultLegacy: legacy,
		logger:        m.logger.With("component", name),
		state: ComponentState{
			Name:       name,
			UseLegacy:  legacy,
			IsMigrated: !legacy,
		},
	}
	m.components[name] = c
	return c
}

// States lists every known component ordered by name.
func (m *MigrationSafety) States() []ComponentState {
	names := make(map[string]struct{}, len(m.defaults))
	for name := range m.defaults {
		names[name] = struct{}{}
	}
	m.mu.Lock()
	for name := range m.components {
		names[name] = struct{}{}
	}
	m.mu.Unlock()

	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	out := make([]ComponentState, 0, len(ordered))
	for _, name := range ordered {
		out = append(out, m.Component(name).State())
	}
	return out
}

// Reset clears the failure latch of name. It returns false for a name that
// was never used or configured.
func (m *MigrationSafety) Reset(name string) bool {
	m.mu.Lock()
	_, configured := m.defaults[name]
	_, used := m.components[name]
	m.mu.Unlock()
	if !configured && !used {
		return false
	}

	m.Component(name).Reset()
	return true
}

// ComponentSafety routes one component between its legacy and modern
// implementation. The first failure of the modern path latches the
// component onto legacy until Reset.
type ComponentSafety struct {
	defaultLegacy bool
	logger        *logging.Logger

	mu    sync.Mutex
	state ComponentState
}

func (c *ComponentSafety) State() ComponentState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *ComponentSafety) UseLegacy() bool {
	return c.State().UseLegacy
}

// WithSafety runs fn. A returned error or panic trips the latch and is
// handed back to the caller.
func (c *ComponentSafety) WithSafety(ctx context.Context, fn func(context.Context) error) error {
	_, err := RunWithSafety(ctx, c, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func RunWithSafety[T any](ctx context.Context, c *ComponentSafety, fn func(context.Context) (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			c.trip(ctx, err)
		}
	}()

	return fn(ctx)
}

// Route runs legacy when the component is on the legacy path, otherwise
// modern under WithSafety.
func (c *ComponentSafety) Route(ctx context.Context, legacy, modern func(context.Context) error) error {
	if c.UseLegacy() {
		return legacy(ctx)
	}
	return c.WithSafety(ctx, modern)
}

// Reset returns the component to its configured starting path.
func (c *ComponentSafety) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.UseLegacy = c.defaultLegacy
	c.state.IsMigrated = !c.defaultLegacy
	c.state.HasFailed = false
	c.state.LastError = ""
}

func (c *ComponentSafety) trip(ctx context.Context, err error) {
	c.mu.Lock()
	first := !c.state.HasFailed
	c.state.UseLegacy = true
	c.state.IsMigrated = false
	c.state.HasFailed = true
	c.state.LastError = err.Error()
	c.mu.Unlock()

	if first {
		c.logger.WarnContext(ctx, "modern path failed, falling back to legacy", "error", err)
		return
	}
	c.logger.ErrorContext(ctx, "component failed", "error", err)
}
