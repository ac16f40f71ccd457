package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempestsim/tempest/internal/core/bench"
	"github.com/tempestsim/tempest/internal/core/command"
	"github.com/tempestsim/tempest/internal/core/observability/log"
	"github.com/tempestsim/tempest/internal/core/store"
)

type stubModule struct {
	name    string
	version string
	flag    store.Component
}

func (s *stubModule) Name() string                   { return s.name }
func (s *stubModule) Version() string                { return s.version }
func (s *stubModule) Components() []store.Component  { return []store.Component{s.flag} }
func (s *stubModule) FlagComponent() store.Component { return s.flag }
func (s *stubModule) Systems() []System              { return nil }
func (s *stubModule) Commands() []command.Command    { return nil }

func stubFactory(name, version string) Factory {
	return FactoryFunc(func(ctx *Context) (Module, error) {
		return &stubModule{
			name:    name,
			version: version,
			flag:    ctx.Component(name + ".flag"),
		}, nil
	})
}

func init() {
	Register("test.alpha", stubFactory("Alpha", "1.0"))
	Register("test.beta", stubFactory("Beta", "1.0"))
	Register("test.dup.v1", stubFactory("Dup", "1.0"))
	Register("test.dup.v2", stubFactory("Dup", "2.0"))
	Register("test.broken", FactoryFunc(func(ctx *Context) (Module, error) {
		return nil, os.ErrInvalid
	}))
}

func newTestContext(t *testing.T) *Context {
	t.Helper()
	s, _, err := store.New(store.Config{MaxEntities: 64, MaxComponents: 16}, log.Nop())
	require.NoError(t, err)
	return NewContext(s, bench.NewRecorder(), log.Nop())
}

func writeBundle(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestReloadInstalledScansBundles(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "alpha.module.yml", "bundle: alpha\nfactories: [test.alpha]\n")
	writeBundle(t, dir, "beta.module.yml", "bundle: beta\nfactories: [test.beta]\n")
	writeBundle(t, dir, "notes.txt", "not a bundle")

	m := NewManager(dir, newTestContext(t), log.Nop())
	require.NoError(t, m.ReloadInstalled())

	names, err := m.AvailableModules()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta"}, names)
}

func TestDuplicateModuleNameLastWins(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "a_first.module.yml", "bundle: first\nfactories: [test.dup.v1]\n")
	writeBundle(t, dir, "b_second.module.yml", "bundle: second\nfactories: [test.dup.v2]\n")

	m := NewManager(dir, newTestContext(t), log.Nop())
	require.NoError(t, m.ReloadInstalled())

	names, err := m.AvailableModules()
	require.NoError(t, err)
	assert.Equal(t, []string{"Dup"}, names)

	mod, err := m.ResolveModule("Dup")
	require.NoError(t, err)
	require.NotNil(t, mod)
	assert.Equal(t, "2.0", mod.Version())
}

func TestBrokenBundlesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "bad_yaml.module.yml", "factories: [unterminated\n")
	writeBundle(t, dir, "bad_factory.module.yml", "factories: [test.broken]\n")
	writeBundle(t, dir, "missing.module.yml", "factories: [test.not.registered]\n")
	writeBundle(t, dir, "good.module.yml", "factories: [test.alpha]\n")

	m := NewManager(dir, newTestContext(t), log.Nop())
	require.NoError(t, m.ReloadInstalled())

	names, err := m.AvailableModules()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, names)
}

func TestHalfLoadedBundleRegistersNothing(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "mixed.module.yml", "factories: [test.alpha, test.broken]\n")

	m := NewManager(dir, newTestContext(t), log.Nop())
	require.NoError(t, m.ReloadInstalled())

	names, err := m.AvailableModules()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMissingScanDirIsCreated(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bundles")

	m := NewManager(dir, newTestContext(t), log.Nop())
	require.NoError(t, m.ReloadInstalled())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResolveTriggersLazyRescan(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "alpha.module.yml", "factories: [test.alpha]\n")

	m := NewManager(dir, newTestContext(t), log.Nop())

	mod, err := m.ResolveModule("Alpha")
	require.NoError(t, err)
	first := mod

	// Cached until reset: same instance back.
	again, err := m.ResolveModule("Alpha")
	require.NoError(t, err)
	assert.Same(t, first, again)

	m.Reset()
	fresh, err := m.ResolveModule("Alpha")
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
}

func TestResolveUnknownModule(t *testing.T) {
	m := NewManager(t.TempDir(), newTestContext(t), log.Nop())
	_, err := m.ResolveModule("Nope")
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestInstallBundleRejectsBadSources(t *testing.T) {
	m := NewManager(t.TempDir(), newTestContext(t), log.Nop())

	err := m.InstallBundle(filepath.Join(t.TempDir(), "ghost.module.yml"))
	assert.Error(t, err)

	src := filepath.Join(t.TempDir(), "plain.yml")
	require.NoError(t, os.WriteFile(src, []byte("factories: [test.alpha]\n"), 0o644))
	assert.ErrorIs(t, m.InstallBundle(src), ErrBundleFormat)
}

func TestInstallBundleCopiesAndReloads(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "alpha.module.yml")
	require.NoError(t, os.WriteFile(src, []byte("factories: [test.alpha]\n"), 0o644))

	dir := t.TempDir()
	m := NewManager(dir, newTestContext(t), log.Nop())
	require.NoError(t, m.InstallBundle(src))

	_, err := os.Stat(filepath.Join(dir, "alpha.module.yml"))
	require.NoError(t, err)

	names, err := m.AvailableModules()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, names)
}

func TestInstallFactoryBypassesDisk(t *testing.T) {
	m := NewManager(t.TempDir(), newTestContext(t), log.Nop())

	mod, err := m.InstallFactory(stubFactory("Direct", "1.0"))
	require.NoError(t, err)
	assert.Equal(t, "Direct", mod.Name())

	replaced, err := m.InstallFactory(stubFactory("Direct", "2.0"))
	require.NoError(t, err)
	assert.Equal(t, "2.0", replaced.Version())

	names, err := m.AvailableModules()
	require.NoError(t, err)
	assert.Equal(t, []string{"Direct"}, names)
}

func TestUninstall(t *testing.T) {
	m := NewManager(t.TempDir(), newTestContext(t), log.Nop())
	_, err := m.InstallFactory(stubFactory("Gone", "1.0"))
	require.NoError(t, err)

	require.NoError(t, m.Uninstall("Gone"))
	assert.ErrorIs(t, m.Uninstall("Gone"), ErrModuleNotFound)
}

func TestManifestParamsReachFactory(t *testing.T) {
	var seen map[string]string
	Register("test.params", FactoryFunc(func(ctx *Context) (Module, error) {
		seen = ctx.Params
		return &stubModule{name: "Params", version: "1.0"}, nil
	}))

	dir := t.TempDir()
	writeBundle(t, dir, "params.module.yml",
		"factories: [test.params]\nparams:\n  gravity: \"9.81\"\n")

	m := NewManager(dir, newTestContext(t), log.Nop())
	require.NoError(t, m.ReloadInstalled())
	assert.Equal(t, map[string]string{"gravity": "9.81"}, seen)
}
