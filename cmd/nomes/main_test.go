package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/nomes/internal/api"
	"github.com/verte-zerg/nomes/internal/config"
	"github.com/verte-zerg/nomes/internal/model"
)

type stubSource struct {
	ranking []model.NameRecord
	history []model.NameRecord
	err     error
}

func (s stubSource) Ranking(context.Context) ([]model.NameRecord, error) {
	return s.ranking, s.err
}

func (s stubSource) NameHistory(context.Context, string) ([]model.NameRecord, error) {
	return s.history, s.err
}

func isolateHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv(config.EnvAPIURL, "")
	return dir
}

func TestResolveConfigPrecedence(t *testing.T) {
	isolateHome(t)
	path := config.DefaultConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
base-url = "http://file.example"
timeout = "2s"

[ui]
toast-duration = "3s"
color = false
`), 0o644))

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags(nil))
	cfg, err := resolveConfig(cmd)
	require.NoError(t, err)
	require.Equal(t, "http://file.example", cfg.APIBaseURL)
	require.Equal(t, 2*time.Second, cfg.Timeout)
	require.Equal(t, 3*time.Second, cfg.ToastDuration)
	require.False(t, cfg.ForceColor)

	t.Setenv(config.EnvAPIURL, "http://env.example")
	cmd = newRootCmd()
	require.NoError(t, cmd.ParseFlags(nil))
	cfg, err = resolveConfig(cmd)
	require.NoError(t, err)
	require.Equal(t, "http://env.example", cfg.APIBaseURL)

	cmd = newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--api-url", "http://flag.example", "--timeout", "7s"}))
	cfg, err = resolveConfig(cmd)
	require.NoError(t, err)
	require.Equal(t, "http://flag.example", cfg.APIBaseURL)
	require.Equal(t, 7*time.Second, cfg.Timeout)
}

func TestResolveConfigDefaults(t *testing.T) {
	isolateHome(t)
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags(nil))
	cfg, err := resolveConfig(cmd)
	require.NoError(t, err)
	require.Equal(t, api.DefaultBaseURL, cfg.APIBaseURL)
	require.Equal(t, defaultTimeout, cfg.Timeout)
	require.Equal(t, defaultToastDuration, cfg.ToastDuration)
	require.True(t, cfg.ForceColor)
}

func TestValidateConfig(t *testing.T) {
	valid := model.Config{APIBaseURL: "https://x", Timeout: time.Second, ToastDuration: time.Second}
	require.NoError(t, validateConfig(valid))

	bad := valid
	bad.APIBaseURL = "ftp://x"
	require.Error(t, validateConfig(bad))

	bad = valid
	bad.Timeout = 0
	require.Error(t, validateConfig(bad))
}

func TestWriteConfigTemplateKeepsExistingFile(t *testing.T) {
	isolateHome(t)
	path := config.DefaultConfigPath()
	require.NoError(t, writeConfigTemplate(path))

	_, err := config.LoadConfig(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0o644))
	require.NoError(t, writeConfigTemplate(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "# mine\n", string(data))
}

func TestPrintRankingTable(t *testing.T) {
	src := stubSource{ranking: []model.NameRecord{
		{Nome: "MARIA", Frequencia: 11734129},
		{Nome: "JOSE", Frequencia: 5754529},
	}}
	var out bytes.Buffer
	require.NoError(t, printRanking(context.Background(), &out, src, true, nil))
	require.Contains(t, out.String(), "Maria")
	require.Contains(t, out.String(), "11.700.000")
}

func TestPrintSearchNotFound(t *testing.T) {
	var out bytes.Buffer
	err := printSearch(context.Background(), &out, stubSource{}, "xyzabc", true, nil)
	require.EqualError(t, err, notFoundMessage)

	err = printSearch(context.Background(), &out, stubSource{err: errors.Wrap(api.ErrStatus, "404")}, "xyzabc", true, nil)
	require.EqualError(t, err, notFoundMessage)

	failed := errors.Mark(errors.New("dial tcp"), api.ErrRequestFailed)
	err = printSearch(context.Background(), &out, stubSource{err: failed}, "ana", true, nil)
	require.ErrorContains(t, err, requestFailedMessage)
	require.Empty(t, out.String())
}

func TestPrintSearchChart(t *testing.T) {
	src := stubSource{history: []model.NameRecord{{Periodo: "1980", Frequencia: 200}}}
	var out bytes.Buffer
	require.NoError(t, printSearch(context.Background(), &out, src, "  Ana ", false, nil))
	require.Contains(t, out.String(), "Frequência de Ana por período")
	require.Contains(t, out.String(), "1980")
	require.Contains(t, out.String(), "200")
}

func TestPrintRankingColorPreference(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	src := stubSource{ranking: []model.NameRecord{{Nome: "MARIA", Frequencia: 500}}}
	on, off := true, false

	var out bytes.Buffer
	require.NoError(t, printRanking(context.Background(), &out, src, false, &on))
	require.Contains(t, out.String(), "\x1b[")

	out.Reset()
	require.NoError(t, printRanking(context.Background(), &out, src, false, &off))
	require.NotContains(t, out.String(), "\x1b[")
	require.Contains(t, out.String(), "Ranking geral")
	require.Contains(t, out.String(), "Maria")

	out.Reset()
	require.NoError(t, printRanking(context.Background(), &out, src, false, nil))
	require.NotContains(t, out.String(), "\x1b[")
}

func TestColorPreferenceFollowsConfig(t *testing.T) {
	isolateHome(t)
	cmd := newRankingCmd()
	root := newRootCmd()
	root.AddCommand(cmd)
	require.NoError(t, cmd.ParseFlags(nil))
	cfg, err := resolveConfig(cmd)
	require.NoError(t, err)
	require.Nil(t, colorPreference(cfg))

	require.NoError(t, cmd.ParseFlags([]string{"--color=false"}))
	cfg, err = resolveConfig(cmd)
	require.NoError(t, err)
	pref := colorPreference(cfg)
	require.NotNil(t, pref)
	require.False(t, *pref)
}
