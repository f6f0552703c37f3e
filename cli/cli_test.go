package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabrefresh/tabrefresh/cli/core"
	"github.com/tabrefresh/tabrefresh/tableau"
)

func TestRefreshCmd(t *testing.T) {
	cmd := RefreshCmd()

	assert.Equal(t, "refresh", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	shorthands := map[string]string{
		"server":      "s",
		"name":        "n",
		"project":     "p",
		"type":        "x",
		"token":       "t",
		"token_value": "v",
		"site_url":    "u",
		"insecure":    "k",
	}
	for name, short := range shorthands {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, short, flag.Shorthand, name)
	}
	for _, name := range []string{"ca-cert", "api-version", "timeout"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestRootExposesRefreshFlags(t *testing.T) {
	root := core.NewRootCommand()

	for _, name := range []string{"server", "name", "project", "type", "token", "token_value", "site_url"} {
		assert.NotNil(t, root.Flags().Lookup(name), name)
	}
	for _, name := range []string{"output", "verbose", "config", "env-file"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
	assert.NotNil(t, root.RunE)

	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["refresh"])
	assert.True(t, names["list"])
	assert.True(t, names["version"])
	assert.True(t, names["completion"])
}

func TestListCmd(t *testing.T) {
	cmd := ListCmd()

	assert.Equal(t, "list", cmd.Use)
	assert.Contains(t, cmd.Aliases, "ls")
	assert.NotNil(t, cmd.Flags().Lookup("project"))
}

func TestList(t *testing.T) {
	t.Run("all projects", func(t *testing.T) {
		srv := newFixture(t)

		out, err := runCLI(t, append([]string{"list"}, baseArgs(srv, "-n", "Report", "-x", "workbook")...)...)
		require.NoError(t, err)

		assert.Contains(t, out, "wb-report-a")
		assert.Contains(t, out, "wb-report-b")
		assert.Empty(t, srv.Refreshed())
		assert.Equal(t, 1, srv.SignOuts())
	})

	t.Run("narrowed by project", func(t *testing.T) {
		srv := newFixture(t)

		out, err := runCLI(t, append([]string{"list"}, baseArgs(srv, "-n", "Report", "-x", "workbook", "-p", "b", "-o", "json")...)...)
		require.NoError(t, err)

		var result core.ListResult
		require.NoError(t, json.Unmarshal([]byte(out), &result), out)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "wb-report-b", result.Items[0].ID)
		assert.Equal(t, "B", result.Items[0].ProjectName)
	})

	t.Run("no match", func(t *testing.T) {
		srv := newFixture(t)

		out, err := runCLI(t, append([]string{"list"}, baseArgs(srv, "-n", "Missing", "-x", "datasource", "-o", "json")...)...)
		require.NoError(t, err)

		var result core.ListResult
		require.NoError(t, json.Unmarshal([]byte(out), &result), out)
		assert.Empty(t, result.Items)
	})

	t.Run("project is optional but type is not", func(t *testing.T) {
		srv := newFixture(t)

		_, err := runCLI(t, append([]string{"list"}, baseArgs(srv, "-n", "Report")...)...)
		require.Error(t, err)
		assert.Equal(t, 2, core.ExitCode(err))
		assert.Contains(t, err.Error(), `"type"`)
		assert.NotContains(t, err.Error(), `"project"`)
	})
}

func TestVersion(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:")
	assert.Contains(t, out, "Platform: "+tableau.GetOsArch())

	out, err = runCLI(t, "version", "-o", "json")
	require.NoError(t, err)
	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info), out)
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.Commit)
}

func TestCompletion(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "_get_comp_words_by_ref")
	assert.Contains(t, out, "tabrefresh")

	_, err = runCLI(t, "completion", "tcsh")
	require.Error(t, err)
	assert.Equal(t, 2, core.ExitCode(err))
}

func TestDocs(t *testing.T) {
	isolate(t)
	dir := filepath.Join(t.TempDir(), "docs")

	_, err := runCLI(t, "docs", "-d", dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "tabrefresh.md"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "tabrefresh_refresh.md"))
	assert.NoError(t, err)
}
