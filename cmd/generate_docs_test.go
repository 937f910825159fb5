package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildToolsReference(t *testing.T) {
	md, err := buildToolsReference()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(md, "# MCP Tools Reference\n"))
	assert.Contains(t, md, "- [Webex Meetings Tools](#webex-meetings-tools)\n")
	assert.Contains(t, md, "- [Resources](#resources)\n")
	assert.Contains(t, md, "| `conf_name` | string | yes | Meeting name |\n")
	assert.Contains(t, md, "| `webex://user/profile` | Current User Profile |")
	assert.NotContains(t, md, "## Other")

	// tools are sorted within a category
	assert.Less(t, strings.Index(md, "### webex_create_meeting"), strings.Index(md, "### webex_list_meetings"))

	// only the write tools carry the --yolo note
	assert.Equal(t, 2, strings.Count(md, "registered only with `serve --yolo`"))
	section := md[strings.Index(md, "### webex_delete_meeting"):strings.Index(md, "### webex_get_meeting")]
	assert.Contains(t, section, "serve --yolo")
}

func TestGenerateDocsCmd(t *testing.T) {
	out := filepath.Join(t.TempDir(), "tools.md")

	cmd := newGenerateDocsCmd()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--output", out})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "### webex_get_user")
	assert.Equal(t, "Documentation written to: "+out+"\n", stderr.String())
}

func TestGetCategoryFromToolName(t *testing.T) {
	assert.Equal(t, "Webex Meetings Tools", getCategoryFromToolName("webex_get_user"))
	assert.Equal(t, "Other", getCategoryFromToolName("debug"))
}
