package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snooze-web/internal/story"
	"snooze-web/internal/storyapi/storyapitest"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupRemote(t *testing.T) *storyapitest.Server {
	t.Helper()
	srv := storyapitest.NewServer(t)
	srv.AddStory(story.Story{ID: "s1", Title: "Old", Author: "Ann", URL: "https://a.dev/1", Username: "ann"})
	srv.AddStory(story.Story{ID: "s2", Title: "New", Author: "Bob", URL: "https://b.dev/2", Username: "bob"})

	t.Setenv("SNOOZE_CONFIG_PATH", t.TempDir()+"/missing.yaml")
	t.Setenv("SNOOZE_DEV_MODE", "true")
	t.Setenv("SNOOZE_REMOTE_URL", srv.URL)
	t.Setenv("SNOOZE_REMOTE_RETRY_MAX", "0")
	return srv
}

func TestStoriesCommand(t *testing.T) {
	setupRemote(t)

	out, err := runCommand(t, "stories")
	require.NoError(t, err)
	assert.Equal(t, "s2\tNew (b.dev) by Bob, posted by bob\ns1\tOld (a.dev) by Ann, posted by ann\n2 stories\n", out)
}

func TestStoriesCommandJSON(t *testing.T) {
	setupRemote(t)

	out, err := runCommand(t, "stories", "--json")
	require.NoError(t, err)
	var got []story.Story
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "s2", got[0].ID)
}

func TestStoriesCommandRemoteFailure(t *testing.T) {
	srv := setupRemote(t)
	srv.Fail(http.StatusServiceUnavailable)

	_, err := runCommand(t, "stories")
	require.Error(t, err)
	assert.ErrorIs(t, err, story.ErrServer)
}

func TestStoriesCommandBadConfigPath(t *testing.T) {
	setupRemote(t)

	_, err := runCommand(t, "--config", t.TempDir()+"/nope.yaml", "stories")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}
