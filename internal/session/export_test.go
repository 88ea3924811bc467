package session_test

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportJSON(t *testing.T) {
	api := &fakeAPI{reply: "**Answer:** closures capture variables."}
	c := newController(t, api, nil)
	require.NoError(t, c.Send(context.Background(), "what is a closure?"))

	dir := t.TempDir()
	path, err := c.Export(dir)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".json"))
	assert.Contains(t, path, time.Now().Format("2006-01-02"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var snap struct {
		ExportedAt    time.Time `json:"exportedAt"`
		TotalMessages int       `json:"totalMessages"`
		Messages      []struct {
			Content string `json:"content"`
			Sender  string `json:"sender"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, 2, snap.TotalMessages)
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, "user", snap.Messages[0].Sender)
	assert.False(t, snap.ExportedAt.IsZero())
}

func TestExportHTML(t *testing.T) {
	api := &fakeAPI{reply: "# Summary\n\n**bold** point"}
	c := newController(t, api, nil)
	require.NoError(t, c.Send(context.Background(), "summarize <this>"))

	path, err := c.ExportHTML(t.TempDir())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".html"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)

	// Tutor markdown is rendered, user text is escaped verbatim.
	assert.Contains(t, html, "<h1>Summary</h1>")
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, "summarize &lt;this&gt;")
	assert.NotContains(t, html, "summarize <this>")
}
