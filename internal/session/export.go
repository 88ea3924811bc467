package session

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GAYIVORE/studybuddy-cli/internal/markdown"
	"github.com/GAYIVORE/studybuddy-cli/internal/models"
)

// exportSnapshot is the downloadable artifact shape.
type exportSnapshot struct {
	ExportedAt    time.Time        `json:"exportedAt"`
	TotalMessages int              `json:"totalMessages"`
	Messages      []models.Message `json:"messages"`
}

// Export serializes the full conversation into a JSON file named with the
// current date inside dir, and returns the written path.
func (c *Controller) Export(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	messages := c.Messages()
	snap := exportSnapshot{
		ExportedAt:    time.Now(),
		TotalMessages: len(messages),
		Messages:      messages,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("studybuddy-chat-%s.json", time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}

	c.logger.Info("conversation exported", "path", path, "messages", len(messages))
	return path, nil
}

const exportCSS = `
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; color: #1a1a2e; }
.message { margin: 1rem 0; padding: 0.75rem 1rem; border-radius: 8px; }
.message.user { background: #e8f0fe; }
.message.assistant { background: #f5f5f5; }
.sender { font-weight: 600; margin-bottom: 0.25rem; }
.timestamp { color: #888; font-size: 0.8rem; margin-left: 0.5rem; font-weight: 400; }
pre { background: #1a1a2e; color: #eee; padding: 0.75rem; border-radius: 6px; overflow-x: auto; }
code { font-family: ui-monospace, monospace; }
blockquote { border-left: 3px solid #ccc; margin-left: 0; padding-left: 1rem; color: #555; }
`

// ExportHTML writes the conversation as a standalone HTML page, with
// assistant messages run through the markdown renderer. Returns the
// written path.
func (c *Controller) ExportHTML(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	messages := c.Messages()

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"UTF-8\">\n")
	sb.WriteString("<title>StudyBuddy conversation</title>\n")
	sb.WriteString("<style>" + exportCSS + "</style>\n")
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString("<h1>StudyBuddy conversation</h1>\n")

	for _, msg := range messages {
		role := "assistant"
		if msg.Sender == models.SenderUser {
			role = "user"
		}
		sb.WriteString(fmt.Sprintf("<div class=\"message %s\">\n", role))
		sb.WriteString(fmt.Sprintf("<div class=\"sender\">%s<span class=\"timestamp\">%s</span></div>\n",
			html.EscapeString(msg.Sender.DisplayName()), msg.Timestamp.Format("Jan 2, 2006 15:04")))

		// User text is shown verbatim; only tutor replies carry markdown.
		if msg.Sender == models.SenderUser {
			sb.WriteString("<div>" + strings.ReplaceAll(html.EscapeString(msg.Content), "\n", "<br>") + "</div>\n")
		} else {
			sb.WriteString("<div>" + markdown.Render(msg.Content) + "</div>\n")
		}
		sb.WriteString("</div>\n")
	}

	sb.WriteString(fmt.Sprintf("<footer><p>Exported on %s · %d messages</p></footer>\n",
		time.Now().Format("January 2, 2006"), len(messages)))
	sb.WriteString("</body>\n</html>\n")

	path := filepath.Join(dir, fmt.Sprintf("studybuddy-chat-%s.html", time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}

	c.logger.Info("conversation exported", "path", path, "messages", len(messages), "format", "html")
	return path, nil
}
