package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/hangarkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewWriter(&buf)

	n.Notify(context.Background(), Notification{Level: LevelSuccess, Title: "Article created"})
	n.Notify(context.Background(), Notification{Level: LevelError, Title: "Create article failed", Message: "Part number already exists"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"[✓] Article created",
		"[✗] Create article failed: Part number already exists",
	}, lines)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	l := logging.NewTextLogger(&buf, "debug")

	NewLogNotifier(l).Notify(context.Background(), Notification{Level: LevelError, Title: "x", Message: "y"})

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "kind=error")
	assert.Contains(t, out, "title=x")
	assert.Contains(t, out, "message=y")
}

func TestMultiAndRecorder(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi(a, Discard, b)

	m.Notify(context.Background(), Notification{Level: LevelInfo, Message: "online"})

	assert.Len(t, a.All(), 1)
	assert.Equal(t, "online", b.All()[0].String())
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "success", LevelSuccess.String())
	assert.Equal(t, "error", LevelError.String())
}
