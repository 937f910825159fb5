package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/wbxmeet/internal/logging"
)

func newAuditBuffer(config AuditConfig) (*AuditLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), config), &buf
}

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestAuditLogger_LogChange(t *testing.T) {
	al, buf := newAuditBuffer(AuditConfig{Enabled: true})

	al.LogChange(context.Background(), Change{
		Operation:  "CreateMeeting",
		Source:     "cli",
		Site:       "acme",
		WebExID:    "bob",
		MeetingKey: "123456789",
		Success:    true,
		Duration:   250 * time.Millisecond,
	})

	rec := decodeRecord(t, buf)
	assert.Equal(t, "meeting change", rec["msg"])
	assert.Equal(t, "audit", rec["log_type"])
	assert.Equal(t, "CreateMeeting", rec["operation"])
	assert.Equal(t, "acme", rec["site"])
	assert.Equal(t, logging.AnonymizeUser("bob"), rec["user"])
	assert.Equal(t, "123456789", rec["meeting_key"])
	assert.Equal(t, true, rec["success"])
	assert.NotContains(t, rec, "error")
}

func TestAuditLogger_IncludePII(t *testing.T) {
	al, buf := newAuditBuffer(AuditConfig{Enabled: true, IncludePII: true})

	al.LogChange(context.Background(), Change{Operation: "DelMeeting", WebExID: "bob", Error: "FAILURE: not found"})

	rec := decodeRecord(t, buf)
	assert.Equal(t, "bob", rec["user"])
	assert.Equal(t, "FAILURE: not found", rec["error"])
	assert.Equal(t, false, rec["success"])
}

func TestAuditLogger_Disabled(t *testing.T) {
	al, buf := newAuditBuffer(AuditConfig{Enabled: false})
	al.LogChange(context.Background(), Change{Operation: "CreateMeeting"})
	assert.Zero(t, buf.Len())

	var nilLogger *AuditLogger
	nilLogger.LogChange(context.Background(), Change{Operation: "CreateMeeting"})
}
