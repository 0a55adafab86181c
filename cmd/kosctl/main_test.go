package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/lalith-99/kosboard/internal/service"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintReminders(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	err := printReminders(cmd, []service.Reminder{
		{RoomNumber: "A-101", TenantName: "Budi", TenantPhone: "0812", DueDate: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), DaysLeft: 0, StatusText: "Today"},
		{RoomNumber: "A-102", TenantName: "Sari", TenantPhone: "0813", DueDate: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), DaysLeft: 3, StatusText: "3 days left"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ROOM"))
	assert.Contains(t, lines[1], "2026-03-05")
	assert.Contains(t, lines[1], "Today")
	assert.Contains(t, lines[2], "3 days left")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"migrate", "seed", "create-admin", "reminders"} {
		assert.True(t, names[want], want)
	}
}
