package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promptCmd(input string) (*cobra.Command, *bufio.Reader, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	return cmd, bufio.NewReader(strings.NewReader(input)), out
}

func TestPromptRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "admin", input: "1\n", want: "admin"},
		{name: "editor", input: "2\n", want: "editor"},
		{name: "user", input: "3\n", want: "user"},
		{name: "out of range", input: "4\n", wantErr: true},
		{name: "not a number", input: "admin\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, in, out := promptCmd(tt.input)

			got, err := promptRole(cmd, in)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Select a role")
		})
	}
}

func TestPromptLine(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		cmd, in, _ := promptCmd("  alice@example.com  \n")

		got, err := promptLine(cmd, in, "Email: ")

		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", got)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		cmd, in, _ := promptCmd("\n")

		_, err := promptLine(cmd, in, "Email: ")

		assert.Error(t, err)
	})
}

func TestPromptPassword(t *testing.T) {
	t.Run("accepts matching strong password", func(t *testing.T) {
		cmd, in, _ := promptCmd("Str0ng!pass\nStr0ng!pass\n")

		got, err := promptPassword(cmd, in)

		require.NoError(t, err)
		assert.Equal(t, "Str0ng!pass", got)
	})

	t.Run("reprompts on mismatch", func(t *testing.T) {
		cmd, in, out := promptCmd("Str0ng!pass\nother\nStr0ng!pass\nStr0ng!pass\n")

		got, err := promptPassword(cmd, in)

		require.NoError(t, err)
		assert.Equal(t, "Str0ng!pass", got)
		assert.Contains(t, out.String(), "passwords do not match")
	})

	t.Run("rejects weak passwords until attempts run out", func(t *testing.T) {
		cmd, in, _ := promptCmd("short\nshort\nshort\n")

		_, err := promptPassword(cmd, in)

		assert.Error(t, err)
	})
}
