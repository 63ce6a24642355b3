package cli

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("  hello world \n"), "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	require.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetSimpleTextEmptyEOF(t *testing.T) {
	var out bytes.Buffer
	_, err := GetSimpleText(rdr(""), "Name?", &out)
	require.ErrorIs(t, err, io.EOF)
}

func stubTerminal(t *testing.T, tty bool, read func(int) ([]byte, error)) {
	t.Helper()
	oldRead, oldTTY := readPassword, isTerminal
	readPassword = read
	isTerminal = func(int) bool { return tty }
	t.Cleanup(func() { readPassword, isTerminal = oldRead, oldTTY })
}

func TestGetPassword(t *testing.T) {
	stubTerminal(t, true, func(int) ([]byte, error) { return []byte("s3cret"), nil })

	var out bytes.Buffer
	pw, err := GetPassword(rdr("not used\n"), "Password", &out)
	require.NoError(t, err)
	require.Equal(t, []byte("s3cret"), pw)
	require.Equal(t, "Password: \n", out.String())
}

func TestGetPassword_Error(t *testing.T) {
	stubTerminal(t, true, func(int) ([]byte, error) { return nil, errors.New("boom") })

	var out bytes.Buffer
	_, err := GetPassword(rdr(""), "Password", &out)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetPassword_PipedInput(t *testing.T) {
	stubTerminal(t, false, func(int) ([]byte, error) {
		t.Fatal("terminal must not be read")
		return nil, nil
	})

	var out bytes.Buffer
	r := rdr(" spaced pw \r\nlast")
	pw, err := GetPassword(r, "Password", &out)
	require.NoError(t, err)
	require.Equal(t, []byte(" spaced pw "), pw, "only the line ending is stripped")
	require.Equal(t, "Password: ", out.String())

	pw, err = GetPassword(r, "Again", &out)
	require.NoError(t, err)
	require.Equal(t, []byte("last"), pw)

	_, err = GetPassword(r, "Again", &out)
	require.ErrorIs(t, err, io.EOF)
}
