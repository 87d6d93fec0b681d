package interfaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFingerprint(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Fingerprint
		wantErr bool
	}{
		{name: "upper case", input: "0123456789ABCDEF0123456789ABCDEF01234567", want: "0123456789ABCDEF0123456789ABCDEF01234567"},
		{name: "lower case with spaces", input: "0123 4567 89ab cdef", want: "0123456789ABCDEF"},
		{name: "0x prefix", input: "0xDEADBEEFDEADBEEF", want: "DEADBEEFDEADBEEF"},
		{name: "too short", input: "DEADBEEF", wantErr: true},
		{name: "too long", input: "0123456789ABCDEF0123456789ABCDEF0123456789", wantErr: true},
		{name: "odd length", input: "0123456789ABCDEF0", wantErr: true},
		{name: "not hex", input: "0123456789ABCDEZ", wantErr: true},
		{name: "path", input: "../../etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewFingerprint(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFingerprint)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKey_UnmarshalJSON(t *testing.T) {
	var key Key
	input := `{"fingerprint":"ABCD","uid":"https://example.com","pub":"rsa2048","ssh_key_size":2048}`
	require.NoError(t, json.Unmarshal([]byte(input), &key))

	assert.Equal(t, "ABCD", key.Fingerprint)
	assert.Equal(t, "https://example.com", key.UID)
	assert.Equal(t, "example.com", key.Name)
	assert.Equal(t, HTTPSKeyScheme, key.Scheme())
	assert.JSONEq(t, `"rsa2048"`, string(key.Extra["pub"]))
	assert.JSONEq(t, `2048`, string(key.Extra["ssh_key_size"]))
}

func TestKey_RoundTripKeepsExtraFields(t *testing.T) {
	var key Key
	input := `{"fingerprint":"ABCD","uid":"ssh://host.example.org","expires":"never"}`
	require.NoError(t, json.Unmarshal([]byte(input), &key))

	out, err := json.Marshal(key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fingerprint":"ABCD","uid":"ssh://host.example.org","name":"host.example.org","expires":"never"}`, string(out))
}

func TestKey_MissingUID(t *testing.T) {
	var key Key
	err := json.Unmarshal([]byte(`{"fingerprint":"ABCD"}`), &key)
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestKey_UnknownScheme(t *testing.T) {
	var key Key
	require.NoError(t, json.Unmarshal([]byte(`{"uid":"xmpp://chat.example.org"}`), &key))
	assert.Empty(t, key.Scheme())
	assert.Equal(t, "xmpp://chat.example.org", key.Name)
}

func TestActionError(t *testing.T) {
	var err error = &ActionError{Module: "monkeysphere", ExitCode: 2, Message: "gpg: no such key"}
	wrapped := fmt.Errorf("import: %w", err)

	assert.True(t, errors.Is(wrapped, ErrActionFailed))
	var actionErr *ActionError
	require.True(t, errors.As(wrapped, &actionErr))
	assert.Equal(t, "gpg: no such key", actionErr.Error())
}

func TestNotifications(t *testing.T) {
	var notes Notifications
	notes.Success("a")
	notes.Error("b")
	notes.Info("c")
	notes.Extend([]Notification{{Severity: SeverityInfo, Message: "d"}})

	assert.Equal(t, 4, notes.Len())
	assert.Equal(t, []Notification{
		{Severity: SeveritySuccess, Message: "a"},
		{Severity: SeverityError, Message: "b"},
		{Severity: SeverityInfo, Message: "c"},
		{Severity: SeverityInfo, Message: "d"},
	}, notes.All())
}

func TestNotifications_Nil(t *testing.T) {
	var notes *Notifications
	assert.NotPanics(t, func() {
		notes.Success("dropped")
		notes.Extend([]Notification{{Severity: SeverityInfo, Message: "dropped"}})
	})
	assert.Equal(t, 0, notes.Len())
	assert.Nil(t, notes.All())
}

func TestNotifications_Concurrent(t *testing.T) {
	var notes Notifications
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			notes.Info("x")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, notes.Len())
}
