package session_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/file"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func TestJSONMarshaller(t *testing.T) {
	t.Parallel()

	m := session.JSONMarshaller{}

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC().Round(0)
		in := session.Record{
			ID:           "abc",
			Name:         "sessid",
			Lifetime:     now.Add(time.Hour),
			MaximumAge:   time.Minute,
			Domain:       "example.com",
			Path:         "/",
			Secure:       true,
			HTTPOnly:     true,
			LastActivity: now,
			Data:         map[string]any{"user": "alice", "admin": true},
		}

		data, err := m.Marshal(in)
		require.NoError(t, err)

		out, err := m.Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("large integers keep their value", func(t *testing.T) {
		t.Parallel()

		in := session.Record{
			ID:   "abc",
			Name: "sessid",
			Data: map[string]any{"big": int64(1<<53 + 1), "ratio": 0.25},
		}

		data, err := m.Marshal(in)
		require.NoError(t, err)

		out, err := m.Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, json.Number("9007199254740993"), out.Data["big"])
		assert.Equal(t, json.Number("0.25"), out.Data["ratio"])
		assert.Equal(t, in.Checksum(), out.Checksum())
	})

	t.Run("missing data becomes empty map", func(t *testing.T) {
		t.Parallel()

		out, err := m.Unmarshal([]byte(`{"id":"abc"}`))
		require.NoError(t, err)
		assert.NotNil(t, out.Data)
		assert.Empty(t, out.Data)
	})

	t.Run("rejects bad payloads", func(t *testing.T) {
		t.Parallel()

		for _, payload := range []string{"", "{", `{"id":`, "[]", "not json"} {
			_, err := m.Unmarshal([]byte(payload))
			assert.Error(t, err, "payload %q", payload)
		}
	})
}

func TestInactivityFilter(t *testing.T) {
	t.Parallel()

	now := time.Now()
	entry := func(age time.Duration) file.Entry {
		return file.Entry{Name: "sess_abc", ModTime: now.Add(-age)}
	}

	filter := session.InactivityFilter(time.Minute)
	assert.True(t, filter(entry(0), now))
	assert.True(t, filter(entry(time.Minute), now))
	assert.False(t, filter(entry(time.Minute+time.Second), now))

	keepAll := session.InactivityFilter(0)
	assert.True(t, keepAll(entry(365*24*time.Hour), now))
}

func TestGenerateID(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for range 100 {
		id := session.GenerateID()
		assert.Len(t, id, 32)
		assert.NotContains(t, id, "-")
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 100)
}
