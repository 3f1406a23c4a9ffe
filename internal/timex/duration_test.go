package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	var v struct {
		A Duration `json:"a"`
		B Duration `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"18h","b":1500000000}`), &v))
	assert.Equal(t, 18*time.Hour, v.A.Duration)
	assert.Equal(t, 1500*time.Millisecond, v.B.Duration)
}

func TestDuration_UnmarshalJSON_Invalid(t *testing.T) {
	var d Duration
	assert.Error(t, json.Unmarshal([]byte(`"eighteen hours"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 90 * time.Minute})
	require.NoError(t, err)
	assert.Equal(t, `"1h30m0s"`, string(b))
}

func TestFromMillis(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 123_000_000, time.UTC)
	assert.True(t, now.Equal(FromMillis(now.UnixMilli())))
}
