package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("Valid date", func(t *testing.T) {
		d, err := ParseDate("2024-01-15")
		require.NoError(t, err)
		assert.Equal(t, "2024-01-15", d.String())
	})

	t.Run("Invalid format", func(t *testing.T) {
		_, err := ParseDate("2024/01/15")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "expected YYYY-MM-DD")
	})

	t.Run("Invalid day", func(t *testing.T) {
		_, err := ParseDate("2024-02-30")
		assert.Error(t, err)
	})
}

func TestDate_DaysUntil(t *testing.T) {
	a := MustParseDate("2024-01-08")
	b := MustParseDate("2024-01-10")
	assert.Equal(t, 2, a.DaysUntil(b))
	assert.Equal(t, -2, b.DaysUntil(a))
	assert.Equal(t, 0, a.DaysUntil(a))
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Due Date `json:"due"`
	}

	out, err := json.Marshal(payload{Due: MustParseDate("2024-01-08")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2024-01-08"}`, string(out))

	out, err = json.Marshal(payload{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":null}`, string(out))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2024-03-01"}`), &p))
	assert.Equal(t, "2024-03-01", p.Due.String())

	assert.Error(t, json.Unmarshal([]byte(`{"due":"03/01/2024"}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"due":20240301}`), &p))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01-08", d.String())

	require.NoError(t, d.Scan([]byte("2024-01-09")))
	assert.Equal(t, "2024-01-09", d.String())

	require.NoError(t, d.Scan("2024-01-10T00:00:00Z"))
	assert.Equal(t, "2024-01-10", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))

	v, err := MustParseDate("2024-01-08").Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", v)
}
