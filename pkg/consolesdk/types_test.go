package consolesdk_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ifrsconsole/console/pkg/consolesdk"
	"github.com/stretchr/testify/require"
)

func TestTimestampUnmarshal(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2026-02-01T10:00:00Z"`, want},
		{`"2026-02-01T12:00:00+02:00"`, want},
		{`"2026-02-01T10:00:00"`, want},
		{`"2026-02-01 10:00:00"`, want},
		{`"2026-02-01T10:00:00.000000"`, want},
		{`"1769940000"`, want},
		{`null`, time.Time{}},
	}

	for _, tt := range tests {
		var ts consolesdk.Timestamp
		require.NoError(t, json.Unmarshal([]byte(tt.in), &ts), tt.in)
		require.True(t, tt.want.Equal(ts.Time), "%s: got %s", tt.in, ts.Time)
	}

	var ts consolesdk.Timestamp
	require.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &ts))
}

func TestIDUnmarshal(t *testing.T) {
	t.Parallel()

	var v struct {
		A consolesdk.ID `json:"a"`
		B consolesdk.ID `json:"b"`
		C consolesdk.ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":42,"b":"u-7","c":null}`), &v))
	require.Equal(t, consolesdk.ID("42"), v.A)
	require.Equal(t, consolesdk.ID("u-7"), v.B)
	require.Equal(t, consolesdk.ID(""), v.C)
}
