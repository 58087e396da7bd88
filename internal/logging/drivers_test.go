package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Drivers(t *testing.T) {
	tests := []struct {
		driver string
		want   []string
	}{
		{driver: "", want: []string{"msg=\"team switched\"", "sect_id=3"}},
		{driver: DriverSlog, want: []string{"level=INFO", "sect_id=3"}},
		{driver: DriverZap, want: []string{`"msg":"team switched"`, `"sect_id":3`}},
		{driver: DriverLogrus, want: []string{`msg="team switched"`, "sect_id=3"}},
	}

	for _, tt := range tests {
		t.Run("driver="+tt.driver, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := New(tt.driver, "info", &buf)
			require.NoError(t, err)

			log.Info(context.Background(), "team switched", "sect_id", 3)

			out := buf.String()
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New("syslog", "info", &bytes.Buffer{})
	require.Error(t, err)
}

func TestNew_LevelFiltersDebug(t *testing.T) {
	for _, driver := range []string{DriverSlog, DriverZap, DriverLogrus} {
		t.Run(driver, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := New(driver, "warn", &buf)
			require.NoError(t, err)

			log.Debug(context.Background(), "hidden")
			log.Info(context.Background(), "hidden too")
			assert.Empty(t, buf.String())

			log.Warn(context.Background(), "shown")
			assert.Contains(t, buf.String(), "shown")
		})
	}
}

func TestWith_CarriesFieldsAcrossDrivers(t *testing.T) {
	for _, driver := range []string{DriverZap, DriverLogrus} {
		t.Run(driver, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := New(driver, "debug", &buf)
			require.NoError(t, err)

			log.With("component", "team").Error(context.Background(), "load failed", "err", "boom")

			out := buf.String()
			assert.Contains(t, out, "component")
			assert.Contains(t, out, "team")
			assert.Contains(t, out, "load failed")
		})
	}
}

func TestToFields_DanglingValue(t *testing.T) {
	f := toFields([]any{"a", 1, "orphan"})
	assert.Equal(t, 1, f["a"])
	assert.Equal(t, "orphan", f["!BADKEY"])
}

func TestDiscard_DoesNotPanic(t *testing.T) {
	l := Discard()
	l.Info(context.Background(), "x")
	l.With("k", "v").Error(context.Background(), "y")
}

func TestNew_ContextFieldsOnEveryDriver(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{driver: DriverSlog, want: "command=teams"},
		{driver: DriverZap, want: `"command":"teams"`},
		{driver: DriverLogrus, want: "command=teams"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := New(tt.driver, "info", &buf)
			require.NoError(t, err)

			ctx := ContextWith(context.Background(), "command", "teams")
			log.Info(ctx, "listed")

			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestContextWith_NoArgsKeepsContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, ContextWith(ctx))
	assert.Nil(t, fieldsFrom(ctx))
}
