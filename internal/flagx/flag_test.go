package flagx

import (
	"flag"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterArgs(t *testing.T) {
	cliFlags := []string{"-c", "--config", "-u", "-d"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "values are taken from the next argument",
			args: []string{"-u", "http://localhost:8101/", "-l", "debug", "-d", "/tmp/cs.db"},
			want: []string{"-u", "http://localhost:8101/", "-d", "/tmp/cs.db"},
		},
		{
			name: "equals form keeps the whole token",
			args: []string{"--config=cs.yaml", "-x"},
			want: []string{"--config=cs.yaml"},
		},
		{
			name: "a dash-prefixed next token is not a value",
			args: []string{"-c", "-u", "http://h/"},
			want: []string{"-c", "-u", "http://h/"},
		},
		{
			name: "trailing flag without value",
			args: []string{"-d"},
			want: []string{"-d"},
		},
		{
			name: "repeats keep their order",
			args: []string{"-c", "one.json", "--config=two.json", "-c", "three.json"},
			want: []string{"-c", "one.json", "--config=two.json", "-c", "three.json"},
		},
		{
			name: "positional arguments are dropped",
			args: []string{"login", "-t", "5"},
			want: []string{},
		},
		{
			name: "nil args",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, cliFlags)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FilterArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_OnlyDefinedFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	base := fs.String("u", "http://default/", "")
	level := fs.String("l", "info", "")

	args := []string{"-c", "cs.yaml", "--u=http://other/", "-s", "redis", "-l", "debug"}
	require.NoError(t, Parse(fs, args))

	assert.Equal(t, "http://other/", *base)
	assert.Equal(t, "debug", *level)
}

func TestParse_BadValue(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Int("t", 30, "")

	require.Error(t, Parse(fs, []string{"-t", "soon"}))
}

func TestConfigFile(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "short", args: []string{"-c", "/etc/cs.yaml"}, want: "/etc/cs.yaml"},
		{name: "long", args: []string{"-config", "/etc/cs.json"}, want: "/etc/cs.json"},
		{name: "last wins", args: []string{"-c", "a.json", "-config", "b.json"}, want: "b.json"},
		{name: "mixed with client flags", args: []string{"-u", "http://h/", "-c", "cs.yaml", "-d", "x.db"}, want: "cs.yaml"},
		{name: "absent", args: []string{"-u", "http://h/"}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigFile(tt.args))
		})
	}
}

func TestConfigFile_EnvFallback(t *testing.T) {
	t.Setenv(ConfigFileEnv, "/etc/clansession.yaml")

	assert.Equal(t, "/etc/clansession.yaml", ConfigFile(nil))
	assert.Equal(t, "/tmp/flag.json", ConfigFile([]string{"-c", "/tmp/flag.json"}), "flag beats env")
}
