package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "short flag with separate value",
			args:    []string{"-c", "conf.json", "-a", "localhost"},
			allowed: []string{"-c", "--config"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "long flag with equals",
			args:    []string{"--config=alt.yaml", "-a", "localhost"},
			allowed: []string{"-c", "--config"},
			want:    []string{"--config=alt.yaml"},
		},
		{
			name:    "order preserved",
			args:    []string{"-s", "secret", "-x", "1", "-d", "dsn"},
			allowed: []string{"-d", "-s"},
			want:    []string{"-s", "secret", "-d", "dsn"},
		},
		{
			name:    "unknown flags and positionals ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag at end without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "value that looks like a flag is not consumed",
			args:    []string{"-c", "-s"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "double dash stops processing",
			args:    []string{"-a", ":80", "--", "-s", "x"},
			allowed: []string{"-a", "-s"},
			want:    []string{"-a", ":80"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFile(t *testing.T) {
	assert.Equal(t, "vault.yaml", ConfigFile([]string{"-a", ":8080", "-c", "vault.yaml"}))
	assert.Equal(t, "vault.json", ConfigFile([]string{"-config=vault.json"}))
	assert.Equal(t, "", ConfigFile([]string{"-a", ":8080"}))
}
