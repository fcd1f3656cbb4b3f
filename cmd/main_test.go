package main

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestBindFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("heap-size", 32, "")
	require.NoError(t, flags.Parse([]string{"--heap-size", "8"}))

	v := viper.New()
	require.NoError(t, bindFlags(v, flags, "heap-size"))
	require.Equal(t, 8, v.GetInt("heap-size"))

	err := bindFlags(v, flags, "heap-size", "missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing")
}
