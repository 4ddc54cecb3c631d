package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShutdownZeroValue(t *testing.T) {
	// command post-run hooks call Shutdown even when setup never ran
	require.NoError(t, Telemetry{}.Shutdown(context.Background()))
}

func TestSetupWithoutExporters(t *testing.T) {
	tel, err := Setup(context.Background(), "telemetry-test", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}
