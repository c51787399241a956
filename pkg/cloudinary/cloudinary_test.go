package cloudinary

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBuildPublicID(t *testing.T) {
	at := time.Unix(1700000000, 0)

	require.Equal(t, "loop-diagram-1700000000", buildPublicID("uploads/Loop Diagram.PNG", at))
	require.Equal(t, "task-image-1700000000", buildPublicID("***.jpg", at))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)

	require.False(t, Config{CloudName: "demo", APIKey: "key"}.Enabled())
	require.True(t, Config{CloudName: "demo", APIKey: "key", APISecret: "secret"}.Enabled())
}
