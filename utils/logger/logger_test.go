package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type named struct{}

func (named) String() string { return "named" }

type plain struct{}

func TestObjToString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "NIL", objToString(nil))
	require.Equal(t, "demux", objToString("demux"))
	require.Equal(t, "named", objToString(named{}))
	require.Equal(t, "plain", objToString(&plain{}))
	require.Equal(t, "abcdefghijklmnopqrst", objToString("abcdefghijklmnopqrstuvwxyz"))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	require.Equal(t, logrus.InfoLevel, ParseLevel("nonsense"))
}
