package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDateWindow(t *testing.T) {
	t.Parallel()

	w, err := ParseDateWindow("2025-12-15", "2025-12-20")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC), w.Start)
	require.Equal(t, time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC), w.End)

	// 单日区间合法
	_, err = ParseDateWindow("2025-12-15", "2025-12-15")
	require.NoError(t, err)

	// 结束早于开始
	_, err = ParseDateWindow("2025-12-20", "2025-12-15")
	require.Error(t, err)

	// 格式错误
	_, err = ParseDateWindow("2025/12/15", "2025-12-20")
	require.Error(t, err)
	_, err = ParseDateWindow("2025-12-15", "20-12-2025")
	require.Error(t, err)
}
