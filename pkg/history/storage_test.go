package history

import (
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcs-swap/pkg/types"
)

func TestStorage_AddAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")

	s, err := NewStorage(path)
	require.NoError(t, err)
	assert.Zero(t, s.Count())
	assert.Equal(t, path, s.GetFilePath())

	require.NoError(t, s.AddReceipt(&types.SwapReceipt{
		Side:        types.SideBuy,
		TxHash:      common.HexToHash("0xabc"),
		AmountIn:    big.NewInt(1e16),
		AmountOut:   big.NewInt(4200),
		BlockNumber: 42,
		GasUsed:     120000,
	}))
	require.NoError(t, s.AddFailure(types.SideSell, "", errors.New("quote unavailable: no liquidity")))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	reloaded, err := NewStorage(path)
	require.NoError(t, err)
	records := reloaded.List()
	require.Len(t, records, 2)

	assert.NotEmpty(t, records[0].ID)
	assert.NotEqual(t, records[0].ID, records[1].ID)
	assert.False(t, records[0].Timestamp.IsZero())
	assert.Equal(t, StatusConfirmed, records[0].Status)
	assert.Equal(t, "4200", records[0].AmountOut)
	assert.Equal(t, common.HexToHash("0xabc").Hex(), records[0].TxHash)
	assert.Equal(t, uint64(42), records[0].BlockNumber)

	assert.Equal(t, StatusFailed, records[1].Status)
	assert.Equal(t, types.SideSell, records[1].Side)
	assert.Contains(t, records[1].Error, "no liquidity")
}

func TestStorage_Last(t *testing.T) {
	s, err := NewStorage(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Add(&Record{ID: id, Side: types.SideBuy, Status: StatusConfirmed}))
	}

	last := s.Last(2)
	require.Len(t, last, 2)
	assert.Equal(t, "b", last[0].ID)
	assert.Equal(t, "c", last[1].ID)
	assert.Len(t, s.Last(0), 3)
	assert.Len(t, s.Last(10), 3)
}

func TestNewStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewStorage(path)
	assert.Error(t, err)
}
