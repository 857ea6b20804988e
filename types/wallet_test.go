package types

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestWalletRecordManagement(t *testing.T) {
	w := NewWallet()
	require.Equal(t, 0, w.GetSecretRecordsCount())
	require.Nil(t, w.GetSecretRecord(0))

	sr0 := NewRecord(w.PrivateKey.Public(), math.MaxUint64).ToSecretRecord()
	sr1 := NewRecord(w.PrivateKey.Public(), 5).ToSecretRecord()
	w.AddSecretRecord(sr0)
	w.AddSecretRecord(sr1)

	require.Equal(t, 2, w.GetSecretRecordsCount())
	require.Equal(t, sr0, w.GetSecretRecord(0))
	require.Equal(t, sr1, w.GetSecretRecord(1))
	require.Nil(t, w.GetSecretRecord(2))

	// two records can hold more than 64 bits together
	expected := new(uint256.Int).AddUint64(uint256.NewInt(math.MaxUint64), 5)
	require.Equal(t, expected, w.GetBalance())

	w.DelSecretRecord(sr0)
	require.Equal(t, 1, w.GetSecretRecordsCount())
	require.Equal(t, sr1, w.GetSecretRecord(0))
	require.Equal(t, uint256.NewInt(5), w.GetBalance())

	// deleting an unknown record is a no-op
	w.DelSecretRecord(NewRecord(w.PrivateKey.Public(), 9).ToSecretRecord())
	require.Equal(t, 1, w.GetSecretRecordsCount())
}
