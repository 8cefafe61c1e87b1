// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transferlog_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/test/datagen"
	"github.com/vechain/stakepool/transferlog"
)

func TestTransferLog(t *testing.T) {
	db, err := transferlog.NewMem()
	require.NoError(t, err)
	defer db.Close()

	assert.NotEmpty(t, db.SQLiteVersion())

	from, to := datagen.RandAddress(), datagen.RandAddress()
	other := datagen.RandAddress()

	var transfers []*transferlog.Transfer
	count := 100
	for i := range count {
		kind := "reward"
		if i%2 == 0 {
			kind = "principal"
		}
		transfers = append(transfers, &transferlog.Transfer{
			Time:      int64(i),
			Op:        "unstake",
			Caller:    to,
			Kind:      kind,
			From:      from,
			To:        to,
			Authority: from,
			Amount:    uint64(i),
		})
	}
	transfers = append(transfers, &transferlog.Transfer{Op: "mint", Kind: "mint", To: other, Amount: math.MaxUint64})
	require.NoError(t, db.Insert(transfers))
	require.NoError(t, db.Insert(nil))

	assert.Equal(t, uint64(1), transfers[0].Seq)
	assert.Equal(t, uint64(count+1), transfers[count].Seq)

	all, err := db.Filter(nil)
	require.NoError(t, err)
	assert.Equal(t, transfers, all)

	got, err := db.Filter(&transferlog.Filter{Address: &from})
	require.NoError(t, err)
	assert.Len(t, got, count)

	got, err = db.Filter(&transferlog.Filter{Address: &other})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(math.MaxUint64), got[0].Amount)
	assert.True(t, got[0].From.IsZero())

	got, err = db.Filter(&transferlog.Filter{Address: &to, Kind: "reward"})
	require.NoError(t, err)
	assert.Len(t, got, count/2)

	got, err = db.Filter(&transferlog.Filter{Order: transferlog.DESC, Limit: 3, Offset: 1})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, uint64(count), got[0].Seq)

	none := ledger.Address{}
	got, err = db.Filter(&transferlog.Filter{Address: &none, Kind: "reward"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTransferLogReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transfers.db")

	db, err := transferlog.New(path)
	require.NoError(t, err)
	require.NoError(t, db.Insert([]*transferlog.Transfer{{Op: "stake", Kind: "stake", Amount: 5}}))
	require.NoError(t, db.Close())

	db, err = transferlog.New(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, path, db.Path())

	require.NoError(t, db.Insert([]*transferlog.Transfer{{Op: "stake", Kind: "stake", Amount: 6}}))
	got, err := db.Filter(nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(2), got[1].Seq)
}
