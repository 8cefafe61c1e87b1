// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/storage"
	"github.com/vechain/stakepool/test/datagen"
)

type cliEnv struct {
	t       *testing.T
	dataDir string
}

func (e *cliEnv) run(args ...string) (string, error) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"stakepool"}, args...))
	return out.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	out, err := e.run(args...)
	require.NoError(e.t, err, out)
	return out
}

// store runs a command against the shared data dir.
func (e *cliEnv) store(cmd string, args ...string) (string, error) {
	return e.run(append([]string{cmd, "--data-dir", e.dataDir, "--deposit-per-slot", "10", "--verbosity", "error"}, args...)...)
}

func (e *cliEnv) mustStore(cmd string, args ...string) string {
	out, err := e.store(cmd, args...)
	require.NoError(e.t, err, out)
	return out
}

func decode(t *testing.T, out string, v any) {
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func TestKeygen(t *testing.T) {
	env := &cliEnv{t: t}
	path := filepath.Join(t.TempDir(), "key")

	addr := strings.TrimSpace(env.mustRun("keygen", "--out", path))
	assert.True(t, strings.HasPrefix(addr, "0x"))
	_, err := os.Stat(path)
	require.NoError(t, err)

	_, err = env.run("keygen", "--out", path)
	assert.Error(t, err, "existing key file must not be overwritten")

	_, err = env.run("keygen")
	assert.Error(t, err)
}

func TestViewsOnEmptyDataDir(t *testing.T) {
	dir := t.TempDir()
	env := &cliEnv{t: t, dataDir: filepath.Join(dir, "data")}

	_, err := env.store("pool")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)

	_, err = env.store("position", "--address", datagen.RandAddress().String())
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)

	var acc struct {
		TokenBalance uint64 `json:"tokenBalance"`
		Nonce        uint64 `json:"nonce"`
	}
	decode(t, env.mustStore("balance", "--address", datagen.RandAddress().String()), &acc)
	assert.Zero(t, acc.TokenBalance)
	assert.Zero(t, acc.Nonce)
}

func TestStakeCommands(t *testing.T) {
	dir := t.TempDir()
	env := &cliEnv{t: t, dataDir: filepath.Join(dir, "data")}

	treasuryKey := filepath.Join(dir, "treasury.key")
	userKey := filepath.Join(dir, "user.key")
	treasury := strings.TrimSpace(env.mustRun("keygen", "--out", treasuryKey))
	user := strings.TrimSpace(env.mustRun("keygen", "--out", userKey))

	var receipt struct {
		Op        string `json:"op"`
		Caller    string `json:"caller"`
		Nonce     uint64 `json:"nonce"`
		Transfers []struct {
			Kind   string `json:"kind"`
			Amount uint64 `json:"amount"`
		} `json:"transfers"`
	}

	decode(t, env.mustStore("fund", "--treasury", treasury, "--key", treasuryKey, "--to", user, "--amount", "1000"), &receipt)
	assert.Equal(t, "fund", receipt.Op)
	assert.Equal(t, treasury, receipt.Caller)

	decode(t, env.mustStore("mint", "--treasury", treasury, "--key", treasuryKey, "--to", user, "--amount", "500"), &receipt)
	assert.Equal(t, uint64(1), receipt.Nonce)
	require.Len(t, receipt.Transfers, 1)
	assert.Equal(t, "mint", receipt.Transfers[0].Kind)

	// only the treasury mints
	_, err := env.store("mint", "--treasury", treasury, "--key", userKey, "--to", user, "--amount", "500")
	assert.Error(t, err)

	env.mustStore("initialize", "--key", userKey, "--reward-rate", "1", "--lock-period", "3600")
	_, err = env.store("initialize", "--key", userKey, "--reward-rate", "1", "--lock-period", "3600")
	assert.Error(t, err, "pool exists")

	decode(t, env.mustStore("stake", "--key", userKey, "--amount", "200"), &receipt)
	assert.Equal(t, "stake", receipt.Op)

	_, err = env.store("unstake", "--key", userKey)
	assert.Error(t, err, "lock period not over")

	var pool struct {
		Authority   string `json:"authority"`
		RewardRate  uint64 `json:"rewardRate"`
		LockPeriod  int64  `json:"lockPeriod"`
		TotalStaked uint64 `json:"totalStaked"`
	}
	decode(t, env.mustStore("pool"), &pool)
	assert.Equal(t, user, pool.Authority)
	assert.Equal(t, uint64(1), pool.RewardRate)
	assert.Equal(t, int64(3600), pool.LockPeriod)
	assert.Equal(t, uint64(200), pool.TotalStaked)

	var pos struct {
		User       string `json:"user"`
		Amount     uint64 `json:"amount"`
		StartTime  int64  `json:"startTime"`
		UnlockTime *int64 `json:"unlockTime"`
		Rewards    struct {
			User string `json:"user"`
		} `json:"rewards"`
	}
	decode(t, env.mustStore("position", "--address", user), &pos)
	assert.Equal(t, user, pos.User)
	assert.Equal(t, uint64(200), pos.Amount)
	require.NotNil(t, pos.UnlockTime)
	assert.Equal(t, pos.StartTime+3600, *pos.UnlockTime)
	assert.Equal(t, user, pos.Rewards.User)

	_, err = env.store("position", "--address", treasury)
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)

	var acc struct {
		TokenBalance  uint64 `json:"tokenBalance"`
		NativeBalance uint64 `json:"nativeBalance"`
		Nonce         uint64 `json:"nonce"`
	}
	decode(t, env.mustStore("balance", "--address", user), &acc)
	assert.Equal(t, uint64(300), acc.TokenBalance)
	// failed calls consume their nonce too
	assert.Equal(t, uint64(5), acc.Nonce)
	assert.Less(t, acc.NativeBalance, uint64(1000), "record deposits are charged")
}
