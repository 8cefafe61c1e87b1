// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/api/accounts"
	"github.com/vechain/stakepool/api/staking"
	"github.com/vechain/stakepool/auth"
	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/ledger"
	stakeruntime "github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/storage"
)

func keygenAction(ctx *cli.Context) error {
	out := ctx.String(outFlag.Name)
	if out == "" {
		return errors.New("missing output file, see --out")
	}
	if _, err := os.Stat(out); err == nil {
		return errors.Errorf("key file [%v] already exists", out)
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	if err := crypto.SaveECDSA(out, key); err != nil {
		return errors.Wrap(err, "save key")
	}
	_, err = ctx.App.Writer.Write([]byte(auth.KeyAddress(key).String() + "\n"))
	return err
}

// withServices opens the data dir for the duration of fn.
func withServices(ctx *cli.Context, fn func(rt *stakeruntime.Runtime) error) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	initLogger(&cfg.Log)

	svc, err := openServices(cfg, clock.NewSystem())
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(svc.runtime)
}

func callAction(op stakeruntime.Op) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		key, err := loadKey(ctx.String(keyFlag.Name))
		if err != nil {
			return err
		}
		call := &stakeruntime.Call{
			Op:         op,
			Caller:     auth.KeyAddress(key),
			RewardRate: ctx.Uint64(rewardRateFlag.Name),
			LockPeriod: ctx.Int64(lockPeriodFlag.Name),
			Amount:     ctx.Uint64(amountFlag.Name),
		}
		if op == stakeruntime.OpMint || op == stakeruntime.OpFund {
			if call.To, err = addressArg(ctx, toFlag); err != nil {
				return err
			}
		}

		return withServices(ctx, func(rt *stakeruntime.Runtime) error {
			if call.Nonce, err = rt.Nonce(call.Caller); err != nil {
				return err
			}
			if err := call.Sign(key); err != nil {
				return err
			}
			receipt, err := rt.Execute(context.Background(), call)
			if err != nil {
				return errors.Wrapf(err, "%v", op)
			}
			return printJSON(ctx.App.Writer, receipt)
		})
	}
}

func addressArg(ctx *cli.Context, flag cli.StringFlag) (ledger.Address, error) {
	s := ctx.String(flag.Name)
	if s == "" {
		return ledger.Address{}, errors.Errorf("missing address, see --%v", flag.Name)
	}
	addr, err := ledger.ParseAddress(s)
	if err != nil {
		return ledger.Address{}, errors.Wrapf(err, "--%v", flag.Name)
	}
	return addr, nil
}

func poolAction(ctx *cli.Context) error {
	return withServices(ctx, func(rt *stakeruntime.Runtime) error {
		p, err := rt.Pool()
		if err != nil {
			return err
		}
		if p == nil {
			return errors.Wrap(storage.ErrRecordNotFound, "staking pool")
		}
		return printJSON(ctx.App.Writer, staking.ConvertPool(p))
	})
}

func positionAction(ctx *cli.Context) error {
	addr, err := addressArg(ctx, addressFlag)
	if err != nil {
		return err
	}
	return withServices(ctx, func(rt *stakeruntime.Runtime) error {
		p, err := rt.Pool()
		if err != nil {
			return err
		}
		if p == nil {
			return errors.Wrap(storage.ErrRecordNotFound, "staking pool")
		}
		pos, err := rt.Position(addr)
		if err != nil {
			return err
		}
		if pos == nil {
			return errors.Wrapf(storage.ErrRecordNotFound, "position of %v", addr)
		}
		now := rt.Now()
		pending, err := rt.PendingRewardsAt(addr, now)
		if err != nil {
			return err
		}
		return printJSON(ctx.App.Writer, &struct {
			*staking.Position
			Rewards *staking.Rewards `json:"rewards"`
		}{
			staking.ConvertPosition(pos, p.LockPeriod),
			&staking.Rewards{User: addr, Time: now, Pending: pending},
		})
	})
}

func balanceAction(ctx *cli.Context) error {
	addr, err := addressArg(ctx, addressFlag)
	if err != nil {
		return err
	}
	return withServices(ctx, func(rt *stakeruntime.Runtime) error {
		acc := &accounts.Account{Address: addr}
		var err error
		if acc.TokenBalance, err = rt.TokenBalance(addr); err != nil {
			return err
		}
		if acc.NativeBalance, err = rt.NativeBalance(addr); err != nil {
			return err
		}
		if acc.Nonce, err = rt.Nonce(addr); err != nil {
			return err
		}
		return printJSON(ctx.App.Writer, acc)
	})
}
