package swapdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/coinpay/coinpay-api/pkg/pgutil/migrations"
	"github.com/coinpay/coinpay-api/pkg/swap/store/pg"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating swap_transactions table...")
		if err := mghelper.CreateSchema(ctx, db, &pg.SwapDao{}); err != nil {
			return err
		}
		if err := mghelper.CreateModelIndexes(ctx, db, &pg.SwapDao{},
			"user_id", "wallet_address", "status"); err != nil {
			return err
		}
		// Hash is unique per submission; NULLs (unsubmitted swaps) are allowed
		return mghelper.CreateModelUniqueIndexes(ctx, db, &pg.SwapDao{}, "transaction_hash")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping swap_transactions table...")
		return mghelper.DropTables(ctx, db, &pg.SwapDao{})
	})
}
