package pg

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/coinpay/coinpay-api/pkg/swap"
)

// SwapDao is a data access object that maps directly to the
// 'swap_transactions' table in PostgreSQL.
type SwapDao struct {
	bun.BaseModel         `bun:"table:swap_transactions,alias:st"`
	ID                    uuid.UUID        `bun:"id,pk,type:uuid"`
	UserID                uuid.UUID        `bun:"user_id,notnull,type:uuid"`
	WalletAddress         string           `bun:"wallet_address,notnull,type:varchar(42)"`
	FromToken             string           `bun:"from_token,notnull,type:varchar(42)"`
	ToToken               string           `bun:"to_token,notnull,type:varchar(42)"`
	FromTokenSymbol       string           `bun:"from_token_symbol,notnull,type:varchar(20)"`
	ToTokenSymbol         string           `bun:"to_token_symbol,notnull,type:varchar(20)"`
	FromAmount            decimal.Decimal  `bun:"from_amount,notnull,type:numeric(38,18)"`
	ToAmount              decimal.Decimal  `bun:"to_amount,notnull,type:numeric(38,18)"`
	ExchangeRate          decimal.Decimal  `bun:"exchange_rate,notnull,type:numeric(38,18)"`
	PlatformFee           decimal.Decimal  `bun:"platform_fee,notnull,type:numeric(38,18)"`
	PlatformFeePercentage decimal.Decimal  `bun:"platform_fee_percentage,notnull,type:numeric(5,2)"`
	GasUsed               *string          `bun:"gas_used,type:varchar(32)"`
	GasCost               *decimal.Decimal `bun:"gas_cost,type:numeric(38,18)"`
	SlippageTolerance     decimal.Decimal  `bun:"slippage_tolerance,notnull,type:numeric(5,2)"`
	PriceImpact           *decimal.Decimal `bun:"price_impact,type:numeric(10,2)"`
	MinimumReceived       decimal.Decimal  `bun:"minimum_received,notnull,type:numeric(38,18)"`
	DexProvider           string           `bun:"dex_provider,notnull,type:varchar(50)"`
	TransactionHash       *string          `bun:"transaction_hash,type:varchar(66)"`
	Status                string           `bun:"status,notnull,type:varchar(20)"`
	ErrorMessage          *string          `bun:"error_message,type:text"`
	CreatedAt             time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	ConfirmedAt           *time.Time       `bun:"confirmed_at"`
	UpdatedAt             time.Time        `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func toSwapDao(tx *swap.Transaction) *SwapDao {
	return &SwapDao{
		ID:                    tx.ID,
		UserID:                tx.UserID,
		WalletAddress:         tx.WalletAddress,
		FromToken:             tx.FromToken,
		ToToken:               tx.ToToken,
		FromTokenSymbol:       tx.FromTokenSymbol,
		ToTokenSymbol:         tx.ToTokenSymbol,
		FromAmount:            tx.FromAmount,
		ToAmount:              tx.ToAmount,
		ExchangeRate:          tx.ExchangeRate,
		PlatformFee:           tx.PlatformFee,
		PlatformFeePercentage: tx.PlatformFeePercentage,
		GasUsed:               tx.GasUsed,
		GasCost:               tx.GasCost,
		SlippageTolerance:     tx.SlippageTolerance,
		PriceImpact:           tx.PriceImpact,
		MinimumReceived:       tx.MinimumReceived,
		DexProvider:           tx.DexProvider,
		TransactionHash:       tx.TransactionHash,
		Status:                string(tx.Status),
		ErrorMessage:          tx.ErrorMessage,
		CreatedAt:             tx.CreatedAt,
		ConfirmedAt:           tx.ConfirmedAt,
		UpdatedAt:             tx.UpdatedAt,
	}
}

func toSwap(dao *SwapDao) *swap.Transaction {
	return &swap.Transaction{
		ID:                    dao.ID,
		UserID:                dao.UserID,
		WalletAddress:         dao.WalletAddress,
		FromToken:             dao.FromToken,
		ToToken:               dao.ToToken,
		FromTokenSymbol:       dao.FromTokenSymbol,
		ToTokenSymbol:         dao.ToTokenSymbol,
		FromAmount:            dao.FromAmount,
		ToAmount:              dao.ToAmount,
		ExchangeRate:          dao.ExchangeRate,
		PlatformFee:           dao.PlatformFee,
		PlatformFeePercentage: dao.PlatformFeePercentage,
		GasUsed:               dao.GasUsed,
		GasCost:               dao.GasCost,
		SlippageTolerance:     dao.SlippageTolerance,
		PriceImpact:           dao.PriceImpact,
		MinimumReceived:       dao.MinimumReceived,
		DexProvider:           dao.DexProvider,
		TransactionHash:       dao.TransactionHash,
		Status:                swap.Status(dao.Status),
		ErrorMessage:          dao.ErrorMessage,
		CreatedAt:             dao.CreatedAt,
		ConfirmedAt:           dao.ConfirmedAt,
		UpdatedAt:             dao.UpdatedAt,
	}
}
