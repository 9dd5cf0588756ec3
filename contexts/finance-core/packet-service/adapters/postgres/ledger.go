package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"redpacket/contexts/finance-core/packet-service/domain/entities"
	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ledger runs balance primitives inside the caller's transaction. Rows read
// through Balance stay locked until the transaction ends.
type ledger struct {
	tx *gorm.DB
}

func (l ledger) Balance(ctx context.Context, account entities.Account) (uint64, bool, error) {
	var row ledgerAccountModel
	err := l.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("kind = ? AND owner = ? AND asset_key = ?", string(account.Kind), account.Owner, account.AssetKey).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("load ledger account: %w", err)
	}
	balance, err := decimalToAmount(row.Balance)
	if err != nil {
		return 0, false, err
	}
	return balance, true, nil
}

func (l ledger) OpenAccount(ctx context.Context, account entities.Account, payer string) error {
	row := ledgerAccountModel{
		Kind:     string(account.Kind),
		Owner:    account.Owner,
		AssetKey: account.AssetKey,
		Balance:  amountToDecimal(0),
		OpenedBy: strings.TrimSpace(payer),
	}
	if err := l.tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).
		Error; err != nil {
		return fmt.Errorf("open ledger account: %w", err)
	}
	return nil
}

func (l ledger) Debit(ctx context.Context, account entities.Account, amount uint64) error {
	value := amountToDecimal(amount)
	result := l.tx.WithContext(ctx).
		Model(&ledgerAccountModel{}).
		Where("kind = ? AND owner = ? AND asset_key = ? AND balance >= ?", string(account.Kind), account.Owner, account.AssetKey, value).
		Update("balance", gorm.Expr("balance - ?", value))
	if result.Error != nil {
		return fmt.Errorf("debit ledger account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, exists, err := l.Balance(ctx, account); err != nil {
			return err
		} else if !exists {
			return domainerrors.ErrAccountNotFound
		}
		return domainerrors.ErrInsufficientBalance
	}
	return nil
}

func (l ledger) Credit(ctx context.Context, account entities.Account, amount uint64) error {
	result := l.tx.WithContext(ctx).
		Model(&ledgerAccountModel{}).
		Where("kind = ? AND owner = ? AND asset_key = ?", string(account.Kind), account.Owner, account.AssetKey).
		Update("balance", gorm.Expr("balance + ?", amountToDecimal(amount)))
	if result.Error != nil {
		if isCheckViolation(result.Error) {
			return domainerrors.ErrInvariantViolated
		}
		return fmt.Errorf("credit ledger account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAccountNotFound
	}
	return nil
}

func (l ledger) CloseAccount(ctx context.Context, account entities.Account) error {
	result := l.tx.WithContext(ctx).
		Where("kind = ? AND owner = ? AND asset_key = ? AND balance = 0", string(account.Kind), account.Owner, account.AssetKey).
		Delete(&ledgerAccountModel{})
	if result.Error != nil {
		return fmt.Errorf("close ledger account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, exists, err := l.Balance(ctx, account); err != nil {
			return err
		} else if !exists {
			return domainerrors.ErrAccountNotFound
		}
		return domainerrors.ErrInvariantViolated
	}
	return nil
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}
