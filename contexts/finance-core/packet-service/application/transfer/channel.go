package transfer

import (
	"context"
	"fmt"

	"redpacket/contexts/finance-core/packet-service/domain/entities"
	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"
	"redpacket/contexts/finance-core/packet-service/ports"
)

// Transfer moves Amount units of one asset between two accounts.
// Payer funds the destination account when it has to be created.
type Transfer struct {
	From   entities.Account
	To     entities.Account
	Amount uint64
	Payer  string
}

// Channel hides the difference between native and token value movement.
type Channel interface {
	Move(ctx context.Context, ledger ports.Ledger, transfer Transfer) error
	// Close retires an emptied account.
	Close(ctx context.Context, ledger ports.Ledger, account entities.Account) error
}

func For(asset entities.Asset) Channel {
	if asset.Kind == entities.AssetKindFungibleToken {
		return tokenChannel{}
	}
	return nativeChannel{}
}

// nativeChannel debits and credits main balances directly. Principal
// balances exist implicitly, so the destination is opened on demand at no cost.
type nativeChannel struct{}

func (nativeChannel) Move(ctx context.Context, ledger ports.Ledger, transfer Transfer) error {
	if transfer.Amount == 0 {
		return nil
	}
	if err := ledger.OpenAccount(ctx, transfer.To, transfer.Payer); err != nil {
		return fmt.Errorf("open native account: %w", err)
	}
	return move(ctx, ledger, transfer)
}

func (nativeChannel) Close(ctx context.Context, ledger ports.Ledger, account entities.Account) error {
	return closeEmpty(ctx, ledger, account)
}

// tokenChannel moves value between token sub-accounts. The source must
// already hold a sub-account; the destination sub-account is created when
// missing and paid for by the transfer payer, never by the source.
type tokenChannel struct{}

func (tokenChannel) Move(ctx context.Context, ledger ports.Ledger, transfer Transfer) error {
	if transfer.Amount == 0 {
		return nil
	}
	if _, exists, err := ledger.Balance(ctx, transfer.From); err != nil {
		return err
	} else if !exists {
		return domainerrors.ErrAccountNotFound
	}
	_, exists, err := ledger.Balance(ctx, transfer.To)
	if err != nil {
		return err
	}
	if !exists {
		if err := ledger.OpenAccount(ctx, transfer.To, transfer.Payer); err != nil {
			return fmt.Errorf("open token sub-account: %w", err)
		}
	}
	return move(ctx, ledger, transfer)
}

func (tokenChannel) Close(ctx context.Context, ledger ports.Ledger, account entities.Account) error {
	return closeEmpty(ctx, ledger, account)
}

func move(ctx context.Context, ledger ports.Ledger, transfer Transfer) error {
	if err := ledger.Debit(ctx, transfer.From, transfer.Amount); err != nil {
		return err
	}
	return ledger.Credit(ctx, transfer.To, transfer.Amount)
}

func closeEmpty(ctx context.Context, ledger ports.Ledger, account entities.Account) error {
	balance, exists, err := ledger.Balance(ctx, account)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if balance != 0 {
		return domainerrors.ErrInvariantViolated
	}
	return ledger.CloseAccount(ctx, account)
}
