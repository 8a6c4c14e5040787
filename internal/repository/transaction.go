package repository

import (
	"context"
	"time"

	"petstore-backend/internal/model"

	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, txn *model.Transaction) error
	// UpdateStatusByExternalRef is keyed by the gateway's payment-intent or
	// session id; returns the number of rows touched so callers can log
	// unmatched secondary confirmations without failing.
	UpdateStatusByExternalRef(ctx context.Context, externalRef string, status model.TxnStatus) (int64, error)
	FindByOrderID(ctx context.Context, orderID string) ([]*model.Transaction, error)
}

type transactionRepoImpl struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepoImpl{db: db}
}

func (r *transactionRepoImpl) Create(ctx context.Context, tx *gorm.DB, txn *model.Transaction) error {
	return tx.WithContext(ctx).Create(txn).Error
}

func (r *transactionRepoImpl) UpdateStatusByExternalRef(ctx context.Context, externalRef string, status model.TxnStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("external_ref = ?", externalRef).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *transactionRepoImpl) FindByOrderID(ctx context.Context, orderID string) ([]*model.Transaction, error) {
	var txns []*model.Transaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
