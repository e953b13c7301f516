package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/teambdspro/BDSPRO-sub001/internal/model"
)

// ReferralRepository 推荐关系边数据访问接口
type ReferralRepository interface {
	Create(ctx context.Context, referral *model.Referral) error
	GetByReferred(ctx context.Context, referredID string) (*model.Referral, error)
	CountByReferrer(ctx context.Context, referrerID string) (int64, error)
}

// referralRepo ReferralRepository 的 GORM 实现
type referralRepo struct {
	db *gorm.DB
}

// NewReferralRepo 创建 ReferralRepository 实例
func NewReferralRepo(db *gorm.DB) ReferralRepository {
	return &referralRepo{db: db}
}

func (r *referralRepo) Create(ctx context.Context, referral *model.Referral) error {
	return r.db.WithContext(ctx).Create(referral).Error
}

func (r *referralRepo) GetByReferred(ctx context.Context, referredID string) (*model.Referral, error) {
	var referral model.Referral
	err := r.db.WithContext(ctx).
		Where("referred_id = ?", referredID).
		First(&referral).Error
	if err != nil {
		return nil, err
	}
	return &referral, nil
}

func (r *referralRepo) CountByReferrer(ctx context.Context, referrerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Referral{}).
		Where("referrer_id = ?", referrerID).
		Count(&count).Error
	return count, err
}
