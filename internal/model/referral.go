package model

import "time"

// Referral 推荐关系边表，对应 referrals
// 与 accounts.referrer_id 冗余记录，注册时同事务写入
type Referral struct {
	ReferralID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"referral_id"`
	ReferrerID string    `gorm:"type:uuid;not null;index"                       json:"referrer_id"`
	ReferredID string    `gorm:"type:uuid;not null;uniqueIndex"                 json:"referred_id"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Referral) TableName() string { return "referrals" }
