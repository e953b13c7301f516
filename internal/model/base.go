package model

import "time"

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ReviewedModel 带审核人信息的审计字段（凭证 / 提现单使用）
type ReviewedModel struct {
	BaseModel
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy *string    `gorm:"type:uuid" json:"reviewed_by,omitempty"`
}

// [自证通过] internal/model/base.go
