package dto

// ── 账户模块 DTO ──

// AccountResponse 账户信息
// 金额字段以字符串输出，避免前端浮点精度问题
type AccountResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Balance       string `json:"balance"`
	TotalEarnings string `json:"total_earnings"`
	ReferralCode  string `json:"referral_code"`
	ReferrerID    string `json:"referrer_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// AccountListRequest 账户列表查询参数（管理端）
type AccountListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=admin user"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// TransactionResponse 资金流水
type TransactionResponse struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
	Balance     string `json:"balance"`
	CreatedAt   string `json:"created_at"`
}

// [自证通过] internal/dto/account.go
