package handler

import (
	"github.com/teambdspro/BDSPRO-sub001/internal/service"
	"github.com/teambdspro/BDSPRO-sub001/pkg/storage"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Account    *AccountHandler
	Proof      *ProofHandler
	Withdrawal *WithdrawalHandler
	Referral   *ReferralHandler
	Admin      *AdminHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, store storage.Store) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Account:    NewAccountHandler(svc.Account, svc.Ledger),
		Proof:      NewProofHandler(svc.Ledger, store),
		Withdrawal: NewWithdrawalHandler(svc.Ledger),
		Referral:   NewReferralHandler(svc.Referral),
		Admin:      NewAdminHandler(svc.Account, svc.Ledger, svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
