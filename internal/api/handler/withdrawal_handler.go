package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/teambdspro/BDSPRO-sub001/internal/dto"
	"github.com/teambdspro/BDSPRO-sub001/internal/service"
	"github.com/teambdspro/BDSPRO-sub001/pkg/response"
)

// WithdrawalHandler 提现模块 HTTP 处理器
type WithdrawalHandler struct {
	ledgerSvc service.LedgerService
}

// NewWithdrawalHandler 创建 WithdrawalHandler
func NewWithdrawalHandler(ledgerSvc service.LedgerService) *WithdrawalHandler {
	return &WithdrawalHandler{ledgerSvc: ledgerSvc}
}

// Submit 发起提现
// POST /api/v1/withdrawals
func (h *WithdrawalHandler) Submit(c *gin.Context) {
	accountID, ok := MustGetAccountID(c)
	if !ok {
		return
	}

	var req dto.SubmitWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	withdrawal, err := h.ledgerSvc.SubmitWithdrawal(c.Request.Context(), accountID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			response.BadRequest(c, 13001, "提现金额无效")
		case errors.Is(err, service.ErrBelowMinWithdraw):
			response.BadRequest(c, 13002, "提现金额低于最低限额")
		case errors.Is(err, service.ErrInsufficientBalance):
			response.BadRequest(c, 13003, "账户余额不足")
		case errors.Is(err, service.ErrAccountNotFound):
			response.NotFound(c, 20001, "账户不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, withdrawal)
}

// ListMine 当前账户的提现单列表
// GET /api/v1/withdrawals/me
func (h *WithdrawalHandler) ListMine(c *gin.Context) {
	accountID, ok := MustGetAccountID(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	withdrawals, total, err := h.ledgerSvc.ListAccountWithdrawals(c.Request.Context(), accountID, &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, withdrawals, total, page.GetPage(), page.GetPageSize())
}

// [自证通过] internal/api/handler/withdrawal_handler.go
