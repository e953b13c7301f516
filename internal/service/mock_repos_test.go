package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/teambdspro/BDSPRO-sub001/internal/model"
	"github.com/teambdspro/BDSPRO-sub001/internal/repository"
	pkgerrors "github.com/teambdspro/BDSPRO-sub001/pkg/errors"
)

// ── Mock Repositories ──
// db 为空的 Repository 聚合：BeginTx 返回 nil 事务，WithTx 返回自身，
// 各 mock 直接在内存 map 上生效（无回滚语义）

// ── Mock AccountRepository ──

type mockAccountRepo struct {
	accounts map[string]*model.Account // key: account_id
	seq      int
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: make(map[string]*model.Account)}
}

func (m *mockAccountRepo) Create(_ context.Context, account *model.Account) error {
	for _, a := range m.accounts {
		if a.Email == account.Email || a.ReferralCode == account.ReferralCode {
			return gorm.ErrDuplicatedKey
		}
	}
	if account.AccountID == "" {
		m.seq++
		account.AccountID = fmt.Sprintf("acct-%d", m.seq)
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	m.accounts[account.AccountID] = account
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id string) (*model.Account, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Account, error) {
	return m.GetByID(ctx, id)
}

func (m *mockAccountRepo) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepo) GetByReferralCode(_ context.Context, code string) (*model.Account, error) {
	for _, a := range m.accounts {
		if a.ReferralCode == code {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepo) Update(_ context.Context, account *model.Account) error {
	m.accounts[account.AccountID] = account
	return nil
}

func (m *mockAccountRepo) List(_ context.Context, filters *repository.AccountListFilters, offset, limit int) ([]model.Account, int64, error) {
	var all []model.Account
	for _, a := range m.accounts {
		match := true
		if filters != nil {
			if filters.Role != "" && a.Role != filters.Role {
				match = false
			}
			if filters.Keyword != "" &&
				!strings.Contains(a.Name, filters.Keyword) &&
				!strings.Contains(a.Email, filters.Keyword) {
				match = false
			}
		}
		if match {
			all = append(all, *a)
		}
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockAccountRepo) ListByReferrer(_ context.Context, accountID string) ([]model.Account, error) {
	var result []model.Account
	for _, a := range m.accounts {
		if a.ReferrerID != nil && *a.ReferrerID == accountID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAccountRepo) ListByReferrers(_ context.Context, accountIDs []string) ([]model.Account, error) {
	set := make(map[string]bool, len(accountIDs))
	for _, id := range accountIDs {
		set[id] = true
	}
	var result []model.Account
	for _, a := range m.accounts {
		if a.ReferrerID != nil && set[*a.ReferrerID] {
			result = append(result, *a)
		}
	}
	return result, nil
}

// ── Mock ProofRepository ──

type mockProofRepo struct {
	proofs map[string]*model.Proof
	seq    int
}

func newMockProofRepo() *mockProofRepo {
	return &mockProofRepo{proofs: make(map[string]*model.Proof)}
}

func (m *mockProofRepo) Create(_ context.Context, proof *model.Proof) error {
	if proof.ProofID == "" {
		m.seq++
		proof.ProofID = fmt.Sprintf("proof-%d", m.seq)
	}
	if proof.CreatedAt.IsZero() {
		proof.CreatedAt = time.Now()
	}
	m.proofs[proof.ProofID] = proof
	return nil
}

func (m *mockProofRepo) GetByID(_ context.Context, id string) (*model.Proof, error) {
	if p, ok := m.proofs[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProofRepo) List(_ context.Context, filters *repository.ProofListFilters, offset, limit int) ([]model.Proof, int64, error) {
	var all []model.Proof
	for _, p := range m.proofs {
		match := true
		if filters != nil {
			if filters.Status != "" && p.Status != filters.Status {
				match = false
			}
			if filters.AccountID != "" && (p.AccountID == nil || *p.AccountID != filters.AccountID) {
				match = false
			}
		}
		if match {
			all = append(all, *p)
		}
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockProofRepo) ListByAccount(ctx context.Context, accountID string, offset, limit int) ([]model.Proof, int64, error) {
	return m.List(ctx, &repository.ProofListFilters{AccountID: accountID}, offset, limit)
}

func (m *mockProofRepo) UpdateStatusFromPending(_ context.Context, proofID, target, reviewerID string) error {
	p, ok := m.proofs[proofID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if p.Status != model.ProofStatusPending {
		return pkgerrors.ErrAlreadyFinalized
	}
	now := time.Now()
	p.Status = target
	p.ReviewedAt = &now
	p.ReviewedBy = &reviewerID
	return nil
}

func (m *mockProofRepo) SumVerifiedByAccounts(_ context.Context, accountIDs []string) (map[string]decimal.Decimal, error) {
	set := make(map[string]bool, len(accountIDs))
	for _, id := range accountIDs {
		set[id] = true
	}
	sums := make(map[string]decimal.Decimal)
	for _, p := range m.proofs {
		if p.Status != model.ProofStatusVerified || p.AccountID == nil || !set[*p.AccountID] {
			continue
		}
		sums[*p.AccountID] = sums[*p.AccountID].Add(p.Amount)
	}
	return sums, nil
}

// ── Mock WithdrawalRepository ──

type mockWithdrawalRepo struct {
	withdrawals map[string]*model.Withdrawal
	seq         int
}

func newMockWithdrawalRepo() *mockWithdrawalRepo {
	return &mockWithdrawalRepo{withdrawals: make(map[string]*model.Withdrawal)}
}

func (m *mockWithdrawalRepo) Create(_ context.Context, withdrawal *model.Withdrawal) error {
	if withdrawal.WithdrawalID == "" {
		m.seq++
		withdrawal.WithdrawalID = fmt.Sprintf("wd-%d", m.seq)
	}
	if withdrawal.CreatedAt.IsZero() {
		withdrawal.CreatedAt = time.Now()
	}
	m.withdrawals[withdrawal.WithdrawalID] = withdrawal
	return nil
}

func (m *mockWithdrawalRepo) GetByID(_ context.Context, id string) (*model.Withdrawal, error) {
	if w, ok := m.withdrawals[id]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWithdrawalRepo) List(_ context.Context, filters *repository.WithdrawalListFilters, offset, limit int) ([]model.Withdrawal, int64, error) {
	var all []model.Withdrawal
	for _, w := range m.withdrawals {
		match := true
		if filters != nil {
			if filters.Status != "" && w.Status != filters.Status {
				match = false
			}
			if filters.AccountID != "" && w.AccountID != filters.AccountID {
				match = false
			}
		}
		if match {
			all = append(all, *w)
		}
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockWithdrawalRepo) ListByAccount(ctx context.Context, accountID string, offset, limit int) ([]model.Withdrawal, int64, error) {
	return m.List(ctx, &repository.WithdrawalListFilters{AccountID: accountID}, offset, limit)
}

func (m *mockWithdrawalRepo) UpdateStatusFromPending(_ context.Context, withdrawalID, target, reviewerID string) error {
	w, ok := m.withdrawals[withdrawalID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if w.Status != model.WithdrawalStatusPending {
		return pkgerrors.ErrAlreadyFinalized
	}
	now := time.Now()
	w.Status = target
	w.ReviewedAt = &now
	w.ReviewedBy = &reviewerID
	return nil
}

func (m *mockWithdrawalRepo) CompleteFromApproved(_ context.Context, withdrawalID, txID, reviewerID string) error {
	w, ok := m.withdrawals[withdrawalID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if w.Status != model.WithdrawalStatusApproved {
		return pkgerrors.ErrAlreadyFinalized
	}
	now := time.Now()
	w.Status = model.WithdrawalStatusCompleted
	w.TxID = txID
	w.ReviewedAt = &now
	w.ReviewedBy = &reviewerID
	return nil
}

// ── Mock TransactionRepository ──

type mockTransactionRepo struct {
	txns []*model.Transaction
	seq  int
}

func newMockTransactionRepo() *mockTransactionRepo {
	return &mockTransactionRepo{}
}

func (m *mockTransactionRepo) Create(_ context.Context, txn *model.Transaction) error {
	if txn.TransactionID == "" {
		m.seq++
		txn.TransactionID = fmt.Sprintf("txn-%d", m.seq)
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	m.txns = append(m.txns, txn)
	return nil
}

func (m *mockTransactionRepo) ListByAccount(_ context.Context, accountID string, offset, limit int) ([]model.Transaction, int64, error) {
	var all []model.Transaction
	for _, t := range m.txns {
		if t.AccountID == accountID {
			all = append(all, *t)
		}
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockTransactionRepo) ListByRange(_ context.Context, from, to time.Time) ([]model.Transaction, error) {
	var result []model.Transaction
	for _, t := range m.txns {
		if !t.CreatedAt.Before(from) && t.CreatedAt.Before(to) {
			result = append(result, *t)
		}
	}
	return result, nil
}

// ── Mock ReferralRepository ──

type mockReferralRepo struct {
	referrals []*model.Referral
	seq       int
}

func newMockReferralRepo() *mockReferralRepo {
	return &mockReferralRepo{}
}

func (m *mockReferralRepo) Create(_ context.Context, referral *model.Referral) error {
	for _, r := range m.referrals {
		if r.ReferredID == referral.ReferredID {
			return gorm.ErrDuplicatedKey
		}
	}
	if referral.ReferralID == "" {
		m.seq++
		referral.ReferralID = fmt.Sprintf("ref-%d", m.seq)
	}
	m.referrals = append(m.referrals, referral)
	return nil
}

func (m *mockReferralRepo) GetByReferred(_ context.Context, referredID string) (*model.Referral, error) {
	for _, r := range m.referrals {
		if r.ReferredID == referredID {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReferralRepo) CountByReferrer(_ context.Context, referrerID string) (int64, error) {
	var count int64
	for _, r := range m.referrals {
		if r.ReferrerID == referrerID {
			count++
		}
	}
	return count, nil
}

// ── 聚合构造 ──

type testRepos struct {
	account     *mockAccountRepo
	proof       *mockProofRepo
	withdrawal  *mockWithdrawalRepo
	transaction *mockTransactionRepo
	referral    *mockReferralRepo
}

// newTestRepository 构造注入 mock 的 Repository 聚合（db 为空）
func newTestRepository() (*repository.Repository, *testRepos) {
	mocks := &testRepos{
		account:     newMockAccountRepo(),
		proof:       newMockProofRepo(),
		withdrawal:  newMockWithdrawalRepo(),
		transaction: newMockTransactionRepo(),
		referral:    newMockReferralRepo(),
	}
	repo := &repository.Repository{
		Account:     mocks.account,
		Proof:       mocks.proof,
		Withdrawal:  mocks.withdrawal,
		Transaction: mocks.transaction,
		Referral:    mocks.referral,
	}
	return repo, mocks
}

// [自证通过] internal/service/mock_repos_test.go
