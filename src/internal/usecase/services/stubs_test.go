package services_test

import (
	"context"

	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/usecase/services"
)

type userRepoStub struct {
	createFn                 func(ctx context.Context, user domain.User) (domain.User, error)
	getByIDFn                func(ctx context.Context, id string) (domain.User, error)
	getByEmailFn             func(ctx context.Context, email string) (domain.User, error)
	getByVerificationTokenFn func(ctx context.Context, token string) (domain.User, error)
	getByResetTokenFn        func(ctx context.Context, token string) (domain.User, error)
	updateFn                 func(ctx context.Context, user domain.User) (domain.User, error)
	resolveEmailFn           func(ctx context.Context, userID string) (string, error)
}

func (s userRepoStub) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if s.createFn != nil {
		return s.createFn(ctx, user)
	}
	return user, nil
}

func (s userRepoStub) GetByID(ctx context.Context, id string) (domain.User, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return domain.User{}, domain.ErrRecordNotFound
}

func (s userRepoStub) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	if s.getByEmailFn != nil {
		return s.getByEmailFn(ctx, email)
	}
	return domain.User{}, domain.ErrRecordNotFound
}

func (s userRepoStub) GetByVerificationToken(ctx context.Context, token string) (domain.User, error) {
	if s.getByVerificationTokenFn != nil {
		return s.getByVerificationTokenFn(ctx, token)
	}
	return domain.User{}, domain.ErrRecordNotFound
}

func (s userRepoStub) GetByResetToken(ctx context.Context, token string) (domain.User, error) {
	if s.getByResetTokenFn != nil {
		return s.getByResetTokenFn(ctx, token)
	}
	return domain.User{}, domain.ErrRecordNotFound
}

func (s userRepoStub) Update(ctx context.Context, user domain.User) (domain.User, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, user)
	}
	return user, nil
}

func (s userRepoStub) ResolveEmail(ctx context.Context, userID string) (string, error) {
	if s.resolveEmailFn != nil {
		return s.resolveEmailFn(ctx, userID)
	}
	return "", domain.ErrRecordNotFound
}

type accountRepoStub struct {
	createFn       func(ctx context.Context, account domain.Account) (domain.Account, error)
	getByIDFn      func(ctx context.Context, id string) (domain.Account, error)
	getByUserIDFn  func(ctx context.Context, userID string) (domain.Account, error)
	updateStatusFn func(ctx context.Context, id string, status domain.AccountStatus) (domain.Account, error)
}

func (s accountRepoStub) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	if s.createFn != nil {
		return s.createFn(ctx, account)
	}
	return account, nil
}

func (s accountRepoStub) GetByID(ctx context.Context, id string) (domain.Account, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return domain.Account{}, domain.ErrRecordNotFound
}

func (s accountRepoStub) GetByUserID(ctx context.Context, userID string) (domain.Account, error) {
	if s.getByUserIDFn != nil {
		return s.getByUserIDFn(ctx, userID)
	}
	return domain.Account{}, domain.ErrRecordNotFound
}

func (s accountRepoStub) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) (domain.Account, error) {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, id, status)
	}
	return domain.Account{ID: id, Status: status}, nil
}

type transactionRepoStub struct {
	findByParticipantFn func(ctx context.Context, email string) ([]domain.Transaction, error)
	findByIDFn          func(ctx context.Context, id string) (domain.Transaction, error)
	findLatestSentToFn  func(ctx context.Context, email string, recipient string) (domain.Transaction, error)
}

func (s transactionRepoStub) FindByParticipant(ctx context.Context, email string) ([]domain.Transaction, error) {
	if s.findByParticipantFn != nil {
		return s.findByParticipantFn(ctx, email)
	}
	return nil, nil
}

func (s transactionRepoStub) FindByID(ctx context.Context, id string) (domain.Transaction, error) {
	if s.findByIDFn != nil {
		return s.findByIDFn(ctx, id)
	}
	return domain.Transaction{}, domain.ErrRecordNotFound
}

func (s transactionRepoStub) FindLatestSentTo(ctx context.Context, email string, recipient string) (domain.Transaction, error) {
	if s.findLatestSentToFn != nil {
		return s.findLatestSentToFn(ctx, email, recipient)
	}
	return domain.Transaction{}, domain.ErrRecordNotFound
}

type transferStoreStub struct {
	execFn func(ctx context.Context, fn func(ctx context.Context, tx domain.TransferTx) error) error
}

func (s transferStoreStub) ExecTransfer(ctx context.Context, fn func(ctx context.Context, tx domain.TransferTx) error) error {
	return s.execFn(ctx, fn)
}

type transferTxStub struct {
	lockFn    func(ctx context.Context, fromID string, toID string) (domain.Account, domain.Account, error)
	debitFn   func(ctx context.Context, accountID string, amount domain.Money) error
	creditFn  func(ctx context.Context, accountID string, amount domain.Money) error
	appendFn  func(ctx context.Context, txn domain.Transaction) (domain.Transaction, error)
	resolveFn func(ctx context.Context, userID string) (string, error)
}

func (s transferTxStub) LockAccounts(ctx context.Context, fromID string, toID string) (domain.Account, domain.Account, error) {
	return s.lockFn(ctx, fromID, toID)
}

func (s transferTxStub) Debit(ctx context.Context, accountID string, amount domain.Money) error {
	if s.debitFn != nil {
		return s.debitFn(ctx, accountID, amount)
	}
	return nil
}

func (s transferTxStub) Credit(ctx context.Context, accountID string, amount domain.Money) error {
	if s.creditFn != nil {
		return s.creditFn(ctx, accountID, amount)
	}
	return nil
}

func (s transferTxStub) AppendTransaction(ctx context.Context, txn domain.Transaction) (domain.Transaction, error) {
	if s.appendFn != nil {
		return s.appendFn(ctx, txn)
	}
	txn.ID = 1
	return txn, nil
}

func (s transferTxStub) ResolveEmail(ctx context.Context, userID string) (string, error) {
	if s.resolveFn != nil {
		return s.resolveFn(ctx, userID)
	}
	return userID + "@example.com", nil
}

type accountLifecycleStub struct {
	openFn     func(ctx context.Context, userID string) (domain.Account, error)
	activateFn func(ctx context.Context, userID string) error
}

func (s accountLifecycleStub) OpenAccount(ctx context.Context, userID string) (domain.Account, error) {
	if s.openFn != nil {
		return s.openFn(ctx, userID)
	}
	return domain.Account{UserID: userID}, nil
}

func (s accountLifecycleStub) ActivateForUser(ctx context.Context, userID string) error {
	if s.activateFn != nil {
		return s.activateFn(ctx, userID)
	}
	return nil
}

type tokenIssuerStub struct {
	issueFn func(userID string, email string) (string, error)
}

func (s tokenIssuerStub) Issue(userID string, email string) (string, error) {
	if s.issueFn != nil {
		return s.issueFn(userID, email)
	}
	return "token-" + userID, nil
}

type mailerStub struct {
	sendVerificationFn  func(ctx context.Context, to string, link string) error
	sendPasswordResetFn func(ctx context.Context, to string, link string) error
}

func (s mailerStub) SendVerification(ctx context.Context, to string, link string) error {
	if s.sendVerificationFn != nil {
		return s.sendVerificationFn(ctx, to, link)
	}
	return nil
}

func (s mailerStub) SendPasswordReset(ctx context.Context, to string, link string) error {
	if s.sendPasswordResetFn != nil {
		return s.sendPasswordResetFn(ctx, to, link)
	}
	return nil
}

type chatModelStub struct {
	completeFn func(ctx context.Context, messages []services.ChatMessage, tools []services.ToolDefinition) (services.ChatMessage, error)
}

func (s chatModelStub) Complete(ctx context.Context, messages []services.ChatMessage, tools []services.ToolDefinition) (services.ChatMessage, error) {
	return s.completeFn(ctx, messages, tools)
}
