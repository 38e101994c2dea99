package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/nonprofit_ledger/internal/apperrors"
	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/nonprofit_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/nonprofit_ledger/internal/core/ports/services"
	"github.com/SscSPs/nonprofit_ledger/internal/dto"
	"github.com/google/uuid"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service.
func NewAccountService(txManager portsrepo.TransactionManager, repo portsrepo.AccountRepositoryFacade, options ...ServiceOption) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService: newBaseService(options),
		txManager:   txManager,
		accountRepo: repo,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, organizationID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: account code and name are required", apperrors.ErrValidation)
	}
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: invalid account type '%s'", apperrors.ErrValidation, req.AccountType)
	}
	if (req.FundID != nil || req.CampaignID != nil) && req.AccountType != domain.Revenue {
		return nil, fmt.Errorf("%w: only revenue accounts can be tagged with a fund or campaign", apperrors.ErrValidation)
	}

	now := s.Now()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		OrganizationID:  organizationID,
		Code:            code,
		Name:            name,
		AccountType:     req.AccountType,
		ParentAccountID: req.ParentAccountID,
		FundID:          req.FundID,
		CampaignID:      req.CampaignID,
		Description:     req.Description,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if req.ParentAccountID != nil {
			if _, err := s.accountRepo.FindAccountByID(ctx, organizationID, *req.ParentAccountID); err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return fmt.Errorf("%w: parent account %s not found", apperrors.ErrValidation, *req.ParentAccountID)
				}
				return err
			}
		}

		existing, err := s.accountRepo.FindAccountByCode(ctx, organizationID, code)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateCode, code)
		}

		return s.accountRepo.SaveAccount(ctx, account)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create account",
			slog.String("organization_id", organizationID),
			slog.String("code", code))
		return nil, err
	}

	s.LogInfo(ctx, "Account created",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, organizationID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, organizationID, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetChartOfAccounts(ctx context.Context, organizationID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, organizationID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("organization_id", organizationID))
		return nil, err
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, organizationID, accountID, userID string) error {
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		account, err := s.accountRepo.FindAccountByIDForUpdate(ctx, organizationID, accountID)
		if err != nil {
			return err
		}
		if !account.IsActive {
			return nil
		}

		// Posted references never block deactivation; only drafts still being edited do.
		drafts, err := s.accountRepo.CountDraftReferences(ctx, organizationID, accountID)
		if err != nil {
			return err
		}
		if drafts > 0 {
			return fmt.Errorf("%w: %d draft line items reference account %s", apperrors.ErrAccountInUse, drafts, accountID)
		}

		return s.accountRepo.DeactivateAccount(ctx, organizationID, accountID, userID, s.Now())
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		}
		return err
	}

	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}

func (s *accountService) InitializeDefaults(ctx context.Context, organizationID, organizationType, userID string) ([]domain.Account, error) {
	templates, ok := chartTemplateFor(organizationType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown organization type '%s'", apperrors.ErrValidation, organizationType)
	}

	var result []domain.Account
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.accountRepo.ListAccounts(ctx, organizationID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			result = existing
			return nil
		}

		now := s.Now()
		accounts := make([]domain.Account, len(templates))
		for i, t := range templates {
			accounts[i] = domain.Account{
				AccountID:      uuid.NewString(),
				OrganizationID: organizationID,
				Code:           t.code,
				Name:           t.name,
				AccountType:    t.accountType,
				Description:    t.description,
				IsActive:       true,
				AuditFields: domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     userID,
					LastUpdatedAt: now,
					LastUpdatedBy: userID,
				},
			}
		}
		if err := s.accountRepo.SaveAccounts(ctx, accounts); err != nil {
			return err
		}
		result = accounts
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to initialize default chart of accounts",
			slog.String("organization_id", organizationID))
		return nil, err
	}

	s.LogInfo(ctx, "Chart of accounts initialized",
		slog.String("organization_id", organizationID),
		slog.Int("accounts", len(result)))
	return result, nil
}
