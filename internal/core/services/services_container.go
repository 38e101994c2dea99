package services

import (
	portsrepo "github.com/SscSPs/nonprofit_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/nonprofit_ledger/internal/core/ports/services"
	"github.com/SscSPs/nonprofit_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, options ...ServiceOption) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.TxManager, repos.AccountRepo, options...)
	container.Period = NewPeriodService(repos.TxManager, repos.PeriodRepo, repos.JournalRepo, options...)
	container.Journal = NewJournalService(repos.TxManager, repos.JournalRepo, repos.PeriodRepo, repos.AccountRepo, options...)

	// The auto-poster goes through the journal service so every engine invariant applies.
	container.AutoPoster = NewAutoPostService(
		repos.DonationRepo,
		repos.AccountRepo,
		repos.PeriodRepo,
		repos.JournalRepo,
		container.Journal,
		options...,
	)

	container.Webhook = NewWebhookService(repos.WebhookRepo, cfg.WebhookMaxRetries, cfg.WebhookClaimTimeout, options...)
	container.Reporting = NewReportingService(repos.ReportingRepo, repos.AccountRepo, repos.PeriodRepo, options...)

	return container
}
