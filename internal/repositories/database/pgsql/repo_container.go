package pgsql

import (
	portsrepo "github.com/SscSPs/nonprofit_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:     newPgxTransactionManager(dbPool),
		AccountRepo:   newPgxAccountRepository(dbPool),
		PeriodRepo:    newPgxPeriodRepository(dbPool),
		JournalRepo:   newPgxJournalRepository(dbPool),
		DonationRepo:  newPgxDonationRepository(dbPool),
		WebhookRepo:   newPgxWebhookRepository(dbPool),
		ReportingRepo: newReportingRepository(dbPool),
	}
}
