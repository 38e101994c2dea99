package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/nonprofit_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/nonprofit_ledger/internal/models"
	"github.com/SscSPs/nonprofit_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxDonationRepository reads the donations table written by the fundraising service.
type PgxDonationRepository struct {
	BaseRepository
}

func newPgxDonationRepository(pool *pgxpool.Pool) *PgxDonationRepository {
	return &PgxDonationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DonationReader = (*PgxDonationRepository)(nil)

func (r *PgxDonationRepository) ListDonations(ctx context.Context, organizationID string, from, to time.Time) ([]domain.Donation, error) {
	rows, err := r.db(ctx).Query(ctx, `
		SELECT donation_id, organization_id, amount, donated_at, fund_id, campaign_id
		FROM donations
		WHERE organization_id = $1 AND donated_at >= $2 AND donated_at < $3
		ORDER BY donated_at, donation_id`,
		organizationID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query donations: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Donation])
	if err != nil {
		return nil, fmt.Errorf("failed to scan donations: %w", err)
	}
	donations := make([]domain.Donation, len(ms))
	for i, m := range ms {
		donations[i] = mapping.ToDomainDonation(m)
	}
	return donations, nil
}
