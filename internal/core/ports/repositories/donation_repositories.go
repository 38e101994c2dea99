package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
)

// DonationReader gives read-only access to the donation feed.
type DonationReader interface {
	// ListDonations retrieves donations of the organization with from <= donatedAt < to, oldest first.
	ListDonations(ctx context.Context, organizationID string, from, to time.Time) ([]domain.Donation, error)
}
