package mapping

import (
	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	"github.com/SscSPs/nonprofit_ledger/internal/models"
)

// ToDomainDonation converts a model Donation to a domain Donation
func ToDomainDonation(m models.Donation) domain.Donation {
	return domain.Donation{
		DonationID:     m.DonationID,
		OrganizationID: m.OrganizationID,
		Amount:         m.Amount,
		DonatedAt:      m.DonatedAt.UTC(),
		FundID:         m.FundID,
		CampaignID:     m.CampaignID,
	}
}
