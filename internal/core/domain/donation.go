package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation is a gift recorded by the fundraising side of the platform. The
// ledger only reads donations.
type Donation struct {
	DonationID     string          `json:"donationID"`
	OrganizationID string          `json:"organizationID"`
	Amount         decimal.Decimal `json:"amount"`
	DonatedAt      time.Time       `json:"donatedAt"`
	FundID         *string         `json:"fundID,omitempty"`
	CampaignID     *string         `json:"campaignID,omitempty"`
}
