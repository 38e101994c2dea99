package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation is a row of the donations table owned by the fundraising service.
type Donation struct {
	DonationID     string          `db:"donation_id"`
	OrganizationID string          `db:"organization_id"`
	Amount         decimal.Decimal `db:"amount"`
	DonatedAt      time.Time       `db:"donated_at"`
	FundID         *string         `db:"fund_id"`
	CampaignID     *string         `db:"campaign_id"`
}
