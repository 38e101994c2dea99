package dto

import "time"

// AutoPostRequest selects which donations to post. Either PeriodID or both From
// and To must be provided; To is exclusive.
type AutoPostRequest struct {
	PeriodID    *string    `json:"periodID"`
	From        *time.Time `json:"from"`
	To          *time.Time `json:"to"`
	PostEntries *bool      `json:"postEntries"` // Defaults to true
}

// DonationPostingError describes why one donation could not be posted.
type DonationPostingError struct {
	DonationID string `json:"donationID"`
	Error      string `json:"error"`
}

// AutoPostResult aggregates the outcome of a bulk donation posting run.
type AutoPostResult struct {
	EntriesCreated   int                    `json:"entriesCreated"`
	DraftsPosted     int                    `json:"draftsPosted"` // drafts left by an earlier run and posted now
	DonationsSkipped int                    `json:"donationsSkipped"`
	EntryIDs         []string               `json:"entryIDs"`
	Errors           []DonationPostingError `json:"errors"`
}
