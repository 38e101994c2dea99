package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/apperrors"
	"github.com/SscSPs/nonprofit_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/nonprofit_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/nonprofit_ledger/internal/models"
	"github.com/SscSPs/nonprofit_ledger/internal/utils/mapping"
	"github.com/SscSPs/nonprofit_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `entry_id, organization_id, period_id, entry_date, description, status, source_type, source_id,
	created_by, created_at, posted_by, posted_at`

const lineItemColumns = `line_item_id, entry_id, line_number, account_id, debit_amount, credit_amount, memo`

const insertLineItemQuery = `
	INSERT INTO journal_line_items (` + lineItemColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries and their line items.
func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

// findEntries loads entry rows and attaches their line items in line order.
func (r *PgxJournalRepository) findEntries(ctx context.Context, query string, args ...any) ([]domain.JournalEntry, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	entries, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []domain.JournalEntry{}, nil
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.EntryID
	}
	lineRows, err := r.db(ctx).Query(ctx, `SELECT `+lineItemColumns+` FROM journal_line_items
		WHERE entry_id = ANY($1) ORDER BY entry_id, line_number`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	lines, err := pgx.CollectRows(lineRows, pgx.RowToStructByName[models.JournalLineItem])
	if err != nil {
		return nil, fmt.Errorf("failed to scan line items: %w", err)
	}
	byEntry := make(map[string][]models.JournalLineItem, len(entries))
	for _, l := range lines {
		byEntry[l.EntryID] = append(byEntry[l.EntryID], l)
	}

	result := make([]domain.JournalEntry, len(entries))
	for i, e := range entries {
		result[i] = mapping.ToDomainJournalEntry(e, byEntry[e.EntryID])
	}
	return result, nil
}

func (r *PgxJournalRepository) findEntry(ctx context.Context, query string, args ...any) (*domain.JournalEntry, error) {
	entries, err := r.findEntries(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &entries[0], nil
}

func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error) {
	entry, err := r.findEntry(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE organization_id = $1 AND entry_id = $2`,
		organizationID, entryID)
	if err != nil {
		return nil, notFound(err, "journal entry %s", entryID)
	}
	return entry, nil
}

// FindEntryByIDForUpdate locks the entry row; line items are only changed by holders of that lock.
func (r *PgxJournalRepository) FindEntryByIDForUpdate(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error) {
	entry, err := r.findEntry(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE organization_id = $1 AND entry_id = $2 FOR UPDATE`,
		organizationID, entryID)
	if err != nil {
		return nil, notFound(err, "journal entry %s", entryID)
	}
	return entry, nil
}

func (r *PgxJournalRepository) FindEntryBySource(ctx context.Context, organizationID string, sourceType domain.SourceType, sourceID string) (*domain.JournalEntry, error) {
	entry, err := r.findEntry(ctx, `SELECT `+entryColumns+` FROM journal_entries
		WHERE organization_id = $1 AND source_type = $2 AND source_id = $3`,
		organizationID, string(sourceType), sourceID)
	if err != nil {
		return nil, notFound(err, "journal entry for %s %s", sourceType, sourceID)
	}
	return entry, nil
}

// ListEntries retrieves a page of entries using keyset pagination on (entry_date, created_at, entry_id).
func (r *PgxJournalRepository) ListEntries(ctx context.Context, organizationID string, params portsrepo.ListEntriesParams) ([]domain.JournalEntry, *string, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + entryColumns + ` FROM journal_entries WHERE organization_id = $1`)
	args := []any{organizationID}
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if params.PeriodID != nil {
		sb.WriteString(` AND period_id = ` + next(*params.PeriodID))
	}
	if params.Status != nil {
		sb.WriteString(` AND status = ` + next(string(*params.Status)))
	}
	if params.NextToken != nil {
		cursor, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		sb.WriteString(` AND (entry_date, created_at, entry_id) < (` +
			next(cursor.EntryDate) + `::date, ` + next(cursor.CreatedAt) + `::timestamptz, ` + next(cursor.EntryID) + `::text)`)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	// One extra row tells whether another page exists.
	sb.WriteString(` ORDER BY entry_date DESC, created_at DESC, entry_id DESC LIMIT ` + next(limit+1))

	entries, err := r.findEntries(ctx, sb.String(), args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	if len(entries) <= limit {
		return entries, nil, nil
	}

	page := entries[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(pagination.Cursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, EntryID: last.EntryID})
	return page, &token, nil
}

func (r *PgxJournalRepository) CountDraftsInPeriod(ctx context.Context, organizationID, periodID string) (int, error) {
	var count int
	err := r.db(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM journal_entries WHERE organization_id = $1 AND period_id = $2 AND status = $3`,
		organizationID, periodID, string(domain.Draft)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count drafts in period %s: %w", periodID, err)
	}
	return count, nil
}

// SaveEntry inserts the entry row and its line items in one batch. Callers run it
// inside TransactionManager.WithTx so a failed line leaves nothing behind.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)

	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO journal_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.EntryID, m.OrganizationID, m.PeriodID, m.EntryDate, m.Description, m.Status, m.SourceType, m.SourceID,
		m.CreatedBy, m.CreatedAt, m.PostedBy, m.PostedAt)
	for i, line := range entry.LineItems {
		l := mapping.ToModelLineItem(line, i+1)
		batch.Queue(insertLineItemQuery, l.LineItemID, m.EntryID, l.LineNumber, l.AccountID, l.DebitAmount, l.CreditAmount, l.Memo)
	}

	br := r.db(ctx).SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = mapPgError(err, "failed to save journal entry %s", m.EntryID)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close journal entry batch: %w", err)
	}
	return batchErr
}

// draftConflict explains why a statement guarded by status = 'draft' touched no row.
func (r *PgxJournalRepository) draftConflict(ctx context.Context, organizationID, entryID string, conflict error) error {
	if _, err := r.FindEntryByID(ctx, organizationID, entryID); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s", conflict, entryID)
}

func (r *PgxJournalRepository) MarkEntryPosted(ctx context.Context, organizationID, entryID, postedBy string, postedAt time.Time) error {
	tag, err := r.db(ctx).Exec(ctx, `
		UPDATE journal_entries SET status = $3, posted_by = $4, posted_at = $5
		WHERE organization_id = $1 AND entry_id = $2 AND status = $6`,
		organizationID, entryID, string(domain.Posted), postedBy, postedAt, string(domain.Draft))
	if err != nil {
		return mapPgError(err, "failed to post journal entry %s", entryID)
	}
	if tag.RowsAffected() == 0 {
		return r.draftConflict(ctx, organizationID, entryID, apperrors.ErrAlreadyPosted)
	}
	return nil
}

// DeleteEntry removes a draft entry. Line items go with it through ON DELETE CASCADE.
func (r *PgxJournalRepository) DeleteEntry(ctx context.Context, organizationID, entryID string) error {
	tag, err := r.db(ctx).Exec(ctx, `
		DELETE FROM journal_entries WHERE organization_id = $1 AND entry_id = $2 AND status = $3`,
		organizationID, entryID, string(domain.Draft))
	if err != nil {
		return mapPgError(err, "failed to delete journal entry %s", entryID)
	}
	if tag.RowsAffected() == 0 {
		return r.draftConflict(ctx, organizationID, entryID, apperrors.ErrCannotDeletePosted)
	}
	return nil
}

func (r *PgxJournalRepository) SaveLineItem(ctx context.Context, organizationID string, line domain.JournalLineItem) error {
	l := mapping.ToModelLineItem(line, 0)
	tag, err := r.db(ctx).Exec(ctx, `
		INSERT INTO journal_line_items (`+lineItemColumns+`)
		SELECT $1, e.entry_id,
			COALESCE((SELECT MAX(line_number) FROM journal_line_items WHERE entry_id = e.entry_id), 0) + 1,
			$3, $4, $5, $6
		FROM journal_entries e
		WHERE e.organization_id = $7 AND e.entry_id = $2 AND e.status = $8`,
		l.LineItemID, l.EntryID, l.AccountID, l.DebitAmount, l.CreditAmount, l.Memo, organizationID, string(domain.Draft))
	if err != nil {
		return mapPgError(err, "failed to save line item on entry %s", l.EntryID)
	}
	if tag.RowsAffected() == 0 {
		return r.draftConflict(ctx, organizationID, l.EntryID, apperrors.ErrCannotModifyPosted)
	}
	return nil
}

func (r *PgxJournalRepository) DeleteLineItem(ctx context.Context, organizationID, entryID, lineItemID string) error {
	tag, err := r.db(ctx).Exec(ctx, `
		DELETE FROM journal_line_items l
		USING journal_entries e
		WHERE l.entry_id = e.entry_id AND e.organization_id = $1 AND e.entry_id = $2 AND l.line_item_id = $3 AND e.status = $4`,
		organizationID, entryID, lineItemID, string(domain.Draft))
	if err != nil {
		return mapPgError(err, "failed to delete line item %s", lineItemID)
	}
	if tag.RowsAffected() == 0 {
		entry, err := r.FindEntryByID(ctx, organizationID, entryID)
		if err != nil {
			return err
		}
		if entry.IsPosted() {
			return fmt.Errorf("%w: %s", apperrors.ErrCannotModifyPosted, entryID)
		}
		return fmt.Errorf("line item %s on entry %s: %w", lineItemID, entryID, apperrors.ErrNotFound)
	}
	return nil
}
