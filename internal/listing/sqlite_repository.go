package listing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// SQLiteRepository stores each listing as a JSON document next to the
// columns the public search filters and sorts on.
type SQLiteRepository struct {
	db *sqlx.DB
}

// NewSQLiteRepository wraps an open database handle. The listings table is
// created by the db package migrations.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: sqlx.NewDb(db, "sqlite3")}
}

type listingRow struct {
	ID               string  `db:"id"`
	CreatorID        string  `db:"creator_id"`
	Status           string  `db:"status"`
	State            string  `db:"state"`
	Locality         string  `db:"locality"`
	Area             string  `db:"area"`
	PropertyType     string  `db:"property_type"`
	Bedrooms         *int    `db:"bedrooms"`
	Bathrooms        *int    `db:"bathrooms"`
	InviteAgentToBid bool    `db:"invite_agent_to_bid"`
	RentAmount       float64 `db:"rent_amount"`
	Views            int64   `db:"views"`
	ExpiresAt        int64   `db:"expires_at"`
	CreatedAt        int64   `db:"created_at"`
	UpdatedAt        int64   `db:"updated_at"`
	Version          int64   `db:"version"`
	Doc              string  `db:"doc"`
}

func toRow(l *Listing) (listingRow, error) {
	doc, err := json.Marshal(l)
	if err != nil {
		return listingRow{}, fmt.Errorf("encoding listing %s: %w", l.ID, err)
	}
	return listingRow{
		ID:               l.ID,
		CreatorID:        l.Creator.ID,
		Status:           string(l.Status),
		State:            l.State,
		Locality:         l.Locality,
		Area:             l.Area,
		PropertyType:     l.PropertyType,
		Bedrooms:         l.Bedrooms,
		Bathrooms:        l.Bathrooms,
		InviteAgentToBid: l.InviteAgentToBid,
		RentAmount:       l.RentAmount,
		Views:            l.Views,
		ExpiresAt:        l.ExpiresAt.UnixNano(),
		CreatedAt:        l.CreatedAt.UnixNano(),
		UpdatedAt:        l.UpdatedAt.UnixNano(),
		Version:          l.Version,
		Doc:              string(doc),
	}, nil
}

func (r listingRow) listing() (*Listing, error) {
	var l Listing
	if err := json.Unmarshal([]byte(r.Doc), &l); err != nil {
		return nil, fmt.Errorf("decoding listing %s: %w", r.ID, err)
	}
	// views and version are owned by their columns.
	l.Views = r.Views
	l.Version = r.Version
	l.fillEmpty()
	return &l, nil
}

const insertListingSQL = `INSERT INTO listings
	(id, creator_id, status, state, locality, area, property_type, bedrooms, bathrooms,
	 invite_agent_to_bid, rent_amount, views, expires_at, created_at, updated_at, version, doc)
	VALUES
	(:id, :creator_id, :status, :state, :locality, :area, :property_type, :bedrooms, :bathrooms,
	 :invite_agent_to_bid, :rent_amount, :views, :expires_at, :created_at, :updated_at, :version, :doc)`

// Create inserts a new listing.
func (r *SQLiteRepository) Create(ctx context.Context, l *Listing) error {
	row, err := toRow(l)
	if err != nil {
		return err
	}
	if _, err := r.db.NamedExecContext(ctx, insertListingSQL, row); err != nil {
		return fmt.Errorf("inserting listing: %w", err)
	}
	return nil
}

// Get returns a listing by its ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Listing, error) {
	var row listingRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM listings WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying listing %s: %w", id, err)
	}
	return row.listing()
}

const updateListingSQL = `UPDATE listings SET
	status = :status,
	state = :state,
	locality = :locality,
	area = :area,
	property_type = :property_type,
	bedrooms = :bedrooms,
	bathrooms = :bathrooms,
	invite_agent_to_bid = :invite_agent_to_bid,
	rent_amount = :rent_amount,
	expires_at = :expires_at,
	updated_at = :updated_at,
	version = :version,
	doc = :doc
	WHERE id = :id AND version = :loaded_version`

// Mutate applies fn to the stored listing and writes it back if its
// version has not moved.
func (r *SQLiteRepository) Mutate(ctx context.Context, id string, fn func(*Listing) error) (*Listing, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := current.clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Version = current.Version + 1

	row, err := toRow(next)
	if err != nil {
		return nil, err
	}
	args := struct {
		listingRow
		LoadedVersion int64 `db:"loaded_version"`
	}{row, current.Version}

	result, err := r.db.NamedExecContext(ctx, updateListingSQL, args)
	if err != nil {
		return nil, fmt.Errorf("updating listing %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrConflict
	}
	return next, nil
}

// Delete removes id if check accepts the stored listing and it has not
// changed since it was loaded.
func (r *SQLiteRepository) Delete(ctx context.Context, id string, check func(*Listing) error) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := check(current); err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM listings WHERE id = ? AND version = ?", id, current.Version)
	if err != nil {
		return fmt.Errorf("deleting listing %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// AddView bumps the view counter without touching the version.
func (r *SQLiteRepository) AddView(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE listings SET views = views + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("counting view on %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List runs the public search.
func (r *SQLiteRepository) List(ctx context.Context, q Query) (*Page, error) {
	q = q.Normalized()
	where, args := sqliteWhere(q)

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM listings WHERE "+where, args...); err != nil {
		return nil, fmt.Errorf("counting listings: %w", err)
	}

	field, desc, _ := parseSort(q.Sort)
	order := sortFields[field]
	if desc {
		order += " DESC"
	}
	query := fmt.Sprintf("SELECT * FROM listings WHERE %s ORDER BY %s, id LIMIT ? OFFSET ?", where, order)

	var rows []listingRow
	if err := r.db.SelectContext(ctx, &rows, query, append(args, q.PageSize, q.Skip())...); err != nil {
		return nil, fmt.Errorf("listing listings: %w", err)
	}

	listings := make([]*Listing, 0, len(rows))
	for _, row := range rows {
		l, err := row.listing()
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}

	return &Page{Listings: listings, Pagination: newPagination(q, total)}, nil
}

func sqliteWhere(q Query) (string, []interface{}) {
	conditions := []string{"status = ?"}
	args := []interface{}{string(StatusActive)}

	like := func(column, v string) {
		if v == "" {
			return
		}
		conditions = append(conditions, column+` LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(v)+"%")
	}
	like("state", q.State)
	like("locality", q.Locality)
	like("area", q.Area)

	if q.PropertyType != "" {
		conditions = append(conditions, "property_type = ?")
		args = append(args, q.PropertyType)
	}
	if q.Bedrooms != nil {
		conditions = append(conditions, "bedrooms = ?")
		args = append(args, *q.Bedrooms)
	}
	if q.Bathrooms != nil {
		conditions = append(conditions, "bathrooms = ?")
		args = append(args, *q.Bathrooms)
	}
	if q.InviteAgentToBid != nil {
		conditions = append(conditions, "invite_agent_to_bid = ?")
		args = append(args, *q.InviteAgentToBid)
	}
	if q.MinRent != nil {
		conditions = append(conditions, "rent_amount >= ?")
		args = append(args, *q.MinRent)
	}
	if q.MaxRent != nil {
		conditions = append(conditions, "rent_amount <= ?")
		args = append(args, *q.MaxRent)
	}

	return strings.Join(conditions, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
