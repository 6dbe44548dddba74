package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bowlo_nl/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertCenter(ctx context.Context, c domain.Center) error {
	_, err := r.db.ExecContext(ctx, upsertCenterSQL,
		c.PlaceID,
		c.Name,
		c.FormattedAddress,
		valF64(c.Rating),
		valInt(c.TotalReviews),
		valStr(c.TopReviews),
		valStr(c.WeekdayText),
		valBool(c.OpenNow),
		valStr(c.Website),
		valStr(c.Phone),
		valStr(c.GoogleMapsURL),
		valF64(c.Lat),
		valF64(c.Lng),
	)
	if err != nil {
		return fmt.Errorf("mysql: upsert center %s: %w", c.PlaceID, err)
	}
	return nil
}

func (r *Repo) LogMiss(ctx context.Context, placeID string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, placeID, status, reason)
	return err
}

func (r *Repo) GetCenter(ctx context.Context, placeID string) (domain.Center, error) {
	c, err := scanCenter(r.db.QueryRowContext(ctx, getCenterSQL, placeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Center{}, domain.ErrNotFound
		}
		return domain.Center{}, fmt.Errorf("mysql: get center %s: %w", placeID, err)
	}
	return c, nil
}

func (r *Repo) ListCenters(ctx context.Context, q domain.CentersQuery) ([]domain.Center, error) {
	query, args := buildListCenters(q)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("mysql: list centers: %w", err)
	}
	defer rows.Close()

	var out []domain.Center
	for rows.Next() {
		c, err := scanCenter(rows)
		if err != nil {
			return nil, fmt.Errorf("mysql: scan center: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: iterate centers: %w", err)
	}
	return out, nil
}

func (r *Repo) ListAddresses(ctx context.Context) ([]domain.AddressRef, error) {
	rows, err := r.db.QueryContext(ctx, listAddressesSQL)
	if err != nil {
		return nil, fmt.Errorf("mysql: list addresses: %w", err)
	}
	defer rows.Close()

	var out []domain.AddressRef
	for rows.Next() {
		var a domain.AddressRef
		if err := rows.Scan(&a.PlaceID, &a.FormattedAddress); err != nil {
			return nil, fmt.Errorf("mysql: scan address: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: iterate addresses: %w", err)
	}
	return out, nil
}

// buildListCenters renders the filtered SELECT for q. Text filters compare
// LOWER(column) so they behave like ILIKE on the utf8mb4_bin columns.
func buildListCenters(q domain.CentersQuery) (string, []any) {
	var (
		where []string
		args  []any
	)
	if q.AddressContains != "" {
		where = append(where, "LOWER(formatted_address) LIKE ?")
		args = append(args, likePattern(q.AddressContains))
	}
	if q.Text != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(formatted_address) LIKE ?)")
		p := likePattern(q.Text)
		args = append(args, p, p)
	}
	if q.MinRating != nil {
		where = append(where, "rating >= ?")
		args = append(args, *q.MinRating)
	}

	var b strings.Builder
	b.WriteString("SELECT")
	b.WriteString(centerColumns)
	b.WriteString("\nFROM bowling_centers")
	if len(where) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(listCentersOrder)
	if q.Limit > 0 {
		b.WriteString("\nLIMIT ?")
		args = append(args, q.Limit)
	}
	return b.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCenter(row rowScanner) (domain.Center, error) {
	var c domain.Center
	var (
		rating                   sql.NullFloat64
		totalReviews             sql.NullInt64
		photos, reviews, weekday sql.NullString
		openNow                  sql.NullBool
		website, phone, mapsURL  sql.NullString
		lat, lng                 sql.NullFloat64
	)
	if err := row.Scan(
		&c.PlaceID,
		&c.Name,
		&c.FormattedAddress,
		&rating,
		&totalReviews,
		&photos,
		&reviews,
		&weekday,
		&openNow,
		&website,
		&phone,
		&mapsURL,
		&lat, &lng,
	); err != nil {
		return domain.Center{}, err
	}

	if rating.Valid {
		f := rating.Float64
		c.Rating = &f
	}
	if totalReviews.Valid {
		n := int(totalReviews.Int64)
		c.TotalReviews = &n
	}
	if openNow.Valid {
		b := openNow.Bool
		c.OpenNow = &b
	}
	if lat.Valid && lng.Valid {
		la, ln := lat.Float64, lng.Float64
		c.Lat, c.Lng = &la, &ln
	}
	c.LocalPhotos = nullStr(photos)
	c.TopReviews = nullStr(reviews)
	c.WeekdayText = nullStr(weekday)
	c.Website = nullStr(website)
	c.Phone = nullStr(phone)
	c.GoogleMapsURL = nullStr(mapsURL)
	return c, nil
}

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
