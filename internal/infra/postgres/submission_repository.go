package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"daily-challenge-service/internal/aggregate"
	"daily-challenge-service/internal/domain"
)

const uniqueViolation = "23505"

// Legacy rows may predate the type column; they are read as division.
const selectColumns = `id, challenge_date, COALESCE(NULLIF(challenge_type, ''), 'division'), user_id, display_name, total_score, breakdown, created_at`

// SubmissionRepository stores submissions in Postgres. The UNIQUE
// (challenge_date, challenge_type, user_id) constraint settles concurrent
// double submits.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

func (r *SubmissionRepository) Create(ctx context.Context, sub domain.Submission) error {
	breakdown, err := json.Marshal(sub.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO daily_submissions (id, challenge_date, challenge_type, user_id, display_name, total_score, breakdown, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sub.ID, sub.Date, string(sub.Type.Normalize()), sub.UserID, sub.DisplayName, sub.TotalScore, breakdown, sub.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrSubmissionExists
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) Find(ctx context.Context, key domain.DayKey, userID string) (domain.Submission, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM daily_submissions
		WHERE challenge_date = $1 AND COALESCE(NULLIF(challenge_type, ''), 'division') = $2 AND user_id = $3`,
		key.Date, string(key.Type.Normalize()), userID)
	sub, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return domain.Submission{}, fmt.Errorf("find submission: %w", err)
	}
	return sub, nil
}

func (r *SubmissionRepository) ListDay(ctx context.Context, key domain.DayKey) ([]domain.Submission, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM daily_submissions
		WHERE challenge_date = $1 AND COALESCE(NULLIF(challenge_type, ''), 'division') = $2
		ORDER BY seq`,
		key.Date, string(key.Type.Normalize()))
	if err != nil {
		return nil, fmt.Errorf("list day: %w", err)
	}
	return collect(rows)
}

func (r *SubmissionRepository) ListUser(ctx context.Context, userID, from, to string, t *domain.ChallengeType) ([]domain.Submission, error) {
	var typeFilter *string
	if t != nil {
		s := string(t.Normalize())
		typeFilter = &s
	}
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM daily_submissions
		WHERE user_id = $1 AND challenge_date BETWEEN $2 AND $3
		  AND ($4::text IS NULL OR COALESCE(NULLIF(challenge_type, ''), 'division') = $4)
		ORDER BY challenge_date, seq`,
		userID, from, to, typeFilter)
	if err != nil {
		return nil, fmt.Errorf("list user: %w", err)
	}
	return collect(rows)
}

func (r *SubmissionRepository) Tallies(ctx context.Context, keys []domain.DayKey) (map[domain.DayKey]aggregate.Tally, error) {
	out := make(map[domain.DayKey]aggregate.Tally, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	dates := make([]string, 0, len(keys))
	types := make([]string, 0, len(keys))
	for _, k := range keys {
		dates = append(dates, k.Date)
		types = append(types, string(k.Type.Normalize()))
	}
	rows, err := r.pool.Query(ctx, `
		SELECT s.challenge_date, COALESCE(NULLIF(s.challenge_type, ''), 'division') AS t, SUM(s.total_score), COUNT(*)
		FROM daily_submissions s
		JOIN unnest($1::text[], $2::text[]) AS k(d, t)
		  ON s.challenge_date = k.d AND COALESCE(NULLIF(s.challenge_type, ''), 'division') = k.t
		GROUP BY 1, 2`,
		dates, types)
	if err != nil {
		return nil, fmt.Errorf("tally days: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			date, typ string
			sum       float64
			count     int
		)
		if err := rows.Scan(&date, &typ, &sum, &count); err != nil {
			return nil, fmt.Errorf("scan tally: %w", err)
		}
		out[domain.DayKey{Date: date, Type: domain.ParseChallengeType(typ)}] = aggregate.Tally{Sum: sum, Count: count}
	}
	return out, rows.Err()
}

func (r *SubmissionRepository) DeleteDay(ctx context.Context, date string, t *domain.ChallengeType) (int64, error) {
	var typeFilter *string
	if t != nil {
		s := string(t.Normalize())
		typeFilter = &s
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM daily_submissions
		WHERE challenge_date = $1 AND ($2::text IS NULL OR COALESCE(NULLIF(challenge_type, ''), 'division') = $2)`,
		date, typeFilter)
	if err != nil {
		return 0, fmt.Errorf("delete day: %w", err)
	}
	return tag.RowsAffected(), nil
}

func collect(rows pgx.Rows) ([]domain.Submission, error) {
	defer rows.Close()
	out := make([]domain.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func scanSubmission(row pgx.Row) (domain.Submission, error) {
	var (
		sub       domain.Submission
		typ       string
		breakdown []byte
		createdAt time.Time
	)
	if err := row.Scan(&sub.ID, &sub.Date, &typ, &sub.UserID, &sub.DisplayName, &sub.TotalScore, &breakdown, &createdAt); err != nil {
		return domain.Submission{}, err
	}
	sub.Type = domain.ParseChallengeType(typ)
	sub.CreatedAt = createdAt.UTC()
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &sub.Breakdown); err != nil {
			return domain.Submission{}, fmt.Errorf("unmarshal breakdown: %w", err)
		}
	}
	return sub, nil
}
