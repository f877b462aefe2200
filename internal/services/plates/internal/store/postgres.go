package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/model"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	errUniqueViolation     pq.ErrorCode = "23505"
	errForeignKeyViolation pq.ErrorCode = "23503"
)

// dbtx defines the interface for database and transactions
type dbtx interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

// PostgresConfig holds the configuration for connecting to a Postgres database
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
}

// PostgresStore implements Store on top of PostgreSQL.
type PostgresStore struct {
	db dbtx
}

// NewPostgresDB opens and pings a Postgres connection pool.
func NewPostgresDB(cfg PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DB))
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("scan: %w", err)
	}

	return ok, nil
}

func (s *PostgresStore) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("scan: %w", err)
	}

	return n, nil
}

func (s *PostgresStore) HasPlateInRegion(ctx context.Context, r UserRegionRequest) (bool, error) {
	return s.exists(ctx,
		"SELECT EXISTS (SELECT 1 FROM plates WHERE user_id = $1 AND region_id = $2)",
		r.UserID, r.RegionID)
}

func (s *PostgresStore) HasUserSerial(ctx context.Context, r UserSerialRequest) (bool, error) {
	return s.exists(ctx,
		"SELECT EXISTS (SELECT 1 FROM user_serials WHERE user_id = $1 AND serial = $2)",
		r.UserID, r.Serial)
}

func (s *PostgresStore) HasGlobalSerial(ctx context.Context, serial string) (bool, error) {
	return s.exists(ctx, "SELECT EXISTS (SELECT 1 FROM global_serials WHERE serial = $1)", serial)
}

// InsertPlate stores the plate with its rendered SVG snapshot.
func (s *PostgresStore) InsertPlate(ctx context.Context, r InsertPlateRequest) (model.Plate, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO plates (id, user_id, region_id, class_number, kana, serial, color, svg, captured_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		r.ID, r.UserID, r.RegionID, r.ClassNumber, r.Kana, r.Serial, string(r.Color), r.SVG, r.CapturedAt)

	p := model.Plate{
		ID:          r.ID,
		UserID:      r.UserID,
		RegionID:    r.RegionID,
		ClassNumber: r.ClassNumber,
		Kana:        r.Kana,
		Serial:      r.Serial,
		Color:       r.Color,
		SVG:         r.SVG,
		CapturedAt:  r.CapturedAt,
	}
	if err := row.Scan(&p.CreatedAt); err != nil {
		if isPqErr(err, errUniqueViolation) {
			return p, ErrExists
		}

		return p, fmt.Errorf("insert plate: %w", err)
	}

	return p, nil
}

// UpsertRegionRecord marks the region completed for the user. The first
// completion timestamp is kept.
func (s *PostgresStore) UpsertRegionRecord(ctx context.Context, r UserRegionRequest) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO region_records (user_id, region_id, completed, completed_at, updated_at)
		 VALUES ($1, $2, TRUE, NOW(), NOW())
		 ON CONFLICT (user_id, region_id) DO UPDATE
		 SET completed = TRUE,
		     completed_at = COALESCE(region_records.completed_at, EXCLUDED.completed_at),
		     updated_at = NOW()`,
		r.UserID, r.RegionID)
	if err != nil {
		return fmt.Errorf("upsert region record: %w", err)
	}

	return nil
}

func (s *PostgresStore) GetRarity(ctx context.Context, regionID string) (model.Rarity, error) {
	rr := model.Rarity{RegionID: regionID}
	err := s.db.QueryRowContext(ctx,
		"SELECT tier, points FROM region_rarity WHERE region_id = $1", regionID).
		Scan(&rr.Tier, &rr.Points)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rr, ErrNotFound
		}

		return rr, fmt.Errorf("get rarity: %w", err)
	}

	return rr, nil
}

func (s *PostgresStore) InsertScoreEvent(ctx context.Context, r InsertScoreEventRequest) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO score_events (user_id, plate_id, region_id, tier, points) VALUES ($1, $2, $3, $4, $5)",
		r.UserID, r.PlateID, r.RegionID, r.Tier, r.Points)
	if err != nil {
		if isPqErr(err, errUniqueViolation) {
			return ErrExists
		}
		if isPqErr(err, errForeignKeyViolation) {
			return ErrNotFound
		}

		return fmt.Errorf("insert score event: %w", err)
	}

	return nil
}

// InsertUserSerial adds the serial to the user's collection unless it is already there.
func (s *PostgresStore) InsertUserSerial(ctx context.Context, r InsertSerialRequest) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO user_serials (user_id, serial, plate_id, svg) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, serial) DO NOTHING`,
		r.UserID, r.Serial, r.PlateID, r.SVG)
	if err != nil {
		return false, fmt.Errorf("insert user serial: %w", err)
	}

	return inserted(res)
}

// ClaimGlobalSerial claims the serial for the user unless another plate
// already holds it. Exactly one concurrent caller observes true.
func (s *PostgresStore) ClaimGlobalSerial(ctx context.Context, r InsertSerialRequest) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO global_serials (serial, user_id, plate_id, svg) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (serial) DO NOTHING`,
		r.Serial, r.UserID, r.PlateID, r.SVG)
	if err != nil {
		return false, fmt.Errorf("claim global serial: %w", err)
	}

	return inserted(res)
}

func (s *PostgresStore) CountUserRegionPlates(ctx context.Context, r UserRegionRequest) (int, error) {
	return s.count(ctx,
		"SELECT COUNT(*) FROM plates WHERE user_id = $1 AND region_id = $2",
		r.UserID, r.RegionID)
}

func (s *PostgresStore) CountOtherUsersRegionPlates(ctx context.Context, r UserRegionRequest) (int, error) {
	return s.count(ctx,
		"SELECT COUNT(*) FROM plates WHERE region_id = $2 AND user_id <> $1",
		r.UserID, r.RegionID)
}

// GetUserTotals sums plates, distinct regions and score event points.
func (s *PostgresStore) GetUserTotals(ctx context.Context, userID string) (model.Totals, error) {
	var t model.Totals
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COUNT(DISTINCT region_id),
		        COALESCE((SELECT SUM(points) FROM score_events WHERE user_id = $1), 0)
		 FROM plates WHERE user_id = $1`, userID).
		Scan(&t.Plates, &t.Regions, &t.Points)
	if err != nil {
		return t, fmt.Errorf("get totals: %w", err)
	}

	return t, nil
}

func (s *PostgresStore) GetRegionRecords(ctx context.Context, userID string) (model.RecordMap, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, region_id, completed, completed_at, memo, updated_at
		 FROM region_records WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("query region records: %w", err)
	}
	defer rows.Close()

	records := make(model.RecordMap)
	for rows.Next() {
		var rec model.RegionRecord
		var completedAt sql.NullTime
		if err := rows.Scan(&rec.UserID, &rec.RegionID, &rec.Completed, &completedAt, &rec.Memo, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan region record: %w", err)
		}
		if completedAt.Valid {
			rec.CompletedAt = &completedAt.Time
		}
		records[rec.RegionID] = rec
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate region records: %w", err)
	}

	return records, nil
}

// UpdateRegionMemo sets the memo, creating an uncompleted record when none exists.
func (s *PostgresStore) UpdateRegionMemo(ctx context.Context, r UpdateMemoRequest) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO region_records (user_id, region_id, memo) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, region_id) DO UPDATE
		 SET memo = EXCLUDED.memo, updated_at = NOW()`,
		r.UserID, r.RegionID, r.Memo)
	if err != nil {
		return fmt.Errorf("update memo: %w", err)
	}

	return nil
}

// ClearRegionRecords deletes every region record of the user. Plates, score
// events and serial collections are left untouched.
func (s *PostgresStore) ClearRegionRecords(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM region_records WHERE user_id = $1", userID)
	if err != nil {
		return 0, fmt.Errorf("clear region records: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return n, nil
}

const plateColumns = "id, user_id, region_id, class_number, kana, serial, color, svg, photo_url, captured_at, created_at"

func scanPlate(sc scanner) (model.Plate, error) {
	var (
		p          model.Plate
		color      string
		photoURL   sql.NullString
		capturedAt sql.NullTime
	)
	err := sc.Scan(&p.ID, &p.UserID, &p.RegionID, &p.ClassNumber, &p.Kana, &p.Serial,
		&color, &p.SVG, &photoURL, &capturedAt, &p.CreatedAt)
	if err != nil {
		return p, err
	}

	p.Color = model.PlateColor(color)
	p.PhotoURL = photoURL.String
	if capturedAt.Valid {
		p.CapturedAt = &capturedAt.Time
	}

	return p, nil
}

func (s *PostgresStore) GetPlates(ctx context.Context, r GetPlatesRequest) ([]model.Plate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+plateColumns+` FROM plates
		 WHERE user_id = $1 AND ($2::text = '' OR region_id = $2)
		 ORDER BY created_at, id`, r.UserID, r.RegionID)
	if err != nil {
		return nil, fmt.Errorf("query plates: %w", err)
	}
	defer rows.Close()

	plates := []model.Plate{}
	for rows.Next() {
		p, err := scanPlate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plate: %w", err)
		}
		plates = append(plates, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plates: %w", err)
	}

	return plates, nil
}

func (s *PostgresStore) GetPlate(ctx context.Context, id uuid.UUID) (model.Plate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+plateColumns+` FROM plates WHERE id = $1`, id)
	p, err := scanPlate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, ErrNotFound
		}

		return p, fmt.Errorf("get plate: %w", err)
	}

	return p, nil
}

// AttachPhoto sets the photo of a plate owned by the user.
func (s *PostgresStore) AttachPhoto(ctx context.Context, r AttachPhotoRequest) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE plates SET photo_url = $3, captured_at = COALESCE($4, captured_at)
		 WHERE id = $1 AND user_id = $2`,
		r.PlateID, r.UserID, r.PhotoURL, r.CapturedAt)
	if err != nil {
		return fmt.Errorf("attach photo: %w", err)
	}

	ok, err := inserted(res)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStore) GetUserSerials(ctx context.Context, userID string) ([]model.SerialEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT serial, user_id, plate_id, svg, created_at
		 FROM user_serials WHERE user_id = $1 ORDER BY serial`, userID)
	if err != nil {
		return nil, fmt.Errorf("query user serials: %w", err)
	}
	defer rows.Close()

	entries := []model.SerialEntry{}
	for rows.Next() {
		var e model.SerialEntry
		if err := rows.Scan(&e.Serial, &e.UserID, &e.PlateID, &e.SVG, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user serial: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user serials: %w", err)
	}

	return entries, nil
}

func (s *PostgresStore) GetGlobalSerial(ctx context.Context, serial string) (model.SerialEntry, error) {
	var e model.SerialEntry
	err := s.db.QueryRowContext(ctx,
		"SELECT serial, user_id, plate_id, svg, created_at FROM global_serials WHERE serial = $1", serial).
		Scan(&e.Serial, &e.UserID, &e.PlateID, &e.SVG, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, ErrNotFound
		}

		return e, fmt.Errorf("get global serial: %w", err)
	}

	return e, nil
}

// GetRanking orders users by points, then regions, then plates. Users with
// equal points share a rank.
func (s *PostgresStore) GetRanking(ctx context.Context, limit int) ([]model.RankEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT RANK() OVER (ORDER BY t.points DESC), t.user_id, COALESCE(u.username, ''), t.plates, t.regions, t.points
		 FROM (
		     SELECT p.user_id,
		            COUNT(*) AS plates,
		            COUNT(DISTINCT p.region_id) AS regions,
		            COALESCE(SUM(e.points), 0) AS points
		     FROM plates AS p
		     LEFT JOIN score_events AS e ON e.plate_id = p.id
		     GROUP BY p.user_id
		 ) AS t
		 LEFT JOIN users AS u ON u.user_id = t.user_id
		 ORDER BY t.points DESC, t.regions DESC, t.plates DESC, t.user_id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query ranking: %w", err)
	}
	defer rows.Close()

	ranking := []model.RankEntry{}
	for rows.Next() {
		var e model.RankEntry
		if err := rows.Scan(&e.Rank, &e.UserID, &e.Username, &e.Plates, &e.Regions, &e.Points); err != nil {
			return nil, fmt.Errorf("scan rank: %w", err)
		}
		ranking = append(ranking, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ranking: %w", err)
	}

	return ranking, nil
}

const profileColumns = "user_id, COALESCE(username, ''), public, created_at"

func (s *PostgresStore) getProfile(ctx context.Context, where string, arg string) (model.Profile, error) {
	var p model.Profile
	err := s.db.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM users WHERE "+where+" = $1", arg).
		Scan(&p.UserID, &p.Username, &p.Public, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, ErrNotFound
		}

		return p, fmt.Errorf("get profile: %w", err)
	}

	return p, nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	return s.getProfile(ctx, "user_id", userID)
}

func (s *PostgresStore) GetProfileByUsername(ctx context.Context, username string) (model.Profile, error) {
	return s.getProfile(ctx, "username", username)
}

// SetProfile creates the profile on first use. A taken username yields ErrExists.
func (s *PostgresStore) SetProfile(ctx context.Context, r SetProfileRequest) (model.Profile, error) {
	var p model.Profile
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (user_id, username, public) VALUES ($1, $2::text, COALESCE($3::boolean, FALSE))
		 ON CONFLICT (user_id) DO UPDATE
		 SET username = COALESCE(EXCLUDED.username, users.username),
		     public = COALESCE($3::boolean, users.public),
		     updated_at = NOW()
		 RETURNING `+profileColumns,
		r.UserID, r.Username, r.Public).
		Scan(&p.UserID, &p.Username, &p.Public, &p.CreatedAt)
	if err != nil {
		if isPqErr(err, errUniqueViolation) {
			return p, ErrExists
		}

		return p, fmt.Errorf("set profile: %w", err)
	}

	return p, nil
}

// AddFriend records that UserID trusts FriendID. Adding twice is a no-op.
func (s *PostgresStore) AddFriend(ctx context.Context, r FriendRequest) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO friends (user_id, friend_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		r.UserID, r.FriendID)
	if err != nil {
		return fmt.Errorf("add friend: %w", err)
	}

	return nil
}

func (s *PostgresStore) GetFriends(ctx context.Context, userID string) ([]model.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.user_id, COALESCE(u.username, ''), u.public, u.created_at
		 FROM friends AS f
		 JOIN users AS u ON u.user_id = f.friend_id
		 WHERE f.user_id = $1
		 ORDER BY u.username, u.user_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query friends: %w", err)
	}
	defer rows.Close()

	friends := []model.Profile{}
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.UserID, &p.Username, &p.Public, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		friends = append(friends, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friends: %w", err)
	}

	return friends, nil
}

// CheckAccess allows the owner, anyone when the owner is public, and users
// the owner has added as friends. Everyone else gets ErrPermissionDenied.
func (s *PostgresStore) CheckAccess(ctx context.Context, r AccessRequest) error {
	if r.ViewerID == r.OwnerID {
		return nil
	}

	var allowed bool
	err := s.db.QueryRowContext(ctx,
		`SELECT u.public OR EXISTS (
		     SELECT 1 FROM friends AS f WHERE f.user_id = u.user_id AND f.friend_id = $2
		 )
		 FROM users AS u WHERE u.user_id = $1`, r.OwnerID, r.ViewerID).
		Scan(&allowed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}

		return fmt.Errorf("check access: %w", err)
	}

	if !allowed {
		return ErrPermissionDenied
	}

	return nil
}

// WithinTx executes fn in a transaction. Any error from fn rolls it back.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		return errors.New("already in transaction")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	sx := &PostgresStore{db: tx}
	if err = fn(sx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback: %v after: %w", rbErr, err)
		}

		return fmt.Errorf("transaction: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func inserted(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return n > 0, nil
}

func isPqErr(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code
	}

	return false
}
