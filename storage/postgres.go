package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alekreuaya/lucky-naga/model"
)

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (p *Postgres) FindCode(ctx context.Context, username, code string) (*model.RedeemCode, error) {
	rec := model.RedeemCode{}
	err := p.pool.QueryRow(ctx,
		`select username,code,consumed,issued_at,consumed_at from redeem_codes where username=$1 and code=$2`, username, code).
		Scan(&rec.Username, &rec.Code, &rec.Consumed, &rec.IssuedAt, &rec.ConsumedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find code: %w", err)
	}
	return &rec, nil
}

func (p *Postgres) InsertCode(ctx context.Context, rec *model.RedeemCode) error {
	_, err := p.pool.Exec(ctx,
		`insert into redeem_codes (username,code,consumed,issued_at) values ($1,$2,false,$3)`,
		rec.Username, rec.Code, rec.IssuedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert code: %w", err)
	}
	return nil
}

// ConsumeCode flips the consumed flag only when it is currently false.
// The filter on consumed=false is the race guard: of N concurrent calls
// for the same code, exactly one update matches.
func (p *Postgres) ConsumeCode(ctx context.Context, username, code string, at time.Time) (bool, error) {
	tag, err := p.pool.Exec(ctx,
		`update redeem_codes set consumed=true, consumed_at=$3 where username=$1 and code=$2 and consumed=false`,
		username, code, at)
	if err != nil {
		return false, fmt.Errorf("consume code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (p *Postgres) ListCodes(ctx context.Context, filter CodeFilter) ([]model.RedeemCode, error) {
	query := `select username,code,consumed,issued_at,consumed_at from redeem_codes`
	switch filter {
	case CodeFilterUsed:
		query += ` where consumed=true`
	case CodeFilterUnused:
		query += ` where consumed=false`
	}
	query += ` order by issued_at desc limit 500`
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}
	defer rows.Close()
	codes := []model.RedeemCode{}
	for rows.Next() {
		rec := model.RedeemCode{}
		if err := rows.Scan(&rec.Username, &rec.Code, &rec.Consumed, &rec.IssuedAt, &rec.ConsumedAt); err != nil {
			return nil, fmt.Errorf("list codes: %w", err)
		}
		codes = append(codes, rec)
	}
	return codes, rows.Err()
}

func (p *Postgres) CountCodes(ctx context.Context) (int64, int64, error) {
	var total, used int64
	err := p.pool.QueryRow(ctx,
		`select count(*), count(*) filter (where consumed) from redeem_codes`).Scan(&total, &used)
	if err != nil {
		return 0, 0, fmt.Errorf("count codes: %w", err)
	}
	return total, used, nil
}

func (p *Postgres) GetPrizes(ctx context.Context) ([]model.Prize, error) {
	rows, err := p.pool.Query(ctx,
		`select id,label,color,image,weight from prizes order by position`)
	if err != nil {
		return nil, fmt.Errorf("get prizes: %w", err)
	}
	defer rows.Close()
	prizes := []model.Prize{}
	for rows.Next() {
		prize := model.Prize{}
		if err := rows.Scan(&prize.Id, &prize.Label, &prize.Color, &prize.Image, &prize.Weight); err != nil {
			return nil, fmt.Errorf("get prizes: %w", err)
		}
		prizes = append(prizes, prize)
	}
	return prizes, rows.Err()
}

// ReplacePrizes swaps the whole pool inside one transaction so readers
// never observe the pool half replaced.
func (p *Postgres) ReplacePrizes(ctx context.Context, prizes []model.Prize) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("replace prizes: %w", err)
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, `delete from prizes`); err != nil {
		return fmt.Errorf("replace prizes: %w", err)
	}
	for i, prize := range prizes {
		_, err := tx.Exec(ctx,
			`insert into prizes (id,position,label,color,image,weight) values ($1,$2,$3,$4,$5,$6)`,
			prize.Id, i, prize.Label, prize.Color, prize.Image, prize.Weight)
		if err != nil {
			return fmt.Errorf("replace prizes: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (p *Postgres) AppendDraw(ctx context.Context, rec *model.DrawRecord) error {
	_, err := p.pool.Exec(ctx,
		`insert into draw_history (username,prize_label,prize_color,prize_image,drawn_at) values ($1,$2,$3,$4,$5)`,
		rec.Username, rec.PrizeLabel, rec.PrizeColor, rec.PrizeImage, rec.DrawnAt)
	if err != nil {
		return fmt.Errorf("append draw: %w", err)
	}
	return nil
}

func (p *Postgres) ListDraws(ctx context.Context, limit int) ([]model.DrawRecord, error) {
	rows, err := p.pool.Query(ctx,
		`select username,prize_label,prize_color,prize_image,drawn_at from draw_history order by drawn_at desc limit $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list draws: %w", err)
	}
	defer rows.Close()
	draws := []model.DrawRecord{}
	for rows.Next() {
		rec := model.DrawRecord{}
		if err := rows.Scan(&rec.Username, &rec.PrizeLabel, &rec.PrizeColor, &rec.PrizeImage, &rec.DrawnAt); err != nil {
			return nil, fmt.Errorf("list draws: %w", err)
		}
		draws = append(draws, rec)
	}
	return draws, rows.Err()
}

func (p *Postgres) CountDraws(ctx context.Context) (int64, error) {
	var total int64
	if err := p.pool.QueryRow(ctx, `select count(*) from draw_history`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count draws: %w", err)
	}
	return total, nil
}

func (p *Postgres) DrawTotals(ctx context.Context) ([]LabelCount, error) {
	rows, err := p.pool.Query(ctx,
		`select prize_label, count(*) from draw_history group by prize_label order by count(*) desc`)
	if err != nil {
		return nil, fmt.Errorf("draw totals: %w", err)
	}
	defer rows.Close()
	totals := []LabelCount{}
	for rows.Next() {
		row := LabelCount{}
		if err := rows.Scan(&row.Label, &row.Count); err != nil {
			return nil, fmt.Errorf("draw totals: %w", err)
		}
		totals = append(totals, row)
	}
	return totals, rows.Err()
}

func (p *Postgres) FindAdmin(ctx context.Context, username string) (*model.AdminAccount, error) {
	account := model.AdminAccount{}
	err := p.pool.QueryRow(ctx,
		`select username,password_hash,role,created_at from admin_accounts where username=$1`, username).
		Scan(&account.Username, &account.PasswordHash, &account.Role, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &account, nil
}

func (p *Postgres) InsertAdmin(ctx context.Context, account *model.AdminAccount) error {
	_, err := p.pool.Exec(ctx,
		`insert into admin_accounts (username,password_hash,role,created_at) values ($1,$2,$3,$4)`,
		account.Username, account.PasswordHash, account.Role, account.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (p *Postgres) ListAdmins(ctx context.Context) ([]model.AdminAccount, error) {
	rows, err := p.pool.Query(ctx,
		`select username,password_hash,role,created_at from admin_accounts order by created_at`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()
	accounts := []model.AdminAccount{}
	for rows.Next() {
		account := model.AdminAccount{}
		if err := rows.Scan(&account.Username, &account.PasswordHash, &account.Role, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("list admins: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// DeleteAdmin only ever matches role=admin rows, so the seeded master
// cannot be removed through the API.
func (p *Postgres) DeleteAdmin(ctx context.Context, username string) error {
	tag, err := p.pool.Exec(ctx,
		`delete from admin_accounts where username=$1 and role=$2`, username, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var role model.Role
		err := p.pool.QueryRow(ctx, `select role from admin_accounts where username=$1`, username).Scan(&role)
		if err == nil && role == model.RoleMaster {
			return ErrCannotDeleteMaster
		}
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) UpdateAdminPassword(ctx context.Context, username, passwordHash string) error {
	tag, err := p.pool.Exec(ctx,
		`update admin_accounts set password_hash=$2 where username=$1`, username, passwordHash)
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
