package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
)

// Reader queries an index file written by SQLiteIndex. It never writes.
type Reader struct {
	db *sql.DB
}

type AuditRow struct {
	Tick    uint64  `json:"tick"`
	NowMs   int64   `json:"now_ms"`
	Actor   string  `json:"actor"`
	Action  string  `json:"action"`
	Target  string  `json:"target,omitempty"`
	Pos     *[3]int `json:"pos,omitempty"`
	Amount  int64   `json:"amount,omitempty"`
	Reason  string  `json:"reason,omitempty"`
	RawJSON string  `json:"-"`
}

type AuditQuery struct {
	Actor    string
	Action   string
	FromTick uint64
	Limit    int
}

type BalancePoint struct {
	Tick    uint64 `json:"tick"`
	Balance int64  `json:"balance"`
}

func OpenReader(path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

// Audits returns matching audit rows, newest first.
func (r *Reader) Audits(ctx context.Context, q AuditQuery) ([]AuditRow, error) {
	var (
		where []string
		args  []any
	)
	if q.Actor != "" {
		where = append(where, "actor = ?")
		args = append(args, q.Actor)
	}
	if q.Action != "" {
		where = append(where, "action = ?")
		args = append(args, q.Action)
	}
	if q.FromTick > 0 {
		where = append(where, "tick >= ?")
		args = append(args, int64(q.FromTick))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT tick, now_ms, actor, action, COALESCE(target,''), x, y, z, amount, COALESCE(reason,''), raw_json FROM audits`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY tick DESC, seq DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audits: %w", err)
	}
	defer rows.Close()
	var out []AuditRow
	for rows.Next() {
		var (
			a       AuditRow
			tick    int64
			x, y, z sql.NullInt64
		)
		if err := rows.Scan(&tick, &a.NowMs, &a.Actor, &a.Action, &a.Target, &x, &y, &z, &a.Amount, &a.Reason, &a.RawJSON); err != nil {
			return nil, err
		}
		a.Tick = uint64(tick)
		if x.Valid && y.Valid && z.Valid {
			a.Pos = &[3]int{int(x.Int64), int(y.Int64), int(z.Int64)}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// BalanceHistory returns a player's balance at each indexed snapshot, oldest first.
func (r *Reader) BalanceHistory(ctx context.Context, player string) ([]BalancePoint, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tick, balance FROM balances WHERE player = ? ORDER BY tick`, player)
	if err != nil {
		return nil, fmt.Errorf("query balances: %w", err)
	}
	defer rows.Close()
	var out []BalancePoint
	for rows.Next() {
		var (
			tick int64
			p    BalancePoint
		)
		if err := rows.Scan(&tick, &p.Balance); err != nil {
			return nil, err
		}
		p.Tick = uint64(tick)
		out = append(out, p)
	}
	return out, rows.Err()
}

// PlayerActions returns how many actions a player sent per tick in [from, to].
func (r *Reader) PlayerActions(ctx context.Context, player string, from, to uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions WHERE player = ? AND tick BETWEEN ? AND ?`,
		player, int64(from), int64(to)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count actions: %w", err)
	}
	return n, nil
}
