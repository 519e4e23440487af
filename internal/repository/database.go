package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Global error declarations.
var (
	ErrStockNotFound = errors.New("ticker not found in datasource")
	ErrNoBars        = errors.New("no daily bars found in datasource")
)

type stockRow struct {
	ID     int32
	Ticker string
	Name   string
}

type barRow struct {
	StockID int32
	Date    time.Time
	Open    decimal.Decimal
	High    decimal.Decimal
	Low     decimal.Decimal
	Close   decimal.Decimal
	Volume  decimal.Decimal
}

type stocksRepository interface {
	GetStockByTicker(ctx context.Context, ticker string) (stockRow, error)
}
type barsRepository interface {
	GetDailyBars(ctx context.Context, stockID int32, start, end time.Time) ([]barRow, error)
}

// Database holds the connection pool and the typed queries against it.
type Database struct {
	stocks stocksRepository
	bars   barsRepository
	conn   *pgxpool.Pool
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(dbURL string) (Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return Database{}, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return Database{}, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(context.Background()); err != nil {
		return Database{}, err
	}

	q := queries{conn: conn}
	return Database{
		stocks: q,
		bars:   q,
		conn:   conn,
	}, nil
}

func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}

// queries is the pgx-backed implementation of the repository interfaces.
type queries struct {
	conn *pgxpool.Pool
}

func (q queries) GetStockByTicker(ctx context.Context, ticker string) (stockRow, error) {
	const sqlStmt = `SELECT id, ticker, name FROM stocks WHERE ticker = $1`

	var row stockRow
	err := q.conn.QueryRow(ctx, sqlStmt, ticker).Scan(&row.ID, &row.Ticker, &row.Name)
	if err != nil {
		return stockRow{}, err
	}
	return row, nil
}

func (q queries) GetDailyBars(ctx context.Context, stockID int32, start, end time.Time) ([]barRow, error) {
	const sqlStmt = `
		SELECT stock_id, trade_date, open, high, low, close, volume
		FROM daily_bars
		WHERE stock_id = $1 AND trade_date >= $2 AND trade_date < $3
		ORDER BY trade_date ASC`

	rows, err := q.conn.Query(ctx, sqlStmt, stockID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []barRow
	for rows.Next() {
		var b barRow
		if err := rows.Scan(&b.StockID, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}
