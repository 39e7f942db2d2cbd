package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Config struct {
	DSN          string `split_words:"true"`
	MaxOpenConns int    `split_words:"true" default:"8"`
	MaxIdleConns int    `split_words:"true" default:"4"`
	DialTimeout  int    `split_words:"true" default:"5"`
}

func (c *Config) New() (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(c.DSN),
		pgdriver.WithDialTimeout(time.Duration(c.DialTimeout)*time.Second),
	))
	sqldb.SetMaxOpenConns(c.MaxOpenConns)
	sqldb.SetMaxIdleConns(c.MaxIdleConns)

	db := bun.NewDB(sqldb, pgdialect.New())

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(c.DialTimeout)*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func (c *Config) MustNew() *bun.DB {
	db, err := c.New()
	if err != nil {
		panic(err)
	}

	return db
}
