package db

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// New binds the queries to a driver name so placeholders match its dialect.
func New(db DBTX, driver string) *Queries {
	return &Queries{db: db, numbered: driver == "postgres"}
}

type Queries struct {
	db       DBTX
	numbered bool
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{
		db:       tx,
		numbered: q.numbered,
	}
}

// rebind rewrites ? placeholders to $1..$n for postgres.
func (q *Queries) rebind(query string) string {
	if !q.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
