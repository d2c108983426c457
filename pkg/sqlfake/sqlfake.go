// Package sqlfake драйвер database/sql для тестов репозиториев и менеджера транзакций.
// Записывает запросы и границы транзакций, отдаёт заранее заданные строки.
package sqlfake

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Query выполненный запрос с аргументами после конвертации драйвером
type Query struct {
	SQL  string
	Args []driver.Value
	InTx bool
	Exec bool
}

// Result ответ на следующий запрос
type Result struct {
	Columns []string
	Rows    [][]driver.Value
	Err     error
}

// DB записывающая база: события транзакций, запросы и очередь ответов
type DB struct {
	mu        sync.Mutex
	events    []string
	queries   []Query
	results   []Result
	txOptions []driver.TxOptions
	commitErr error
	inTx      bool
}

// Open возвращает *sql.DB поверх записывающего драйвера
// Пул ограничен одним соединением, чтобы транзакция и запросы шли через одну запись
func Open() (*sql.DB, *DB) {
	fake := &DB{}
	db := sql.OpenDB(&connector{db: fake})
	db.SetMaxOpenConns(1)
	return db, fake
}

// Push ставит ответ в очередь для следующего запроса
func (d *DB) Push(res Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.results = append(d.results, res)
}

// Row ставит в очередь ответ из одной строки
func (d *DB) Row(columns []string, values ...driver.Value) {
	d.Push(Result{Columns: columns, Rows: [][]driver.Value{values}})
}

// FailCommit заставляет следующий Commit вернуть err
func (d *DB) FailCommit(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commitErr = err
}

// Events события транзакций в порядке появления: begin, commit, rollback
func (d *DB) Events() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.events...)
}

// Queries выполненные запросы
func (d *DB) Queries() []Query {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Query(nil), d.queries...)
}

// LastQuery последний выполненный запрос
func (d *DB) LastQuery() Query {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queries) == 0 {
		return Query{}
	}
	return d.queries[len(d.queries)-1]
}

// TxOptions опции всех начатых транзакций
func (d *DB) TxOptions() []driver.TxOptions {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]driver.TxOptions(nil), d.txOptions...)
}

func (d *DB) record(query string, args []driver.NamedValue, exec bool) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	values := make([]driver.Value, len(args))
	for i, a := range args {
		values[i] = a.Value
	}
	d.queries = append(d.queries, Query{SQL: query, Args: values, InTx: d.inTx, Exec: exec})

	if len(d.results) == 0 {
		return Result{}
	}
	res := d.results[0]
	d.results = d.results[1:]
	return res
}

type connector struct {
	db *DB
}

func (c *connector) Connect(context.Context) (driver.Conn, error) {
	return &conn{db: c.db}, nil
}

func (c *connector) Driver() driver.Driver {
	return fakeDriver{}
}

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("sqlfake: use sqlfake.Open")
}

type conn struct {
	db *DB
}

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	return &stmt{conn: c, query: query}, nil
}

func (c *conn) Close() error { return nil }

func (c *conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *conn) BeginTx(_ context.Context, opts driver.TxOptions) (driver.Tx, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	if c.db.inTx {
		return nil, errors.New("sqlfake: nested transaction")
	}
	c.db.inTx = true
	c.db.events = append(c.db.events, "begin")
	c.db.txOptions = append(c.db.txOptions, opts)
	return &tx{db: c.db}, nil
}

func (c *conn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	res := c.db.record(query, args, false)
	if res.Err != nil {
		return nil, res.Err
	}
	return &rows{columns: res.Columns, values: res.Rows}, nil
}

func (c *conn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	res := c.db.record(query, args, true)
	if res.Err != nil {
		return nil, res.Err
	}
	return driver.RowsAffected(1), nil
}

type stmt struct {
	conn  *conn
	query string
}

func (s *stmt) Close() error  { return nil }
func (s *stmt) NumInput() int { return -1 }

func (s *stmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.conn.ExecContext(context.Background(), s.query, named(args))
}

func (s *stmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.conn.QueryContext(context.Background(), s.query, named(args))
}

func named(args []driver.Value) []driver.NamedValue {
	out := make([]driver.NamedValue, len(args))
	for i, v := range args {
		out[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return out
}

type tx struct {
	db *DB
}

func (t *tx) Commit() error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.db.inTx = false
	if err := t.db.commitErr; err != nil {
		t.db.commitErr = nil
		t.db.events = append(t.db.events, "commit failed")
		return err
	}
	t.db.events = append(t.db.events, "commit")
	return nil
}

func (t *tx) Rollback() error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.db.inTx = false
	t.db.events = append(t.db.events, "rollback")
	return nil
}

type rows struct {
	columns []string
	values  [][]driver.Value
	pos     int
}

func (r *rows) Columns() []string { return r.columns }
func (r *rows) Close() error      { return nil }

func (r *rows) Next(dest []driver.Value) error {
	if r.pos >= len(r.values) {
		return io.EOF
	}
	row := r.values[r.pos]
	r.pos++
	if len(row) != len(dest) {
		return fmt.Errorf("sqlfake: row has %d values, %d columns expected (%s)",
			len(row), len(dest), strings.Join(r.columns, ","))
	}
	copy(dest, row)
	return nil
}
