package repository

import (
	"context"

	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// PostgresStore keeps the documents of one collection in the jsonb documents table.
type PostgresStore struct {
	pool       *pgxpool.Pool
	collection string
	schema     *schema.Schema
}

func NewPostgresStore(pool *pgxpool.Pool, collection string, s *schema.Schema) *PostgresStore {
	return &PostgresStore{pool: pool, collection: collection, schema: s}
}

func (p *PostgresStore) Save(ctx context.Context, inst *schema.Instance) (string, error) {
	data, err := encode(inst)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = p.pool.Exec(ctx, `
		insert into documents (collection, id, data)
		values ($1, $2, $3)`,
		p.collection, id, data,
	)
	if err != nil {
		return "", errors.Wrapf(err, "insert %s", p.collection)
	}
	return id, nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*schema.Instance, error) {
	return p.get(ctx, p.pool, id, "")
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (p *PostgresStore) get(ctx context.Context, q querier, id, lock string) (*schema.Instance, error) {
	var data []byte
	err := q.QueryRow(ctx, `
		select data from documents
		where collection = $1 and id = $2 `+lock,
		p.collection, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "%s %q", p.schema.Name(), id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select %s", p.collection)
	}
	return decode(p.schema, data)
}

func (p *PostgresStore) Replace(ctx context.Context, id string, inst *schema.Instance) error {
	data, err := encode(inst)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `
		insert into documents (collection, id, data)
		values ($1, $2, $3)
		on conflict (collection, id) do update
		set data = excluded.data, updated_at = now()`,
		p.collection, id, data,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert %s", p.collection)
	}
	return nil
}

// Update locks the row for the duration of the merge.
func (p *PostgresStore) Update(ctx context.Context, id string, env *schema.Envelope) (*schema.Instance, error) {
	var merged *schema.Instance

	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		stored, err := p.get(ctx, tx, id, "for update")
		if err != nil {
			return err
		}

		var data []byte
		merged, data, err = merge(stored, env)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			update documents set data = $3, updated_at = now()
			where collection = $1 and id = $2`,
			p.collection, id, data,
		)
		return errors.Wrapf(err, "update %s", p.collection)
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (p *PostgresStore) Seed(ctx context.Context, id string, raw map[string]any) error {
	data, err := seedDocument(p.schema, raw)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `
		insert into documents (collection, id, data)
		values ($1, $2, $3)
		on conflict (collection, id) do nothing`,
		p.collection, id, data,
	)
	return errors.Wrapf(err, "seed %s", p.collection)
}
