package postgres

import (
	"context"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/soccer-coach/internal/domain/typeguard"
	qb "github.com/riskibarqy/soccer-coach/internal/platform/querybuilder"
	"github.com/riskibarqy/soccer-coach/internal/platform/safejson"
)

// loadCollection reads an ordered list and drops elements that fail
// validation, logging each one.
func loadCollection[T any](ctx context.Context, p *Provider, table string, validate func(any) typeguard.Result[T]) ([]T, error) {
	query, args, err := qb.Select("item_id", "position", "data").From(table).
		Where(qb.Eq("owner_id", p.ownerID)).
		OrderBy("position", "item_id").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrapf(err, "build select %s query", table)
	}

	var rows []collectionRow
	err = p.guard(func() error {
		return p.db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, crerr.Wrapf(err, "select %s", table)
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		parsed := safejson.Parse[any](row.Data)
		if !parsed.Success {
			p.logger.WarnContext(ctx, "skipping unreadable row", "table", table, "item_id", row.ItemID, "reason", parsed.Error)
			continue
		}
		res := validate(parsed.Data)
		if !res.IsValid {
			p.logger.WarnContext(ctx, "skipping invalid row", "table", table, "item_id", row.ItemID, "reason", res.Error)
			continue
		}
		out = append(out, res.Data)
	}
	return out, nil
}

// replaceCollection rewrites the owner's whole list inside one transaction.
func replaceCollection[T any](ctx context.Context, p *Provider, table string, items []T, idOf func(T) string) error {
	deleteQuery, deleteArgs, err := qb.DeleteFrom(table).Where(qb.Eq("owner_id", p.ownerID)).ToSQL()
	if err != nil {
		return crerr.Wrapf(err, "build delete %s query", table)
	}

	var insertQuery string
	var insertArgs []any
	if len(items) > 0 {
		insert := qb.InsertInto(table).Columns("owner_id", "item_id", "position", "data")
		for i, item := range items {
			raw, err := sonic.Marshal(item)
			if err != nil {
				return crerr.Wrapf(err, "encode %s item %d", table, i)
			}
			insert.Values(p.ownerID, idOf(item), i, string(raw))
		}
		insertQuery, insertArgs, err = insert.ToSQL()
		if err != nil {
			return crerr.Wrapf(err, "build insert %s query", table)
		}
	}

	err = p.guard(func() error {
		tx, err := p.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
			return err
		}
		if insertQuery != "" {
			if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return crerr.Wrapf(err, "replace %s", table)
	}
	return nil
}
