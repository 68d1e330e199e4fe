package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/startpacket/constants"
	"github.com/joseph-ayodele/startpacket/internal/common"
	"github.com/joseph-ayodele/startpacket/internal/entity"
)

const settingEnvironment = "territory_environment"

type TerritoryRepository interface {
	// Upsert stores t and reports whether the zip code already existed.
	Upsert(ctx context.Context, t entity.Territory) (bool, error)
	Get(ctx context.Context, zip string) (*entity.Territory, error)
	Delete(ctx context.Context, zip string) error
	List(ctx context.Context) ([]entity.Territory, error)
	Clear(ctx context.Context) (int64, error)
	// RenameAll rewrites every territory name through rename in one transaction.
	RenameAll(ctx context.Context, rename func(string) string) (int, error)
	Environment(ctx context.Context) (constants.Environment, bool, error)
	SetEnvironment(ctx context.Context, env constants.Environment) error
}

type territoryRepo struct {
	db  *DB
	log *slog.Logger
}

func NewTerritoryRepository(db *DB, log *slog.Logger) TerritoryRepository {
	return &territoryRepo{db: db, log: log}
}

var territoryColumns = []string{"zip_code", "ae_email", "branch_id", "territory_name", "updated_at"}

func (r *territoryRepo) Upsert(ctx context.Context, t entity.Territory) (bool, error) {
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = time.Now().UTC()
	}
	b := r.db.builder()
	var existed bool
	err := r.db.withTx(ctx, func(tx dialect.Tx) error {
		q, args := b.Select().Count().
			From(b.Table(tableTerritories)).
			Where(entsql.EQ("zip_code", t.ZipCode)).
			Query()
		rows := &entsql.Rows{}
		if err := tx.Query(ctx, q, args, rows); err != nil {
			return err
		}
		n, err := entsql.ScanInt(rows)
		_ = rows.Close()
		if err != nil {
			return err
		}
		existed = n > 0

		q, args = b.Insert(tableTerritories).
			Columns(territoryColumns...).
			Values(t.ZipCode, t.AEEmail, t.BranchID, t.TerritoryName, t.UpdatedAt).
			OnConflict(entsql.ConflictColumns("zip_code"), entsql.ResolveWithNewValues()).
			Query()
		return tx.Exec(ctx, q, args, nil)
	})
	if err != nil {
		r.log.Error("territory upsert failed", "zip_code", t.ZipCode, "err", err)
		return false, errors.Join(common.ErrDatabase, err)
	}
	r.log.Info("territory saved", "zip_code", t.ZipCode, "ae_email", t.AEEmail, "update", existed)
	return existed, nil
}

func (r *territoryRepo) Get(ctx context.Context, zip string) (*entity.Territory, error) {
	b := r.db.builder()
	q, args := b.Select(territoryColumns...).
		From(b.Table(tableTerritories)).
		Where(entsql.EQ("zip_code", zip)).
		Query()
	var out *entity.Territory
	err := r.db.query(ctx, q, args, func(rows *entsql.Rows) error {
		t, err := scanTerritory(rows)
		out = &t
		return err
	})
	if err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	if out == nil {
		return nil, common.NewAppError("TERRITORY_NOT_FOUND", "Zip not found.", common.ErrNotFound)
	}
	return out, nil
}

func (r *territoryRepo) Delete(ctx context.Context, zip string) error {
	q, args := r.db.builder().Delete(tableTerritories).Where(entsql.EQ("zip_code", zip)).Query()
	n, err := r.db.exec(ctx, q, args)
	if err != nil {
		r.log.Error("territory delete failed", "zip_code", zip, "err", err)
		return errors.Join(common.ErrDatabase, err)
	}
	if n == 0 {
		return common.NewAppError("TERRITORY_NOT_FOUND", "Zip not found.", common.ErrNotFound)
	}
	r.log.Info("territory removed", "zip_code", zip)
	return nil
}

// List returns every territory ordered by zip code.
func (r *territoryRepo) List(ctx context.Context) ([]entity.Territory, error) {
	b := r.db.builder()
	q, args := b.Select(territoryColumns...).
		From(b.Table(tableTerritories)).
		OrderBy(entsql.Asc("zip_code")).
		Query()
	out := []entity.Territory{}
	err := r.db.query(ctx, q, args, func(rows *entsql.Rows) error {
		t, err := scanTerritory(rows)
		if err != nil {
			return err
		}
		out = append(out, t)
		return nil
	})
	if err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	return out, nil
}

func (r *territoryRepo) Clear(ctx context.Context) (int64, error) {
	q, args := r.db.builder().Delete(tableTerritories).Query()
	n, err := r.db.exec(ctx, q, args)
	if err != nil {
		r.log.Error("territory clear failed", "err", err)
		return 0, errors.Join(common.ErrDatabase, err)
	}
	r.log.Warn("territories cleared", "removed", n)
	return n, nil
}

func (r *territoryRepo) RenameAll(ctx context.Context, rename func(string) string) (int, error) {
	b := r.db.builder()
	changed := 0
	err := r.db.withTx(ctx, func(tx dialect.Tx) error {
		q, args := b.Select("zip_code", "territory_name").From(b.Table(tableTerritories)).Query()
		rows := &entsql.Rows{}
		if err := tx.Query(ctx, q, args, rows); err != nil {
			return err
		}
		names := map[string]string{}
		for rows.Next() {
			var zip, name string
			if err := rows.Scan(&zip, &name); err != nil {
				_ = rows.Close()
				return err
			}
			names[zip] = name
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return err
		}
		_ = rows.Close()

		now := time.Now().UTC()
		for zip, name := range names {
			next := rename(name)
			if next == name {
				continue
			}
			q, args := b.Update(tableTerritories).
				Set("territory_name", next).
				Set("updated_at", now).
				Where(entsql.EQ("zip_code", zip)).
				Query()
			if err := tx.Exec(ctx, q, args, nil); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		r.log.Error("territory rename failed", "err", err)
		return 0, errors.Join(common.ErrDatabase, err)
	}
	r.log.Info("territories renamed", "changed", changed)
	return changed, nil
}

// Environment returns the stored territory environment, if one was saved.
func (r *territoryRepo) Environment(ctx context.Context) (constants.Environment, bool, error) {
	b := r.db.builder()
	q, args := b.Select("value").
		From(b.Table(tableSettings)).
		Where(entsql.EQ("key", settingEnvironment)).
		Query()
	var (
		value string
		found bool
	)
	err := r.db.query(ctx, q, args, func(rows *entsql.Rows) error {
		found = true
		return rows.Scan(&value)
	})
	if err != nil {
		return "", false, errors.Join(common.ErrDatabase, err)
	}
	if !found {
		return "", false, nil
	}
	env := constants.Environment(value)
	if !env.Valid() {
		r.log.Warn("ignoring stored environment", "value", value)
		return "", false, nil
	}
	return env, true, nil
}

func (r *territoryRepo) SetEnvironment(ctx context.Context, env constants.Environment) error {
	if !env.Valid() {
		return common.NewAppError("INVALID_ENVIRONMENT", "environment must be TEST or PRODUCTION", common.ErrInvalidInput)
	}
	q, args := r.db.builder().Insert(tableSettings).
		Columns("key", "value", "updated_at").
		Values(settingEnvironment, string(env), time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("key"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.exec(ctx, q, args); err != nil {
		r.log.Error("environment save failed", "environment", env, "err", err)
		return errors.Join(common.ErrDatabase, err)
	}
	r.log.Info("environment saved", "environment", env)
	return nil
}

func scanTerritory(rows *entsql.Rows) (entity.Territory, error) {
	var t entity.Territory
	err := rows.Scan(&t.ZipCode, &t.AEEmail, &t.BranchID, &t.TerritoryName, &t.UpdatedAt)
	return t, err
}
