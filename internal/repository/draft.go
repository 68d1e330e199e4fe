package repository

import (
	"context"
	stdsql "database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/startpacket/internal/common"
	"github.com/joseph-ayodele/startpacket/internal/entity"
)

type DraftRepository interface {
	Save(ctx context.Context, jobID *uuid.UUID, sourcePath string, d *entity.Draft) (*entity.StoredDraft, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.StoredDraft, error)
	List(ctx context.Context, limit int) ([]*entity.StoredDraft, error)
}

type draftRepo struct {
	db  *DB
	log *slog.Logger
}

func NewDraftRepository(db *DB, log *slog.Logger) DraftRepository {
	return &draftRepo{db: db, log: log}
}

var draftColumns = []string{"id", "job_id", "source_path", "payload", "created_at"}

func (r *draftRepo) Save(ctx context.Context, jobID *uuid.UUID, sourcePath string, d *entity.Draft) (*entity.StoredDraft, error) {
	if d == nil {
		return nil, common.NewAppError("INVALID_DRAFT", "draft is nil", common.ErrInvalidInput)
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return nil, common.WrapError(err, "encode draft")
	}

	stored := &entity.StoredDraft{
		ID:         uuid.New(),
		JobID:      jobID,
		SourcePath: sourcePath,
		Draft:      *d,
		CreatedAt:  time.Now().UTC(),
	}
	var job any
	if jobID != nil {
		job = jobID.String()
	}
	q, args := r.db.builder().Insert(tableDrafts).
		Columns("id", "job_id", "source_path", "account_name", "service_zip", "payload", "created_at").
		Values(stored.ID.String(), job, sourcePath, nullable(d.AccountName), nullable(d.ServiceZip), string(payload), stored.CreatedAt).
		Query()
	if _, err := r.db.exec(ctx, q, args); err != nil {
		r.log.Error("draft save failed", "source_path", sourcePath, "err", err)
		return nil, errors.Join(common.ErrDatabase, err)
	}
	r.log.Info("draft saved", "draft_id", stored.ID, "source_path", sourcePath)
	return stored, nil
}

func (r *draftRepo) Get(ctx context.Context, id uuid.UUID) (*entity.StoredDraft, error) {
	b := r.db.builder()
	q, args := b.Select(draftColumns...).
		From(b.Table(tableDrafts)).
		Where(entsql.EQ("id", id.String())).
		Query()
	var out *entity.StoredDraft
	err := r.db.query(ctx, q, args, func(rows *entsql.Rows) error {
		sd, err := scanDraft(rows)
		out = sd
		return err
	})
	if err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	if out == nil {
		return nil, common.NewAppError("DRAFT_NOT_FOUND", "draft "+id.String()+" not found", common.ErrNotFound)
	}
	return out, nil
}

// List returns the newest drafts first. A non-positive limit means 50.
func (r *draftRepo) List(ctx context.Context, limit int) ([]*entity.StoredDraft, error) {
	if limit <= 0 {
		limit = 50
	}
	b := r.db.builder()
	q, args := b.Select(draftColumns...).
		From(b.Table(tableDrafts)).
		OrderBy(entsql.Desc("created_at")).
		Limit(limit).
		Query()
	var out []*entity.StoredDraft
	err := r.db.query(ctx, q, args, func(rows *entsql.Rows) error {
		sd, err := scanDraft(rows)
		if err != nil {
			return err
		}
		out = append(out, sd)
		return nil
	})
	if err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	return out, nil
}

func scanDraft(rows *entsql.Rows) (*entity.StoredDraft, error) {
	var (
		id, source string
		job        stdsql.NullString
		payload    []byte
		created    time.Time
	)
	if err := rows.Scan(&id, &job, &source, &payload, &created); err != nil {
		return nil, err
	}
	sd := &entity.StoredDraft{SourcePath: source, CreatedAt: created}
	var err error
	if sd.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if job.Valid {
		jid, err := uuid.Parse(job.String)
		if err != nil {
			return nil, err
		}
		sd.JobID = &jid
	}
	if err := json.Unmarshal(payload, &sd.Draft); err != nil {
		return nil, common.WrapError(err, "decode draft payload")
	}
	return sd, nil
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
