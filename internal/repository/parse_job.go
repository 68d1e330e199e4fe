package repository

import (
	"context"
	stdsql "database/sql"
	"errors"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/startpacket/constants"
	"github.com/joseph-ayodele/startpacket/internal/common"
	"github.com/joseph-ayodele/startpacket/internal/entity"
)

type ParseJobRepository interface {
	Start(ctx context.Context, sourcePath, format string) (*entity.ParseJob, error)
	MarkTextOK(ctx context.Context, jobID uuid.UUID, method string, pages int) error
	FinishSuccess(ctx context.Context, jobID, draftID uuid.UUID) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
	Get(ctx context.Context, jobID uuid.UUID) (*entity.ParseJob, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.ParseJob, error)
}

type parseJobRepo struct {
	db  *DB
	log *slog.Logger
}

func NewParseJobRepository(db *DB, log *slog.Logger) ParseJobRepository {
	return &parseJobRepo{db: db, log: log}
}

var parseJobColumns = []string{
	"id", "source_path", "format", "status", "started_at",
	"finished_at", "error_message", "pages", "text_method", "draft_id",
}

func (r *parseJobRepo) Start(ctx context.Context, sourcePath, format string) (*entity.ParseJob, error) {
	job := &entity.ParseJob{
		ID:         uuid.New(),
		SourcePath: sourcePath,
		Format:     format,
		StartedAt:  time.Now().UTC(),
		Status:     string(constants.JobStatusRunning),
	}
	q, args := r.db.builder().Insert(tableParseJobs).
		Columns("id", "source_path", "format", "status", "started_at").
		Values(job.ID.String(), sourcePath, format, job.Status, job.StartedAt).
		Query()
	if _, err := r.db.exec(ctx, q, args); err != nil {
		r.log.Error("parse_job start failed", "source_path", sourcePath, "err", err)
		return nil, errors.Join(common.ErrDatabase, err)
	}
	r.log.Info("parse_job started", "job_id", job.ID, "source_path", sourcePath, "format", format)
	return job, nil
}

func (r *parseJobRepo) MarkTextOK(ctx context.Context, jobID uuid.UUID, method string, pages int) error {
	u := r.db.builder().Update(tableParseJobs).
		Set("status", string(constants.JobStatusTextOK)).
		Set("text_method", method)
	if pages > 0 {
		u.Set("pages", pages)
	}
	if err := r.update(ctx, jobID, u); err != nil {
		r.log.Error("parse_job text update failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("parse_job text recovered", "job_id", jobID, "method", method, "pages", pages)
	return nil
}

func (r *parseJobRepo) FinishSuccess(ctx context.Context, jobID, draftID uuid.UUID) error {
	u := r.db.builder().Update(tableParseJobs).
		Set("status", string(constants.JobStatusParsed)).
		Set("draft_id", draftID.String()).
		Set("finished_at", time.Now().UTC())
	if err := r.update(ctx, jobID, u); err != nil {
		r.log.Error("parse_job finish(PARSED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("parse_job finished (PARSED)", "job_id", jobID, "draft_id", draftID)
	return nil
}

func (r *parseJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	u := r.db.builder().Update(tableParseJobs).
		Set("status", string(constants.JobStatusFailed)).
		Set("error_message", message).
		Set("finished_at", time.Now().UTC())
	if err := r.update(ctx, jobID, u); err != nil {
		r.log.Error("parse_job finish(FAILED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("parse_job finished (FAILED)", "job_id", jobID, "error", message)
	return nil
}

func (r *parseJobRepo) update(ctx context.Context, jobID uuid.UUID, u *entsql.UpdateBuilder) error {
	q, args := u.Where(entsql.EQ("id", jobID.String())).Query()
	n, err := r.db.exec(ctx, q, args)
	if err != nil {
		return errors.Join(common.ErrDatabase, err)
	}
	if n == 0 {
		return common.NewAppError("JOB_NOT_FOUND", "parse job "+jobID.String()+" not found", common.ErrNotFound)
	}
	return nil
}

func (r *parseJobRepo) Get(ctx context.Context, jobID uuid.UUID) (*entity.ParseJob, error) {
	b := r.db.builder()
	q, args := b.Select(parseJobColumns...).
		From(b.Table(tableParseJobs)).
		Where(entsql.EQ("id", jobID.String())).
		Query()
	var out *entity.ParseJob
	err := r.db.query(ctx, q, args, func(rows *entsql.Rows) error {
		job, err := scanParseJob(rows)
		out = job
		return err
	})
	if err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	if out == nil {
		return nil, common.NewAppError("JOB_NOT_FOUND", "parse job "+jobID.String()+" not found", common.ErrNotFound)
	}
	return out, nil
}

// ListRecent returns the most recently started jobs first.
func (r *parseJobRepo) ListRecent(ctx context.Context, limit int) ([]*entity.ParseJob, error) {
	if limit <= 0 {
		limit = 50
	}
	b := r.db.builder()
	q, args := b.Select(parseJobColumns...).
		From(b.Table(tableParseJobs)).
		OrderBy(entsql.Desc("started_at")).
		Limit(limit).
		Query()
	var out []*entity.ParseJob
	err := r.db.query(ctx, q, args, func(rows *entsql.Rows) error {
		job, err := scanParseJob(rows)
		if err != nil {
			return err
		}
		out = append(out, job)
		return nil
	})
	if err != nil {
		return nil, errors.Join(common.ErrDatabase, err)
	}
	return out, nil
}

func scanParseJob(rows *entsql.Rows) (*entity.ParseJob, error) {
	var (
		id, source, format, status string
		started                    time.Time
		finished                   stdsql.NullTime
		message, method, draft     stdsql.NullString
		pages                      stdsql.NullInt64
	)
	if err := rows.Scan(&id, &source, &format, &status, &started, &finished, &message, &pages, &method, &draft); err != nil {
		return nil, err
	}
	job := &entity.ParseJob{SourcePath: source, Format: format, Status: status, StartedAt: started}
	var err error
	if job.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if finished.Valid {
		job.FinishedAt = &finished.Time
	}
	if message.Valid {
		job.ErrorMessage = &message.String
	}
	if method.Valid {
		job.TextMethod = &method.String
	}
	if pages.Valid {
		n := int(pages.Int64)
		job.Pages = &n
	}
	if draft.Valid {
		did, err := uuid.Parse(draft.String)
		if err != nil {
			return nil, err
		}
		job.DraftID = &did
	}
	return job, nil
}
