package repository

import (
	"context"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableDrafts      = "drafts"
	tableParseJobs   = "parse_jobs"
	tableTerritories = "territories"
	tableSettings    = "settings"
)

var (
	parseJobsTable = func() *schema.Table {
		t := schema.NewTable(tableParseJobs).
			AddPrimary(&schema.Column{Name: "id", Type: field.TypeUUID}).
			AddColumn(&schema.Column{Name: "source_path", Type: field.TypeString, Size: 2048}).
			AddColumn(&schema.Column{Name: "format", Type: field.TypeString, Size: 16}).
			AddColumn(&schema.Column{Name: "status", Type: field.TypeString, Size: 16}).
			AddColumn(&schema.Column{Name: "started_at", Type: field.TypeTime}).
			AddColumn(&schema.Column{Name: "finished_at", Type: field.TypeTime, Nullable: true}).
			AddColumn(&schema.Column{Name: "error_message", Type: field.TypeString, Size: 4096, Nullable: true}).
			AddColumn(&schema.Column{Name: "pages", Type: field.TypeInt, Nullable: true}).
			AddColumn(&schema.Column{Name: "text_method", Type: field.TypeString, Size: 32, Nullable: true}).
			AddColumn(&schema.Column{Name: "draft_id", Type: field.TypeUUID, Nullable: true})
		return t.AddIndex("parsejob_status_started_at", false, []string{"status", "started_at"})
	}

	draftsTable = func() *schema.Table {
		t := schema.NewTable(tableDrafts).
			AddPrimary(&schema.Column{Name: "id", Type: field.TypeUUID}).
			AddColumn(&schema.Column{Name: "job_id", Type: field.TypeUUID, Nullable: true}).
			AddColumn(&schema.Column{Name: "source_path", Type: field.TypeString, Size: 2048}).
			AddColumn(&schema.Column{Name: "account_name", Type: field.TypeString, Nullable: true}).
			AddColumn(&schema.Column{Name: "service_zip", Type: field.TypeString, Size: 5, Nullable: true}).
			AddColumn(&schema.Column{Name: "payload", Type: field.TypeJSON}).
			AddColumn(&schema.Column{Name: "created_at", Type: field.TypeTime})
		return t.AddIndex("draft_created_at", false, []string{"created_at"})
	}

	territoriesTable = func() *schema.Table {
		t := schema.NewTable(tableTerritories).
			AddPrimary(&schema.Column{Name: "zip_code", Type: field.TypeString, Size: 5}).
			AddColumn(&schema.Column{Name: "ae_email", Type: field.TypeString}).
			AddColumn(&schema.Column{Name: "branch_id", Type: field.TypeString, Size: 64}).
			AddColumn(&schema.Column{Name: "territory_name", Type: field.TypeString}).
			AddColumn(&schema.Column{Name: "updated_at", Type: field.TypeTime})
		return t.AddIndex("territory_ae_email_territory_name", false, []string{"ae_email", "territory_name"})
	}

	settingsTable = func() *schema.Table {
		return schema.NewTable(tableSettings).
			AddPrimary(&schema.Column{Name: "key", Type: field.TypeString, Size: 64}).
			AddColumn(&schema.Column{Name: "value", Type: field.TypeString}).
			AddColumn(&schema.Column{Name: "updated_at", Type: field.TypeTime})
	}
)

// Tables returns fresh definitions of every table the service owns.
func Tables() []*schema.Table {
	return []*schema.Table{parseJobsTable(), draftsTable(), territoriesTable(), settingsTable()}
}

// Migrate creates missing tables, columns and indexes. It never drops
// anything and is safe to run on every start.
func (db *DB) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(db.drv, schema.WithDropIndex(false), schema.WithDropColumn(false))
	if err != nil {
		db.log.Error("migration setup failed", "error", err)
		return err
	}
	if err := m.Create(ctx, Tables()...); err != nil {
		db.log.Error("migration failed", "error", err)
		return err
	}
	db.log.Info("migration complete", "dialect", db.dialect)
	return nil
}
