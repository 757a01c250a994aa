package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iseprep/backend/internal/domain"
	"github.com/iseprep/backend/internal/repository/sqldb"
)

type SettingsRepository interface {
	// ProjectSettings returns the configured order/expiry periods. A
	// database without the period columns, or without any project row,
	// yields zero settings rather than an error.
	ProjectSettings(ctx context.Context) (domain.ProjectSettings, error)
	ProjectInfo(ctx context.Context) (name, code string, err error)
	ThirdParties(ctx context.Context) ([]string, error)
}

type settingsRepository struct {
	db *sqldb.DB
}

func NewSettingsRepository(db *sqldb.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) ProjectSettings(ctx context.Context) (domain.ProjectSettings, error) {
	for _, col := range []string{"lead_time_months", "cover_period_months", "buffer_months"} {
		ok, err := r.db.HasColumn(ctx, "project_details", col)
		if err != nil {
			return domain.ProjectSettings{}, err
		}
		if !ok {
			return domain.ProjectSettings{}, nil
		}
	}

	var settings domain.ProjectSettings
	query := `
		SELECT COALESCE(lead_time_months, 0) AS lead_time_months,
		       COALESCE(cover_period_months, 0) AS cover_period_months,
		       COALESCE(buffer_months, 0) AS buffer_months
		FROM project_details
		LIMIT 1`
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ProjectSettings{}, nil
		}
		return domain.ProjectSettings{}, fmt.Errorf("error loading project settings: %w", err)
	}
	return settings, nil
}

func (r *settingsRepository) ProjectInfo(ctx context.Context) (string, string, error) {
	var row struct {
		Name sql.NullString `db:"project_name"`
		Code sql.NullString `db:"project_code"`
	}
	query := `SELECT project_name, project_code FROM project_details ORDER BY id DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", nil
		}
		return "", "", fmt.Errorf("error loading project info: %w", err)
	}
	return row.Name.String, row.Code.String, nil
}

func (r *settingsRepository) ThirdParties(ctx context.Context) ([]string, error) {
	var names []string
	query := `SELECT name FROM third_parties ORDER BY name`
	if err := r.db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("error listing third parties: %w", err)
	}
	return names, nil
}
