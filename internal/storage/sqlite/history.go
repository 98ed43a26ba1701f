package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/slok/flowtrack/internal/model"
)

const workflowColumns = `id, project, workflow, launched_by, aborted_by, time_created, time_finished, succeeded, messages, tasks`

// InsertWorkflow creates the history entry of a new workflow.
func (r *Repository) InsertWorkflow(ctx context.Context, project string, description json.RawMessage, launchedBy string) (string, error) {
	if len(description) == 0 {
		description = json.RawMessage("null")
	}

	id := ulid.Make().String()
	query := `
		INSERT INTO workflow_history (id, project, workflow, launched_by, time_created)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, id, project, string(description), nullString(launchedBy), r.timeNow().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("could not insert workflow: %w", err)
	}

	r.logger.Debugf("Inserted workflow %s in project %s", id, project)
	return id, nil
}

// UpdateTasks stores the task tree of a workflow.
func (r *Repository) UpdateTasks(ctx context.Context, project, id string, tasks model.TaskTree) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("could not marshal tasks: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `UPDATE workflow_history SET tasks = ? WHERE project = ? AND id = ?`, string(data), project, id)
	if err != nil {
		return fmt.Errorf("could not update workflow tasks: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("workflow %s: %w", id, model.ErrNotFound)
	}

	return nil
}

// FinalizeWorkflow sets the workflow outcome only if it's not finished yet, the first
// finalization wins and the rest are no-ops.
func (r *Repository) FinalizeWorkflow(ctx context.Context, project, id string, succeeded bool, messages []string, tasks model.TaskTree) (bool, error) {
	if messages == nil {
		messages = []string{}
	}
	msgData, err := json.Marshal(messages)
	if err != nil {
		return false, fmt.Errorf("could not marshal messages: %w", err)
	}
	taskData, err := json.Marshal(tasks)
	if err != nil {
		return false, fmt.Errorf("could not marshal tasks: %w", err)
	}

	query := `
		UPDATE workflow_history
		SET time_finished = ?, succeeded = ?, messages = ?, tasks = ?
		WHERE project = ? AND id = ? AND time_finished IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, r.timeNow().UnixMilli(), succeeded, string(msgData), string(taskData), project, id)
	if err != nil {
		return false, fmt.Errorf("could not finalize workflow: %w", err)
	}

	applied, err := r.applied(ctx, result, project, id)
	if err != nil {
		return false, err
	}

	if applied {
		r.logger.Debugf("Finalized workflow %s (succeeded: %t)", id, succeeded)
	}
	return applied, nil
}

// AbortWorkflow marks an unfinished workflow as aborted. A nil tree keeps the stored one.
func (r *Repository) AbortWorkflow(ctx context.Context, project, id, by string, tasks model.TaskTree) (bool, error) {
	var taskData sql.NullString
	if tasks != nil {
		data, err := json.Marshal(tasks)
		if err != nil {
			return false, fmt.Errorf("could not marshal tasks: %w", err)
		}
		taskData = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		UPDATE workflow_history
		SET time_finished = ?, succeeded = 0, aborted_by = ?, tasks = COALESCE(?, tasks)
		WHERE project = ? AND id = ? AND time_finished IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, r.timeNow().UnixMilli(), nullString(by), taskData, project, id)
	if err != nil {
		return false, fmt.Errorf("could not abort workflow: %w", err)
	}

	applied, err := r.applied(ctx, result, project, id)
	if err != nil {
		return false, err
	}

	if applied {
		r.logger.Debugf("Aborted workflow %s by %q", id, by)
	}
	return applied, nil
}

// applied checks a conditional update changed the row, a missing row is not found.
func (r *Repository) applied(ctx context.Context, result sql.Result, project, id string) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows > 0 {
		return true, nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM workflow_history WHERE project = ? AND id = ?`, project, id).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("workflow %s: %w", id, model.ErrNotFound)
		}
		return false, fmt.Errorf("could not query workflow: %w", err)
	}

	return false, nil
}

// GetWorkflow retrieves a workflow by ID.
func (r *Repository) GetWorkflow(ctx context.Context, project, id string) (*model.WorkflowRecord, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflow_history WHERE project = ? AND id = ?`

	w, err := r.scanRow(r.db.QueryRowContext(ctx, query, project, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("workflow %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query workflow: %w", err)
	}

	return &w, nil
}

// ListActiveWorkflows returns the workflows not finished nor aborted, newest first.
func (r *Repository) ListActiveWorkflows(ctx context.Context, project string) ([]model.WorkflowRecord, error) {
	query := `
		SELECT ` + workflowColumns + `
		FROM workflow_history
		WHERE project = ?
		AND time_finished IS NULL
		AND succeeded IS NULL
		AND aborted_by IS NULL
		ORDER BY time_created DESC, id DESC
	`

	return r.list(ctx, query, project)
}

// ListWorkflows returns the workflows matching the options, newest first.
func (r *Repository) ListWorkflows(ctx context.Context, project string, opts model.ListOpts) ([]model.WorkflowRecord, error) {
	criteria := []string{"project = ?"}
	args := []any{project}

	switch opts.Filter {
	case model.WorkflowFilterRunning:
		criteria = append(criteria, "time_finished IS NULL")
	case model.WorkflowFilterFinished:
		criteria = append(criteria, "time_finished IS NOT NULL")
	case model.WorkflowFilterBoth, "":
	default:
		return nil, fmt.Errorf("unknown filter %q: %w", opts.Filter, model.ErrNotValid)
	}

	if opts.MinCreated != nil {
		criteria = append(criteria, "time_created > ?")
		args = append(args, opts.MinCreated.UnixMilli())
	}

	query := `SELECT ` + workflowColumns + ` FROM workflow_history WHERE ` + strings.Join(criteria, " AND ") + ` ORDER BY time_created DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	return r.list(ctx, query, args...)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]model.WorkflowRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query workflows: %w", err)
	}
	defer rows.Close()

	workflows := []model.WorkflowRecord{}
	for rows.Next() {
		w, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		workflows = append(workflows, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return workflows, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanRow(s scanner) (model.WorkflowRecord, error) {
	var (
		w                     model.WorkflowRecord
		description           string
		launchedBy, abortedBy sql.NullString
		timeCreated           int64
		timeFinished          sql.NullInt64
		succeeded             sql.NullBool
		messages, tasks       sql.NullString
	)

	err := s.Scan(
		&w.ID,
		&w.Project,
		&description,
		&launchedBy,
		&abortedBy,
		&timeCreated,
		&timeFinished,
		&succeeded,
		&messages,
		&tasks,
	)
	if err != nil {
		return model.WorkflowRecord{}, err
	}

	w.Description = json.RawMessage(description)
	w.LaunchedBy = launchedBy.String
	w.AbortedBy = abortedBy.String
	w.TimeCreated = timeFromUnixMilli(timeCreated)
	if timeFinished.Valid {
		t := timeFromUnixMilli(timeFinished.Int64)
		w.TimeFinished = &t
	}
	if succeeded.Valid {
		s := succeeded.Bool
		w.Succeeded = &s
	}

	w.Messages = []string{}
	if messages.Valid && messages.String != "" {
		if err := json.Unmarshal([]byte(messages.String), &w.Messages); err != nil {
			return model.WorkflowRecord{}, fmt.Errorf("could not unmarshal messages: %w", err)
		}
	}

	if tasks.Valid && tasks.String != "" {
		if err := json.Unmarshal([]byte(tasks.String), &w.Tasks); err != nil {
			return model.WorkflowRecord{}, fmt.Errorf("could not unmarshal tasks: %w", err)
		}
	}

	return w, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
