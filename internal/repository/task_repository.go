package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/HaGotHem/optines/internal/models"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, title, date, start_time, end_time, duration, packages, team_size,
	manager_section, manager_initials, legacy`

func (r *TaskRepository) LoadTasksForDate(ctx context.Context, date string) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE date = ?
		ORDER BY rowid ASC
	`, date)
	if err != nil {
		return nil, fmt.Errorf("load tasks for date %s: %w", date, err)
	}
	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}

	members, err := r.membersWhere(ctx, `task_id IN (SELECT id FROM tasks WHERE date = ?)`, date)
	if err != nil {
		return nil, err
	}
	return attachMembers(tasks, members), nil
}

func (r *TaskRepository) ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		ORDER BY date ASC, rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}

	members, err := r.membersWhere(ctx, `1 = 1`)
	if err != nil {
		return nil, err
	}
	return attachMembers(tasks, members), nil
}

func (r *TaskRepository) AppendTask(ctx context.Context, task models.Task) error {
	return r.ImportTasks(ctx, []models.Task{task})
}

// ImportTasks inserts every task and its member list in one transaction.
func (r *TaskRepository) ImportTasks(ctx context.Context, tasks []models.Task) (err error) {
	if len(tasks) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction for task insert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	taskStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare task insert: %w", err)
	}
	defer taskStmt.Close()

	memberStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO task_members (task_id, employee_id, position) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare task member insert: %w", err)
	}
	defer memberStmt.Close()

	for i := range tasks {
		t := &tasks[i]
		legacy := 0
		if t.IsLegacy() {
			legacy = 1
		}
		_, err = taskStmt.ExecContext(ctx,
			t.ID,
			t.Title,
			t.Date,
			t.StartTime,
			t.EndTime,
			t.Duration,
			t.Packages,
			t.TeamSize,
			t.ManagerSection,
			t.ManagerInitials,
			legacy,
		)
		if err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
		for pos, employeeID := range t.TeamMembers {
			if _, err = memberStmt.ExecContext(ctx, t.ID, employeeID, pos); err != nil {
				return fmt.Errorf("insert member %d of task %s: %w", employeeID, t.ID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit task insert: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetTask(ctx context.Context, id string) (models.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if err != nil {
		return models.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	tasks, err := scanTasks(rows)
	if err != nil {
		return models.Task{}, err
	}
	if len(tasks) == 0 {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	members, err := r.membersWhere(ctx, `task_id = ?`, id)
	if err != nil {
		return models.Task{}, err
	}
	return attachMembers(tasks, members)[0], nil
}

func (r *TaskRepository) RemoveTask(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction for task removal: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM task_members WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("delete task members: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task rows affected: %w", err)
	}
	if n == 0 {
		err = fmt.Errorf("task %s: %w", id, ErrNotFound)
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit task removal: %w", err)
	}
	return nil
}

type taskRow struct {
	task   models.Task
	legacy bool
}

func scanTasks(rows *sql.Rows) ([]taskRow, error) {
	defer rows.Close()

	var out []taskRow
	for rows.Next() {
		var tr taskRow
		var legacy int
		err := rows.Scan(
			&tr.task.ID,
			&tr.task.Title,
			&tr.task.Date,
			&tr.task.StartTime,
			&tr.task.EndTime,
			&tr.task.Duration,
			&tr.task.Packages,
			&tr.task.TeamSize,
			&tr.task.ManagerSection,
			&tr.task.ManagerInitials,
			&legacy,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tr.legacy = legacy != 0
		out = append(out, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return out, nil
}

func (r *TaskRepository) membersWhere(ctx context.Context, where string, args ...any) (map[string][]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT task_id, employee_id FROM task_members
		WHERE `+where+`
		ORDER BY task_id, position
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("load task members: %w", err)
	}
	defer rows.Close()

	members := make(map[string][]int)
	for rows.Next() {
		var taskID string
		var employeeID int
		if err := rows.Scan(&taskID, &employeeID); err != nil {
			return nil, fmt.Errorf("scan task member: %w", err)
		}
		members[taskID] = append(members[taskID], employeeID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task members: %w", err)
	}
	return members, nil
}

func attachMembers(rows []taskRow, members map[string][]int) []models.Task {
	tasks := make([]models.Task, 0, len(rows))
	for _, tr := range rows {
		t := tr.task
		if !tr.legacy {
			t.TeamMembers = members[t.ID]
			if t.TeamMembers == nil {
				t.TeamMembers = []int{}
			}
		}
		tasks = append(tasks, t)
	}
	return tasks
}
