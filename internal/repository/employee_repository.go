package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/HaGotHem/optines/internal/models"
)

type EmployeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `id, name, role, section, status, rating, location, phone, email, avatar,
	shift, performance, tasks_completed`

func (r *EmployeeRepository) LoadRoster(ctx context.Context) ([]models.Employee, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	defer rows.Close()

	var roster []models.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		roster = append(roster, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster: %w", err)
	}
	return roster, nil
}

func (r *EmployeeRepository) GetEmployee(ctx context.Context, id int) (models.Employee, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Employee{}, fmt.Errorf("employee %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Employee{}, err
	}
	return e, nil
}

func (r *EmployeeRepository) CreateEmployee(ctx context.Context, e models.Employee) (models.Employee, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO employees (name, role, section, status, rating, location, phone, email, avatar,
			shift, performance, tasks_completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.Name,
		e.Role,
		e.Section,
		string(e.Status),
		e.Rating,
		e.Location,
		nullString(e.Phone),
		nullString(e.Email),
		nullString(e.Avatar),
		e.Shift,
		e.Performance,
		e.TasksCompleted,
	)
	if err != nil {
		return models.Employee{}, fmt.Errorf("create employee: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Employee{}, fmt.Errorf("create employee last insert id: %w", err)
	}
	e.ID = int(id)
	return e, nil
}

func (r *EmployeeRepository) UpdateEmployee(ctx context.Context, e models.Employee) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE employees
		SET name = ?, role = ?, section = ?, status = ?, rating = ?, location = ?,
			phone = ?, email = ?, avatar = ?, shift = ?, performance = ?, tasks_completed = ?
		WHERE id = ?
	`,
		e.Name,
		e.Role,
		e.Section,
		string(e.Status),
		e.Rating,
		e.Location,
		nullString(e.Phone),
		nullString(e.Email),
		nullString(e.Avatar),
		e.Shift,
		e.Performance,
		e.TasksCompleted,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return requireRow(result, fmt.Sprintf("employee %d", e.ID))
}

func (r *EmployeeRepository) DeleteEmployee(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	return requireRow(result, fmt.Sprintf("employee %d", id))
}

// IncrementTasksCompleted bumps the completion counter of each listed employee.
// Ids missing from the roster are ignored.
func (r *EmployeeRepository) IncrementTasksCompleted(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE employees SET tasks_completed = tasks_completed + 1 WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("increment tasks completed: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(s scanner) (models.Employee, error) {
	var e models.Employee
	var status string
	var phone, email, avatar sql.NullString
	err := s.Scan(
		&e.ID,
		&e.Name,
		&e.Role,
		&e.Section,
		&status,
		&e.Rating,
		&e.Location,
		&phone,
		&email,
		&avatar,
		&e.Shift,
		&e.Performance,
		&e.TasksCompleted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Employee{}, err
	}
	if err != nil {
		return models.Employee{}, fmt.Errorf("scan employee: %w", err)
	}
	e.Status = models.EmployeeStatus(status)
	if phone.Valid {
		e.Phone = &phone.String
	}
	if email.Valid {
		e.Email = &email.String
	}
	if avatar.Valid {
		e.Avatar = &avatar.String
	}
	return e, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func requireRow(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
