package sqlite

import (
	"context"
	"fmt"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// CatalogRepository implements persistence.CatalogRepository using SQLite.
type CatalogRepository struct {
	store *Store
}

// NewCatalogRepository creates a new SQLite catalog repository.
func NewCatalogRepository(store *Store) *CatalogRepository {
	return &CatalogRepository{store: store}
}

// CreateBuilding inserts a new building.
func (r *CatalogRepository) CreateBuilding(ctx context.Context, building persistence.Building) (persistence.Building, error) {
	result, err := r.store.db.ExecContext(ctx,
		`INSERT INTO buildings (name) VALUES (?)`, building.Name)
	if err != nil {
		return persistence.Building{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Building{}, fmt.Errorf("failed to get inserted id: %w", err)
	}
	building.ID = id
	return building, nil
}

// GetBuilding retrieves a building by id.
func (r *CatalogRepository) GetBuilding(ctx context.Context, id int64) (persistence.Building, error) {
	var building persistence.Building
	err := r.store.db.QueryRowContext(ctx,
		`SELECT id, name FROM buildings WHERE id = ?`, id,
	).Scan(&building.ID, &building.Name)
	if err != nil {
		return persistence.Building{}, mapError(err)
	}
	return building, nil
}

// UpdateBuilding renames an existing building.
func (r *CatalogRepository) UpdateBuilding(ctx context.Context, building persistence.Building) (persistence.Building, error) {
	result, err := r.store.db.ExecContext(ctx,
		`UPDATE buildings SET name = ? WHERE id = ?`, building.Name, building.ID)
	if err != nil {
		return persistence.Building{}, mapError(err)
	}
	if err := requireAffected(result); err != nil {
		return persistence.Building{}, err
	}
	return building, nil
}

// DeleteBuilding removes a building. Buildings referenced by rooms fail with
// a foreign key violation.
func (r *CatalogRepository) DeleteBuilding(ctx context.Context, id int64) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM buildings WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// ListBuildings returns all buildings ordered by name.
func (r *CatalogRepository) ListBuildings(ctx context.Context) ([]persistence.Building, error) {
	rows, err := r.store.db.QueryContext(ctx, `SELECT id, name FROM buildings ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var buildings []persistence.Building
	for rows.Next() {
		var building persistence.Building
		if err := rows.Scan(&building.ID, &building.Name); err != nil {
			return nil, mapError(err)
		}
		buildings = append(buildings, building)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return buildings, nil
}

// CreateDepartment inserts a new department.
func (r *CatalogRepository) CreateDepartment(ctx context.Context, department persistence.Department) (persistence.Department, error) {
	result, err := r.store.db.ExecContext(ctx,
		`INSERT INTO departments (name) VALUES (?)`, department.Name)
	if err != nil {
		return persistence.Department{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Department{}, fmt.Errorf("failed to get inserted id: %w", err)
	}
	department.ID = id
	return department, nil
}

// GetDepartment retrieves a department by id.
func (r *CatalogRepository) GetDepartment(ctx context.Context, id int64) (persistence.Department, error) {
	var department persistence.Department
	err := r.store.db.QueryRowContext(ctx,
		`SELECT id, name FROM departments WHERE id = ?`, id,
	).Scan(&department.ID, &department.Name)
	if err != nil {
		return persistence.Department{}, mapError(err)
	}
	return department, nil
}

// UpdateDepartment renames an existing department.
func (r *CatalogRepository) UpdateDepartment(ctx context.Context, department persistence.Department) (persistence.Department, error) {
	result, err := r.store.db.ExecContext(ctx,
		`UPDATE departments SET name = ? WHERE id = ?`, department.Name, department.ID)
	if err != nil {
		return persistence.Department{}, mapError(err)
	}
	if err := requireAffected(result); err != nil {
		return persistence.Department{}, err
	}
	return department, nil
}

// DeleteDepartment removes a department. Departments referenced by programs
// fail with a foreign key violation.
func (r *CatalogRepository) DeleteDepartment(ctx context.Context, id int64) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM departments WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// ListDepartments returns all departments ordered by name.
func (r *CatalogRepository) ListDepartments(ctx context.Context) ([]persistence.Department, error) {
	rows, err := r.store.db.QueryContext(ctx, `SELECT id, name FROM departments ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var departments []persistence.Department
	for rows.Next() {
		var department persistence.Department
		if err := rows.Scan(&department.ID, &department.Name); err != nil {
			return nil, mapError(err)
		}
		departments = append(departments, department)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return departments, nil
}

// CreateProgram inserts a new program.
func (r *CatalogRepository) CreateProgram(ctx context.Context, program persistence.Program) (persistence.Program, error) {
	result, err := r.store.db.ExecContext(ctx,
		`INSERT INTO programs (name, code, department_id) VALUES (?, ?, ?)`,
		program.Name, program.Code, program.DepartmentID)
	if err != nil {
		return persistence.Program{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Program{}, fmt.Errorf("failed to get inserted id: %w", err)
	}
	program.ID = id
	return program, nil
}

// GetProgram retrieves a program by id.
func (r *CatalogRepository) GetProgram(ctx context.Context, id int64) (persistence.Program, error) {
	var program persistence.Program
	err := r.store.db.QueryRowContext(ctx,
		`SELECT id, name, code, department_id FROM programs WHERE id = ?`, id,
	).Scan(&program.ID, &program.Name, &program.Code, &program.DepartmentID)
	if err != nil {
		return persistence.Program{}, mapError(err)
	}
	return program, nil
}

// UpdateProgram overwrites an existing program.
func (r *CatalogRepository) UpdateProgram(ctx context.Context, program persistence.Program) (persistence.Program, error) {
	result, err := r.store.db.ExecContext(ctx,
		`UPDATE programs SET name = ?, code = ?, department_id = ? WHERE id = ?`,
		program.Name, program.Code, program.DepartmentID, program.ID)
	if err != nil {
		return persistence.Program{}, mapError(err)
	}
	if err := requireAffected(result); err != nil {
		return persistence.Program{}, err
	}
	return program, nil
}

// DeleteProgram removes a program. Programs referenced by courses fail with
// a foreign key violation.
func (r *CatalogRepository) DeleteProgram(ctx context.Context, id int64) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM programs WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// ListPrograms returns all programs ordered by code.
func (r *CatalogRepository) ListPrograms(ctx context.Context) ([]persistence.Program, error) {
	return r.queryPrograms(ctx, `SELECT id, name, code, department_id FROM programs ORDER BY code ASC, id ASC`)
}

// ListProgramsByDepartment returns the programs in one department ordered by code.
func (r *CatalogRepository) ListProgramsByDepartment(ctx context.Context, departmentID int64) ([]persistence.Program, error) {
	return r.queryPrograms(ctx,
		`SELECT id, name, code, department_id FROM programs WHERE department_id = ? ORDER BY code ASC, id ASC`,
		departmentID)
}

func (r *CatalogRepository) queryPrograms(ctx context.Context, query string, args ...any) ([]persistence.Program, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var programs []persistence.Program
	for rows.Next() {
		var program persistence.Program
		if err := rows.Scan(&program.ID, &program.Name, &program.Code, &program.DepartmentID); err != nil {
			return nil, mapError(err)
		}
		programs = append(programs, program)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return programs, nil
}

func requireAffected(result interface{ RowsAffected() (int64, error) }) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
