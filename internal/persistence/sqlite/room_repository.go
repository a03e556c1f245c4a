package sqlite

import (
	"context"
	"fmt"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	store *Store
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(store *Store) *RoomRepository {
	return &RoomRepository{store: store}
}

const roomColumns = `id, room_number, building_id, capacity, has_projector, has_computers`

// CreateRoom inserts a new room.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) (persistence.Room, error) {
	result, err := r.store.db.ExecContext(ctx, `
		INSERT INTO rooms (room_number, building_id, capacity, has_projector, has_computers)
		VALUES (?, ?, ?, ?, ?)`,
		room.RoomNumber, room.BuildingID, room.Capacity, room.HasProjector, room.HasComputers,
	)
	if err != nil {
		return persistence.Room{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Room{}, fmt.Errorf("failed to get inserted id: %w", err)
	}
	room.ID = id
	return room, nil
}

// GetRoom retrieves a room by id.
func (r *RoomRepository) GetRoom(ctx context.Context, id int64) (persistence.Room, error) {
	var room persistence.Room
	err := r.store.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id,
	).Scan(&room.ID, &room.RoomNumber, &room.BuildingID, &room.Capacity, &room.HasProjector, &room.HasComputers)
	if err != nil {
		return persistence.Room{}, mapError(err)
	}
	return room, nil
}

// UpdateRoom overwrites an existing room.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) (persistence.Room, error) {
	result, err := r.store.db.ExecContext(ctx, `
		UPDATE rooms
		SET room_number = ?, building_id = ?, capacity = ?, has_projector = ?, has_computers = ?
		WHERE id = ?`,
		room.RoomNumber, room.BuildingID, room.Capacity, room.HasProjector, room.HasComputers, room.ID,
	)
	if err != nil {
		return persistence.Room{}, mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Room{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

// DeleteRoom removes a room. Rooms referenced by schedules fail with a
// foreign key violation.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id int64) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListRooms returns all rooms ordered by room number.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	return r.queryRooms(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY room_number ASC, id ASC`)
}

// ListRoomsByBuilding returns the rooms in one building ordered by room number.
func (r *RoomRepository) ListRoomsByBuilding(ctx context.Context, buildingID int64) ([]persistence.Room, error) {
	return r.queryRooms(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE building_id = ? ORDER BY room_number ASC, id ASC`,
		buildingID)
}

func (r *RoomRepository) queryRooms(ctx context.Context, query string, args ...any) ([]persistence.Room, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		var room persistence.Room
		if err := rows.Scan(&room.ID, &room.RoomNumber, &room.BuildingID, &room.Capacity, &room.HasProjector, &room.HasComputers); err != nil {
			return nil, mapError(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return rooms, nil
}
