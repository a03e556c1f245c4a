package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/classroom-scheduler/internal/persistence"
)

// RoomService orchestrates validation, authorization, and persistence for
// classroom records.
type RoomService struct {
	rooms   persistence.RoomRepository
	catalog persistence.CatalogRepository
	logger  *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(rooms persistence.RoomRepository, catalog persistence.CatalogRepository) *RoomService {
	return NewRoomServiceWithLogger(rooms, catalog, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms persistence.RoomRepository, catalog persistence.CatalogRepository, logger *slog.Logger) *RoomService {
	return &RoomService{rooms: rooms, catalog: catalog, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateRoom validates input and persists a new room for administrators.
func (s *RoomService) CreateRoom(ctx context.Context, principal Principal, input RoomInput) (room persistence.Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if vErr := validateRoomInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	if _, bErr := s.catalog.GetBuilding(ctx, input.BuildingID); bErr != nil {
		if errors.Is(bErr, persistence.ErrNotFound) {
			err = notFoundByID("Building", input.BuildingID)
			return
		}
		err = bErr
		return
	}

	room, err = s.rooms.CreateRoom(ctx, persistence.Room{
		RoomNumber:   strings.TrimSpace(input.RoomNumber),
		BuildingID:   input.BuildingID,
		Capacity:     input.Capacity,
		HasProjector: input.HasProjector,
		HasComputers: input.HasComputers,
	})
	if err != nil {
		err = mapCatalogWriteError(err, "room_number", "a room with that number already exists in this building")
	}
	return
}

// UpdateRoom validates input and updates an existing room for administrators.
func (s *RoomService) UpdateRoom(ctx context.Context, principal Principal, id int64, input RoomInput) (room persistence.Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom", "room_id", id, "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room updated")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if vErr := validateRoomInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	existing, gErr := s.rooms.GetRoom(ctx, id)
	if gErr != nil {
		if errors.Is(gErr, persistence.ErrNotFound) {
			err = notFoundByID("Room", id)
			return
		}
		err = gErr
		return
	}

	if _, bErr := s.catalog.GetBuilding(ctx, input.BuildingID); bErr != nil {
		if errors.Is(bErr, persistence.ErrNotFound) {
			err = notFoundByID("Building", input.BuildingID)
			return
		}
		err = bErr
		return
	}

	existing.RoomNumber = strings.TrimSpace(input.RoomNumber)
	existing.BuildingID = input.BuildingID
	existing.Capacity = input.Capacity
	existing.HasProjector = input.HasProjector
	existing.HasComputers = input.HasComputers

	room, err = s.rooms.UpdateRoom(ctx, existing)
	if err != nil {
		err = mapCatalogWriteError(err, "room_number", "a room with that number already exists in this building")
	}
	return
}

// DeleteRoom removes a room for administrators. Rooms referenced by existing
// schedules cannot be removed.
func (s *RoomService) DeleteRoom(ctx context.Context, principal Principal, id int64) (err error) {
	if s == nil {
		return fmt.Errorf("RoomService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteRoom", "room_id", id, "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room deleted")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if err = s.rooms.DeleteRoom(ctx, id); err != nil {
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			err = notFoundByID("Room", id)
		case errors.Is(err, persistence.ErrForeignKeyViolation):
			vErr := &ValidationError{}
			vErr.add("room", "room is referenced by existing schedules")
			err = vErr
		}
	}
	return
}

// GetRoom returns a single room by id.
func (s *RoomService) GetRoom(ctx context.Context, id int64) (persistence.Room, error) {
	if s == nil {
		return persistence.Room{}, fmt.Errorf("RoomService is nil")
	}

	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Room{}, notFoundByID("Room", id)
		}
		return persistence.Room{}, err
	}
	return room, nil
}

// ListRooms returns every room ordered by room number.
func (s *RoomService) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	if s == nil {
		return nil, fmt.Errorf("RoomService is nil")
	}
	return s.rooms.ListRooms(ctx)
}

// ListRoomsByBuilding returns the rooms located in one building.
func (s *RoomService) ListRoomsByBuilding(ctx context.Context, buildingID int64) ([]persistence.Room, error) {
	if s == nil {
		return nil, fmt.Errorf("RoomService is nil")
	}

	if _, err := s.catalog.GetBuilding(ctx, buildingID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, notFoundByID("Building", buildingID)
		}
		return nil, err
	}
	return s.rooms.ListRoomsByBuilding(ctx, buildingID)
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.RoomNumber) == "" {
		vErr.add("room_number", "room number is required")
	}
	if input.BuildingID <= 0 {
		vErr.add("building_id", "building id is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be a positive number")
	}
	return vErr
}

func mapCatalogWriteError(err error, field, duplicateMessage string) error {
	switch {
	case errors.Is(err, persistence.ErrDuplicate):
		vErr := &ValidationError{}
		vErr.add(field, duplicateMessage)
		return vErr
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		vErr := &ValidationError{}
		vErr.add(field, "referenced entity does not exist")
		return vErr
	}
	return err
}
