package http

import (
	"time"

	"github.com/example/classroom-scheduler/internal/application"
	"github.com/example/classroom-scheduler/internal/booking"
	"github.com/example/classroom-scheduler/internal/persistence"
)

type scheduleRequest struct {
	RoomID    int64  `json:"room_id"`
	UserID    int64  `json:"user_id"`
	CourseID  int64  `json:"course_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type recurringScheduleRequest struct {
	RoomID    int64  `json:"room_id"`
	UserID    int64  `json:"user_id"`
	CourseID  int64  `json:"course_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Pattern   struct {
		StartDate  string `json:"start_date"`
		EndDate    string `json:"end_date"`
		DaysOfWeek []int  `json:"days_of_week"`
	} `json:"recurrence_pattern"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type batchStatusRequest struct {
	IDs    []int64 `json:"ids"`
	Status string  `json:"status"`
}

type batchDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

type scheduleResponse struct {
	ID                int64  `json:"id"`
	RoomID            int64  `json:"room_id"`
	RoomNumber        string `json:"room_number"`
	UserID            int64  `json:"user_id"`
	UserName          string `json:"user_name"`
	CourseID          int64  `json:"course_id"`
	CourseCode        string `json:"course_code"`
	CourseDescription string `json:"course_description"`
	Date              string `json:"date"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	Status            string `json:"status"`
	CreationDate      string `json:"creation_date"`
	LastUpdated       string `json:"last_updated"`
	CreatedBy         string `json:"created_by"`
	UpdatedBy         string `json:"updated_by"`
}

func toScheduleResponse(detail application.ScheduleDetail) scheduleResponse {
	return scheduleResponse{
		ID:                detail.ID,
		RoomID:            detail.RoomID,
		RoomNumber:        detail.RoomNumber,
		UserID:            detail.UserID,
		UserName:          detail.UserName,
		CourseID:          detail.CourseID,
		CourseCode:        detail.CourseCode,
		CourseDescription: detail.CourseDescription,
		Date:              detail.Date.Format("2006-01-02"),
		StartTime:         detail.StartTime.String(),
		EndTime:           detail.EndTime.String(),
		Status:            string(detail.Status),
		CreationDate:      detail.CreationDate.UTC().Format(time.RFC3339),
		LastUpdated:       detail.LastUpdated.UTC().Format(time.RFC3339),
		CreatedBy:         detail.CreatedByName,
		UpdatedBy:         detail.UpdatedByName,
	}
}

func toScheduleResponses(details []application.ScheduleDetail) []scheduleResponse {
	out := make([]scheduleResponse, 0, len(details))
	for _, detail := range details {
		out = append(out, toScheduleResponse(detail))
	}
	return out
}

type roomRequest struct {
	RoomNumber   string `json:"room_number"`
	BuildingID   int64  `json:"building_id"`
	Capacity     int    `json:"capacity"`
	HasProjector bool   `json:"has_projector"`
	HasComputers bool   `json:"has_computers"`
}

type roomResponse struct {
	ID           int64  `json:"id"`
	RoomNumber   string `json:"room_number"`
	BuildingID   int64  `json:"building_id"`
	Capacity     int    `json:"capacity"`
	HasProjector bool   `json:"has_projector"`
	HasComputers bool   `json:"has_computers"`
}

func toRoomResponse(room persistence.Room) roomResponse {
	return roomResponse{
		ID:           room.ID,
		RoomNumber:   room.RoomNumber,
		BuildingID:   room.BuildingID,
		Capacity:     room.Capacity,
		HasProjector: room.HasProjector,
		HasComputers: room.HasComputers,
	}
}

func toRoomResponses(rooms []persistence.Room) []roomResponse {
	out := make([]roomResponse, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomResponse(room))
	}
	return out
}

type namedRequest struct {
	Name string `json:"name"`
}

type namedResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type programRequest struct {
	Name         string `json:"name"`
	Code         string `json:"code"`
	DepartmentID int64  `json:"department_id"`
}

type programResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	DepartmentID int64  `json:"department_id"`
}

type courseRequest struct {
	CourseCode  string `json:"course_code"`
	Description string `json:"description"`
	ProgramID   int64  `json:"program_id"`
}

type courseResponse struct {
	ID          int64  `json:"id"`
	CourseCode  string `json:"course_code"`
	Description string `json:"description"`
	ProgramID   int64  `json:"program_id"`
}

func toCourseResponse(course persistence.Course) courseResponse {
	return courseResponse{
		ID:          course.ID,
		CourseCode:  course.CourseCode,
		Description: course.Description,
		ProgramID:   course.ProgramID,
	}
}

func toCourseResponses(courses []persistence.Course) []courseResponse {
	out := make([]courseResponse, 0, len(courses))
	for _, course := range courses {
		out = append(out, toCourseResponse(course))
	}
	return out
}

type userRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
}

// userResponse never carries the password hash.
type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserResponse(user persistence.User) userResponse {
	return userResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}
}

func toUserResponses(users []persistence.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUserResponse(user))
	}
	return out
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

func (r scheduleRequest) toInput() (application.ScheduleInput, error) {
	date, err := time.ParseInLocation("2006-01-02", r.Date, time.UTC)
	if err != nil {
		return application.ScheduleInput{}, errInvalidDate
	}
	start, err := booking.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return application.ScheduleInput{}, err
	}
	end, err := booking.ParseTimeOfDay(r.EndTime)
	if err != nil {
		return application.ScheduleInput{}, err
	}
	return application.ScheduleInput{
		RoomID:    r.RoomID,
		UserID:    r.UserID,
		CourseID:  r.CourseID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}, nil
}

func (r recurringScheduleRequest) toInput() (application.RecurringScheduleInput, error) {
	start, err := booking.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return application.RecurringScheduleInput{}, err
	}
	end, err := booking.ParseTimeOfDay(r.EndTime)
	if err != nil {
		return application.RecurringScheduleInput{}, err
	}
	startDate, err := time.ParseInLocation("2006-01-02", r.Pattern.StartDate, time.UTC)
	if err != nil {
		return application.RecurringScheduleInput{}, errInvalidDate
	}
	endDate, err := time.ParseInLocation("2006-01-02", r.Pattern.EndDate, time.UTC)
	if err != nil {
		return application.RecurringScheduleInput{}, errInvalidDate
	}
	return application.RecurringScheduleInput{
		RoomID:    r.RoomID,
		UserID:    r.UserID,
		CourseID:  r.CourseID,
		StartTime: start,
		EndTime:   end,
		Pattern: application.RecurrencePattern{
			StartDate:  startDate,
			EndDate:    endDate,
			DaysOfWeek: r.Pattern.DaysOfWeek,
		},
	}, nil
}
