// Package http provides HTTP handlers and middleware for the classroom
// scheduler API.
//
// Every /api route except the auth endpoints sits behind bearer-token
// authentication. The router exposes the following endpoints:
//   - POST /api/auth/login, /api/auth/refresh, /api/auth/logout: issue,
//     rotate, and revoke token pairs. Bodies and responses are the
//     loginRequest/refreshRequest/tokenResponse payloads in dto.go.
//   - GET/POST /api/schedules, GET/PUT/DELETE /api/schedules/{id}: booking
//     lifecycle. Editing a booking resets its status to PENDING.
//   - POST /api/schedules/recurring: expands a weekday pattern into dated
//     bookings and creates them atomically; any conflicting date aborts the
//     whole series with a 409 listing every conflict.
//   - PUT /api/schedules/{id}/status, PUT /api/schedules/batch/status,
//     DELETE /api/schedules/batch: administrator-only approval and bulk
//     operations. Batch operations skip ids that no longer exist.
//   - GET /api/schedules/date/{date}, /api/schedules/user/{id},
//     /api/schedules/email/{email}: filtered listings.
//   - /api/rooms (+ /api/rooms/building/{id}), /api/courses
//     (+ /api/courses/program/{id}), /api/buildings, /api/departments,
//     /api/programs (+ /api/programs/department/{id}), /api/users: catalog
//     CRUD. Listings are open to any authenticated principal; mutations
//     require admin privileges, except that users may edit their own profile.
//
// Request/response DTOs live in dto.go so handlers and tests share the same
// ground truth.
package http
