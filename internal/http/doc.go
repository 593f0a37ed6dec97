// Package http exposes the room planner over JSON/HTTP.
//
// Routes:
//   - POST /users: register an account. Body {"name","email","password"}.
//   - POST /users/login: exchange credentials for a bearer token.
//     Response {"token","token_type","expires_at","user"}.
//   - GET /users/me: the caller's profile.
//   - GET /rooms?min_capacity=N, GET /rooms/{roomID}: room catalog.
//   - POST /rooms, POST /rooms/{roomID}/schedules: catalog administration, admin only.
//   - GET /rooms/{roomID}/schedules: slot templates ordered by start.
//   - GET /rooms/{roomID}/availability?date=YYYY-MM-DD: free slots on a date.
//   - GET /reservations, POST /reservations: the caller's reservations.
//   - PUT /reservations/{reservationID}: move to another slot. Body {"slot_id"}.
//   - DELETE /reservations/{reservationID}: cancel.
//   - GET /healthz: liveness.
//
// Everything except registration, login and health requires
// "Authorization: Bearer <token>". Errors are rendered as
// {"error_code","message","errors"}; see responder.go for the status mapping.
package http
