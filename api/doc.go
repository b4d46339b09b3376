// Package api provides HTTP REST API handlers for the Mars Rover server.
//
// Endpoints:
//
// Rovers:
//   - GET /api/rovers - List all rovers ordered by id
//   - POST /api/rovers - Create a rover at (0,0) facing North
//   - GET /api/rovers/{id} - Get a rover
//   - PATCH /api/rovers/{id} - Rename a rover
//   - POST /api/rovers/{id}/move - Apply a command string such as "MRM"
//
// Query-parameter routes (flat rover shape):
//   - GET /api/MarsRover/Retrieve?RoverId=1
//   - POST /api/MarsRover/Create?RoverId=1&RoverName=Curiosity
//   - PATCH /api/MarsRover/Rename?RoverId=1&RoverName=Perseverance
//   - PATCH /api/MarsRover/Move?RoverId=1&MovementInstruction=LMM
//
// Operations:
//   - GET /healthz - Liveness probe
//   - GET /metrics - Prometheus scrape endpoint
//   - GET /ws?rover={id} - WebSocket live updates for one rover
//
// Request/Response Format:
//
//	POST /api/rovers              {"id": 1, "name": "Curiosity"}
//	PATCH /api/rovers/1           {"name": "Perseverance"}
//	POST /api/rovers/1/move       {"commands": "MRM"}
//
// Rovers are returned as
//
//	{"id": 1, "name": "Curiosity", "position": {"x": 1, "y": 1}, "heading": "E"}
//
// Error Handling:
//
// Errors are returned as {"error": "message"} with:
//   - 400 for malformed input, blank names and invalid command strings
//   - 404 for unknown rovers
//   - 409 for duplicate ids (400 "Id already exists" on the legacy route)
//   - 500 for store failures
//
// Every response carries an X-Request-ID header.
package api
