// Package mcp provides a Model Context Protocol server for the rover fleet.
//
// The server is a thin client of the REST API: every tool call becomes an
// HTTP request, so MCP agents see exactly the behavior HTTP clients see.
//
// MCP Tools:
//   - list_rovers: List every rover
//   - get_rover: Get a rover by rover_id
//   - create_rover: Create a rover (rover_id, name)
//   - rename_rover: Rename a rover (rover_id, name)
//   - move_rover: Apply a command string (rover_id, commands)
//
// API errors come back as tool error results rather than protocol errors.
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: client.HTTPHandler() mounted at /mcp, one JSON-RPC message per POST
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080", version)
//	apiServer.Handle("/mcp", client.HTTPHandler())
package mcp
