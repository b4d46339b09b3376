// Package service provides the business logic layer for the Mars Rover fleet.
//
// The service package implements:
//   - Rover creation with duplicate-id detection
//   - Renaming existing rovers
//   - Moving rovers through the engine's command interpreter
//   - Error classification (not found, conflict, invalid command, invalid name)
//
// Core Interfaces:
//
// RoverService is the main service interface used by the HTTP API, the MCP
// tools and mission scripts. RoverStore is the key-value collaborator the
// service loads rovers from and persists them to; the store package provides
// memory, file and SQL implementations.
//
// Architecture:
//
// The service sits between the transport layer (HTTP/WebSocket/MCP) and the
// engine. Every mutation is a read-modify-write against the store; a single
// mutex serialises them inside one process. Across processes the last write
// wins.
//
// Usage:
//
//	store := store.NewMemoryStore()
//	roverService := service.NewRoverService(store)
//
//	if _, err := roverService.CreateRover(ctx, 1, "Curiosity"); err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := roverService.MoveRover(ctx, 1, "MRM")
//	// result.To == engine.State{Heading: engine.East, Position: engine.Position{X: 1, Y: 1}}
package service
