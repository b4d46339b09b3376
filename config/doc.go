// Package config provides configuration loading for the Mars Rover server.
//
// Values are resolved in layers, later layers winning:
//   - Built-in defaults (localhost:8080, in-memory store)
//   - An optional YAML file
//   - ROVER_* environment variables (a .env file is loaded by main first)
//   - Command line flags, applied by main
//
// Configuration Format:
//
//	host: 0.0.0.0
//	port: 9090
//	debug: false
//	store:
//	  driver: sqlite      # memory | file | sqlite | postgres
//	  data_dir: rovers    # file driver
//	  dsn: rovers.db      # sqlite path or postgres URL
//	ngrok:
//	  enabled: false
//	  domain: ""
//
// Environment Variables:
//
// Nested keys are flattened with underscores, e.g. ROVER_STORE_DRIVER,
// ROVER_STORE_DSN, ROVER_NGROK_AUTHTOKEN.
package config
