package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mars-rover/rover/engine"
	"github.com/wricardo/mars-rover/rover/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string, version string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer(version)
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer(version string) {
	c.mcpServer = server.NewMCPServer(
		"Mars Rover Fleet",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Mars Rover Fleet - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Rovers live on an unbounded grid. A new rover starts at (0,0) facing North.
Headings are N, E, S, W. North is +y, East is +x.

COMMANDS (case-insensitive):
- L: rotate 90 degrees left in place
- R: rotate 90 degrees right in place
- M: move one grid point forward

A command string containing any other character is rejected as a whole and
the rover does not move.

AVAILABLE TOOLS:
- list_rovers: List every rover
- get_rover: Get one rover's position and heading
- create_rover: Create a rover with a unique integer id
- rename_rover: Rename a rover
- move_rover: Apply a command string such as "MRM"`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.NewTool("list_rovers",
		mcp.WithDescription("List all rovers ordered by id"),
	), c.handleListRovers)

	c.mcpServer.AddTool(mcp.NewTool("get_rover",
		mcp.WithDescription("Get a rover's name, position and heading"),
		mcp.WithNumber("rover_id", mcp.Required(), mcp.Description("Rover ID")),
	), c.handleGetRover)

	c.mcpServer.AddTool(mcp.NewTool("create_rover",
		mcp.WithDescription("Create a rover at (0,0) facing North"),
		mcp.WithNumber("rover_id", mcp.Required(), mcp.Description("Unique rover ID")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Rover name")),
	), c.handleCreateRover)

	c.mcpServer.AddTool(mcp.NewTool("rename_rover",
		mcp.WithDescription("Rename an existing rover"),
		mcp.WithNumber("rover_id", mcp.Required(), mcp.Description("Rover ID")),
		mcp.WithString("name", mcp.Required(), mcp.Description("New rover name")),
	), c.handleRenameRover)

	c.mcpServer.AddTool(mcp.NewTool("move_rover",
		mcp.WithDescription("Apply a movement command string made of L, R and M"),
		mcp.WithNumber("rover_id", mcp.Required(), mcp.Description("Rover ID")),
		mcp.WithString("commands", mcp.Required(), mcp.Description(`Commands, e.g. "MRM". Empty string is a no-op`)),
	), c.handleMoveRover)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// HTTPHandler serves single JSON-RPC messages posted to it
func (c *Client) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// Notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func roverPath(id int) string {
	return "/api/rovers/" + url.PathEscape(fmt.Sprint(id))
}

// Tool handlers

func (c *Client) handleListRovers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count  int             `json:"count"`
		Rovers []*engine.Rover `json:"rovers"`
	}

	if err := c.apiCall(ctx, "GET", "/api/rovers", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rovers (%d):\n", response.Count)
	for _, r := range response.Rovers {
		fmt.Fprintf(&b, "- %s\n", formatRover(r))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetRover(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("rover_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var rover engine.Rover
	if err := c.apiCall(ctx, "GET", roverPath(id), nil, &rover); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRover(&rover)), nil
}

func (c *Client) handleCreateRover(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("rover_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{"id": id, "name": name}

	var rover engine.Rover
	if err := c.apiCall(ctx, "POST", "/api/rovers", body, &rover); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Created " + formatRover(&rover)), nil
}

func (c *Client) handleRenameRover(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("rover_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var rover engine.Rover
	if err := c.apiCall(ctx, "PATCH", roverPath(id), map[string]string{"name": name}, &rover); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Renamed " + formatRover(&rover)), nil
}

func (c *Client) handleMoveRover(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("rover_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	commands := request.GetString("commands", "")

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", roverPath(id)+"/move", map[string]string{"commands": commands}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func formatRover(r *engine.Rover) string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("#%d %q at (%d,%d) facing %s", r.ID, r.Name, r.Position.X, r.Position.Y, r.Heading.Name())
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Executed %d command(s)", result.Executed)
	if result.Commands != "" {
		fmt.Fprintf(&b, " %q", result.Commands)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "From: %s\n", result.From)
	fmt.Fprintf(&b, "To:   %s\n", result.To)
	if result.Rover != nil {
		fmt.Fprintf(&b, "Rover: %s\n", formatRover(result.Rover))
	}
	return b.String()
}
