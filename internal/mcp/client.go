// Package mcp wraps MCP client connections to the tool servers finsight
// draws on (web search, financial data, or anything else that speaks MCP).
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerConfig holds the configuration for connecting to an MCP server.
type ServerConfig struct {
	Name      string   `json:"name" yaml:"name"`
	Transport string   `json:"transport" yaml:"transport"` // "stdio"
	Command   string   `json:"command" yaml:"command"`
	Args      []string `json:"args" yaml:"args"`
	URL       string   `json:"url,omitempty" yaml:"url,omitempty"`
}

// ToolInfo describes a tool advertised by an MCP server.
type ToolInfo struct {
	ServerName  string         `json:"server_name"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Title       string         `json:"title,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

// Client wraps the MCP SDK client for a single server connection.
type Client struct {
	config  ServerConfig
	client  *mcpsdk.Client
	session *mcpsdk.ClientSession
}

// NewClient creates a new MCP client for the given server config.
func NewClient(config ServerConfig) *Client {
	return &Client{config: config}
}

// Name returns the configured server name.
func (c *Client) Name() string { return c.config.Name }

// Connect establishes a connection to the MCP server.
func (c *Client) Connect(ctx context.Context) error {
	impl := &mcpsdk.Implementation{
		Name:    "finsight",
		Version: "0.1.0",
	}
	c.client = mcpsdk.NewClient(impl, nil)

	switch c.config.Transport {
	case "stdio", "":
		cmd := exec.CommandContext(ctx, c.config.Command, c.config.Args...)
		transport := &mcpsdk.CommandTransport{
			Command: cmd,
		}
		session, err := c.client.Connect(ctx, transport, nil)
		if err != nil {
			return fmt.Errorf("mcp connect to %s: %w", c.config.Name, err)
		}
		c.session = session
	default:
		return fmt.Errorf("unsupported MCP transport: %s", c.config.Transport)
	}

	return nil
}

// ListTools returns all tools available on this server.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	if c.session == nil {
		return nil, fmt.Errorf("mcp client %s not connected", c.config.Name)
	}

	var tools []ToolInfo
	for tool, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("mcp list tools from %s: %w", c.config.Name, err)
		}
		schema := schemaToMap(tool.InputSchema)
		tools = append(tools, ToolInfo{
			ServerName:  c.config.Name,
			Name:        tool.Name,
			Description: tool.Description,
			Title:       tool.Title,
			InputSchema: schema,
		})
	}

	return tools, nil
}

// schemaToMap round-trips the SDK's schema through JSON into the generic
// map form the model clients expect. A nil or unmarshalable schema yields
// a bare object schema.
func schemaToMap(schema any) map[string]any {
	fallback := map[string]any{"type": "object"}
	if schema == nil {
		return fallback
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return fallback
	}
	out := make(map[string]any)
	if err := json.Unmarshal(raw, &out); err != nil || len(out) == 0 {
		return fallback
	}
	return out
}

// CallTool invokes a tool on the MCP server and returns its text content.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	if c.session == nil {
		return "", fmt.Errorf("mcp client %s not connected", c.config.Name)
	}

	result, err := c.session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return "", fmt.Errorf("mcp call tool %s: %w", name, err)
	}

	var text string
	for _, content := range result.Content {
		if tc, ok := content.(*mcpsdk.TextContent); ok {
			if text != "" {
				text += "\n"
			}
			text += tc.Text
		}
	}

	if result.IsError {
		return "", fmt.Errorf("mcp tool %s: %s", name, text)
	}

	return text, nil
}

// Close gracefully closes the MCP connection.
func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}
