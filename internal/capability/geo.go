package capability

import (
	"context"
	"encoding/json"
	"fmt"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// mapRenderTool is the tool name exposed by the mapping MCP server.
const mapRenderTool = "render_overlay"

// MCPGeoClient implements GeoClient over an MCP stdio server (the mapping
// toolchain runs as a subprocess speaking MCP).
type MCPGeoClient struct {
	client *mcpclient.Client
}

// NewMCPGeoClient launches the MCP server subprocess and performs the
// protocol handshake.
func NewMCPGeoClient(ctx context.Context, command string, env []string, args ...string) (*MCPGeoClient, error) {
	c, err := mcpclient.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("geo: start MCP server: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "urban",
		Version: "1.0.0",
	}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		c.Close()
		return nil, fmt.Errorf("geo: initialize MCP session: %w", err)
	}

	return &MCPGeoClient{client: c}, nil
}

// RenderOverlay sends the overlay config to the mapping tool and returns the
// rendered layer descriptor.
func (g *MCPGeoClient) RenderOverlay(ctx context.Context, config map[string]any) (map[string]any, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = mapRenderTool
	req.Params.Arguments = config

	res, err := g.client.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("geo: call %s: %w", mapRenderTool, err)
	}
	if res.IsError {
		return nil, fmt.Errorf("geo: %s reported an error: %s", mapRenderTool, firstText(res))
	}

	text := firstText(res)
	if text == "" {
		return nil, fmt.Errorf("geo: %s returned no text content", mapRenderTool)
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("geo: decode %s result: %w", mapRenderTool, err)
	}
	return out, nil
}

// Close shuts down the MCP subprocess.
func (g *MCPGeoClient) Close() error {
	return g.client.Close()
}

// firstText returns the first text content block of a tool result.
func firstText(res *mcp.CallToolResult) string {
	for _, content := range res.Content {
		if tc, ok := mcp.AsTextContent(content); ok {
			return tc.Text
		}
	}
	return ""
}
