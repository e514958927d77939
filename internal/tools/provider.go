package tools

import (
	"context"

	"github.com/szaher/finsight/internal/mcp"
)

// mcpProvider adapts an MCP client connection to the Provider interface.
type mcpProvider struct {
	client *mcp.Client
}

// FromMCP wraps a connected MCP client as a tool provider.
func FromMCP(client *mcp.Client) Provider {
	return &mcpProvider{client: client}
}

func (p *mcpProvider) Name() string { return p.client.Name() }

func (p *mcpProvider) ListTools(ctx context.Context) ([]Descriptor, error) {
	infos, err := p.client.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	descs := make([]Descriptor, len(infos))
	for i, t := range infos {
		descs[i] = Descriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
			Title:       t.Title,
		}
	}
	return descs, nil
}

func (p *mcpProvider) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	return p.client.CallTool(ctx, name, args)
}
