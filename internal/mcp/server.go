// Package mcp exposes the show pipeline as MCP tools over stdio, so an
// embedding agent can put files, URLs and datasets on screen.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/openrend/rend/internal/config"
	"github.com/openrend/rend/internal/location"
	"github.com/openrend/rend/internal/render"
	"github.com/openrend/rend/internal/table"
)

const (
	ServerName    = "rend"
	ServerVersion = "0.1.0"
)

// Server is the MCP server wrapping a render manager.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config
	manager   *render.Manager
}

func NewServer(cfg *config.Config, manager *render.Manager) *Server {
	s := &Server{
		config:  cfg,
		manager: manager,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "show",
		Description: "Display a file path or URL in the right native viewer for its content kind, positioned on the requested display. PDFs open in the scripted PDF viewer with optional page navigation; web content reuses a matching browser window when one exists. Returns the resolved page for paged content.",
	}, s.handleShow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "show_all",
		Description: "Display several references at once. Web locations are grouped into a single browser window with one tab per URL, matched order-sensitively against existing windows.",
	}, s.handleShowAll)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "render_table",
		Description: "Render an inline dataset as a table through the local rendering server and open it in the browser. The server is started on first use and reused afterwards, so repeated renders reuse the same browser tab URL space.",
	}, s.handleRenderTable)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_config",
		Description: "Echo the resolved display-geometry configuration and viewer defaults, for validating the active config file.",
	}, s.handleGetConfig)
}

func (s *Server) handleShow(ctx context.Context, _ *mcpsdk.CallToolRequest, args ShowInput) (*mcpsdk.CallToolResult, ShowOutput, error) {
	opts := render.Options{
		Display:          args.Display,
		Width:            args.Width,
		Height:           args.Height,
		Page:             args.Page,
		UpdatePage:       args.UpdatePage,
		Refresh:          args.Refresh,
		AlwaysReposition: args.AlwaysReposition,
	}
	switch args.Kind {
	case "":
	case "file":
		kind := location.KindFile
		opts.KindHint = &kind
	case "url":
		kind := location.KindURL
		opts.KindHint = &kind
	default:
		return nil, ShowOutput{}, fmt.Errorf("unknown location kind %q (want file or url)", args.Kind)
	}

	page, err := s.manager.Show(ctx, args.Ref, opts)
	if err != nil {
		return nil, ShowOutput{}, err
	}
	return nil, ShowOutput{Ref: args.Ref, Page: page}, nil
}

func (s *Server) handleShowAll(ctx context.Context, _ *mcpsdk.CallToolRequest, args ShowAllInput) (*mcpsdk.CallToolResult, ShowAllOutput, error) {
	if len(args.Refs) == 0 {
		return nil, ShowAllOutput{}, fmt.Errorf("refs must not be empty")
	}
	opts := render.Options{
		Display: args.Display,
		Width:   args.Width,
		Height:  args.Height,
	}
	if err := s.manager.ShowAll(ctx, args.Refs, opts); err != nil {
		return nil, ShowAllOutput{}, err
	}
	return nil, ShowAllOutput{Shown: len(args.Refs)}, nil
}

func (s *Server) handleRenderTable(ctx context.Context, _ *mcpsdk.CallToolRequest, args RenderTableInput) (*mcpsdk.CallToolResult, RenderTableOutput, error) {
	if len(args.Columns) == 0 {
		return nil, RenderTableOutput{}, fmt.Errorf("columns must not be empty")
	}
	frame := &table.Frame{
		Name:    args.Title,
		Columns: args.Columns,
		Rows:    args.Rows,
	}
	src := table.NewCachedFrameSource(frame, args.Title)
	opts := render.Options{Display: args.Display}
	if err := s.manager.ShowFrame(ctx, src, opts); err != nil {
		return nil, RenderTableOutput{}, err
	}
	return nil, RenderTableOutput{Rows: len(args.Rows)}, nil
}

func (s *Server) handleGetConfig(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetConfigInput) (*mcpsdk.CallToolResult, GetConfigOutput, error) {
	out := GetConfigOutput{
		DefaultDisplay: s.config.DefaultDisplay,
		WebExtensions:  s.config.Viewer.WebExtensions,
		UpdatePage:     s.config.Viewer.UpdatePage,
	}
	for _, d := range s.config.Displays {
		out.Displays = append(out.Displays, DisplayInfo{
			Index:  d.Index,
			X:      d.X,
			Y:      d.Y,
			Width:  d.Width,
			Height: d.Height,
		})
	}
	return nil, out, nil
}
