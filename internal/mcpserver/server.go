// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes promptloom prompts and compositions to LLM clients over stdio or
// streamable HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/promptloom/internal/composer"
	"github.com/starford/promptloom/internal/models"
	"github.com/starford/promptloom/internal/promptservice"
)

const contractURI = "promptloom://library-format"

// Server wraps the MCP server with promptloom tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *promptservice.Service
	logger *slog.Logger
}

// New creates a new MCP server with all promptloom tools registered.
func New(svc *promptservice.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{svc: svc, logger: logger}

	s.mcp = server.NewMCPServer(
		"Promptloom",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_prompts",
		mcp.WithDescription("Full-text search through prompt titles, content and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchPrompts)

	s.mcp.AddTool(mcp.NewTool("list_prompts",
		mcp.WithDescription("List stored prompts, optionally filtered by category id or tag."),
		mcp.WithNumber("categoryId", mcp.Description("Only prompts in this category")),
		mcp.WithString("tag", mcp.Description("Only prompts carrying this exact tag")),
	), s.listPrompts)

	s.mcp.AddTool(mcp.NewTool("get_prompt",
		mcp.WithDescription("Read a stored prompt by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Prompt id")),
	), s.getPrompt)

	s.mcp.AddTool(mcp.NewTool("create_prompt",
		mcp.WithDescription("Store a new prompt. Title needs at least 3 characters and content at least 5."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Prompt title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Prompt text")),
		mcp.WithNumber("categoryId", mcp.Description("Optional category id")),
		mcp.WithArray("tags", mcp.Description("Optional tags"), mcp.Items(map[string]any{"type": "string"})),
	), s.createPrompt)

	s.mcp.AddTool(mcp.NewTool("list_combinations",
		mcp.WithDescription("List saved prompt combinations."),
	), s.listCombinations)

	s.mcp.AddTool(mcp.NewTool("compose",
		mcp.WithDescription("Chain stored prompts in the given order and return the combined text. "+
			"Prompts are joined with a blank line; empty prompts are skipped. "+
			"Pass name to also save the chain as a combination."),
		mcp.WithArray("promptIds", mcp.Required(), mcp.Description("Prompt ids in composed order"),
			mcp.Items(map[string]any{"type": "integer"})),
		mcp.WithString("name", mcp.Description("Save the composition under this name")),
	), s.compose)

	s.mcp.AddTool(mcp.NewTool("combination_text",
		mcp.WithDescription("Return the combined text of a saved combination."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Combination id")),
	), s.combinationText)

	s.mcp.AddTool(mcp.NewTool("get_library_contract",
		mcp.WithDescription("Returns the Markdown format for prompt library files. "+
			"Call this before writing prompt files for the library directory."),
	), s.getLibraryContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Prompt Library Format",
			mcp.WithResourceDescription("Markdown format of prompt files imported from the library directory."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// HTTPHandler returns a streamable HTTP transport for mounting on a router.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchPrompts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit, _, err := intArg(req.GetArguments(), "limit")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, int(limit))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) listPrompts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var f promptservice.PromptFilter
	if id, ok, err := intArg(args, "categoryId"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	} else if ok {
		f.CategoryID = &id
	}
	f.Tag, _ = args["tag"].(string)
	return jsonResult(s.svc.ListPrompts(ctx, f))
}

func (s *Server) getPrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.GetPrompt(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(p)
}

func (s *Server) createPrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := models.PromptInput{Title: title, Content: content}
	args := req.GetArguments()
	if id, ok, err := intArg(args, "categoryId"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	} else if ok {
		in.CategoryID = &id
	}
	if raw, ok := args["tags"].([]any); ok {
		for _, v := range raw {
			if tag, ok := v.(string); ok {
				in.Tags = append(in.Tags, tag)
			}
		}
	}
	p, err := s.svc.CreatePrompt(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(p)
}

func (s *Server) listCombinations(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.ListCombinations(ctx))
}

type composeResult struct {
	Text        string              `json:"text"`
	Characters  int                 `json:"characters"`
	Missing     []int64             `json:"missing,omitempty"`
	Combination *models.Combination `json:"combination,omitempty"`
}

// compose builds a throwaway composition. Unknown ids are reported and
// skipped rather than failing the whole call.
func (s *Server) compose(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := int64sArg(req.GetArguments(), "promptIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(ids) == 0 {
		return mcp.NewToolResultError("promptIds must not be empty"), nil
	}

	comp := composer.New(s.svc, composer.WithLogger(s.logger))
	var res composeResult
	for _, id := range ids {
		p, err := s.svc.GetPrompt(ctx, id)
		if err != nil {
			res.Missing = append(res.Missing, id)
			continue
		}
		if _, err := comp.Add(composer.CandidateFromPrompt(*p)); err != nil {
			s.logger.Warn("compose: skipping prompt", slog.Int64("id", id), slog.String("error", err.Error()))
		}
	}
	res.Text = comp.CombinedText()
	res.Characters = utf8.RuneCountInString(res.Text)

	if name, _ := req.GetArguments()["name"].(string); name != "" {
		saved, err := comp.SaveAs(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res.Combination = saved
	}
	return jsonResult(res)
}

func (s *Server) combinationText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := s.svc.CombinationText(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) getLibraryContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(LibraryFormatContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     LibraryFormatContract,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcpserver: encode result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func requireID(req mcp.CallToolRequest, key string) (int64, error) {
	id, ok, err := intArg(req.GetArguments(), key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("required argument %q not found", key)
	}
	return id, nil
}

// intArg reads a whole number. JSON clients send numbers as float64.
func intArg(args map[string]any, key string) (int64, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	n, err := toInt64(raw)
	if err != nil {
		return 0, false, fmt.Errorf("argument %q: %w", key, err)
	}
	return n, true, nil
}

func int64sArg(args map[string]any, key string) ([]int64, error) {
	raw, ok := args[key].([]any)
	if !ok {
		return nil, fmt.Errorf("argument %q must be an array of integers", key)
	}
	out := make([]int64, 0, len(raw))
	for _, v := range raw {
		n, err := toInt64(v)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", key, err)
		}
		out = append(out, n)
	}
	return out, nil
}

var errNotInteger = errors.New("not an integer")

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, errNotInteger
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case json.Number:
		return n.Int64()
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, errNotInteger
		}
		return id, nil
	default:
		return 0, errNotInteger
	}
}
