package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/promptloom/internal/models"
	"github.com/starford/promptloom/internal/promptservice"
	"github.com/starford/promptloom/internal/testutil"
)

func testServer(t *testing.T) (*Server, *promptservice.Service) {
	t.Helper()
	svc, _ := testutil.Service(t, false)
	return New(svc, testutil.Logger()), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_prompts":
		result, err = srv.searchPrompts(ctx, req)
	case "list_prompts":
		result, err = srv.listPrompts(ctx, req)
	case "get_prompt":
		result, err = srv.getPrompt(ctx, req)
	case "create_prompt":
		result, err = srv.createPrompt(ctx, req)
	case "list_combinations":
		result, err = srv.listCombinations(ctx, req)
	case "compose":
		result, err = srv.compose(ctx, req)
	case "combination_text":
		result, err = srv.combinationText(ctx, req)
	case "get_library_contract":
		result, err = srv.getLibraryContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func seedPrompts(t *testing.T, svc *promptservice.Service, contents ...string) []int64 {
	t.Helper()
	var ids []int64
	for i, c := range contents {
		p, err := svc.CreatePrompt(context.Background(), models.PromptInput{
			Title:   "Prompt " + string(rune('A'+i)),
			Content: c,
			Tags:    []string{"seeded"},
		})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, p.ID)
	}
	return ids
}

func TestCreateAndGetPrompt(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_prompt", map[string]any{
		"title":   "Translate",
		"content": "Translate into French.",
		"tags":    []any{"i18n"},
	})
	if r.IsError {
		t.Fatalf("create failed: %s", resultText(r))
	}
	var created models.Prompt
	if err := json.Unmarshal([]byte(resultText(r)), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == 0 || len(created.Tags) != 1 {
		t.Errorf("created = %+v", created)
	}

	r = callTool(t, srv, "get_prompt", map[string]any{"id": float64(created.ID)})
	if !strings.Contains(resultText(r), "Translate into French.") {
		t.Errorf("get result = %q", resultText(r))
	}
}

func TestCreatePromptValidation(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_prompt", map[string]any{"title": "ab", "content": "abc"})
	if !r.IsError {
		t.Error("expected validation error")
	}
}

func TestGetPromptMissing(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "get_prompt", map[string]any{"id": float64(99)})
	if !r.IsError || resultText(r) != "Prompt not found" {
		t.Errorf("missing prompt = %q (error %v)", resultText(r), r.IsError)
	}
	r = callTool(t, srv, "get_prompt", map[string]any{"id": 1.5})
	if !r.IsError {
		t.Error("expected error for fractional id")
	}
	r = callTool(t, srv, "get_prompt", map[string]any{})
	if !r.IsError {
		t.Error("expected error for missing id")
	}
}

func TestListAndSearchPrompts(t *testing.T) {
	srv, svc := testServer(t)
	seedPrompts(t, svc, "Explain recursion simply", "Draft a haiku about rain")

	r := callTool(t, srv, "list_prompts", map[string]any{"tag": "seeded"})
	var listed []models.Prompt
	if err := json.Unmarshal([]byte(resultText(r)), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 2 {
		t.Errorf("listed %d prompts, want 2", len(listed))
	}

	r = callTool(t, srv, "search_prompts", map[string]any{"query": "haiku"})
	if !strings.Contains(resultText(r), "Prompt B") {
		t.Errorf("search result = %q", resultText(r))
	}
}

func TestCompose(t *testing.T) {
	srv, svc := testServer(t)
	ids := seedPrompts(t, svc, "first block", "second block")

	r := callTool(t, srv, "compose", map[string]any{
		"promptIds": []any{float64(ids[1]), float64(ids[0]), float64(404)},
	})
	if r.IsError {
		t.Fatalf("compose failed: %s", resultText(r))
	}
	var res composeResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatal(err)
	}
	if res.Text != "second block\n\nfirst block" {
		t.Errorf("text = %q", res.Text)
	}
	if len(res.Missing) != 1 || res.Missing[0] != 404 {
		t.Errorf("missing = %v", res.Missing)
	}
	if res.Combination != nil {
		t.Error("compose without name must not save")
	}
	if got := svc.ListCombinations(context.Background()); len(got) != 0 {
		t.Errorf("combinations = %+v", got)
	}
}

func TestComposeCountsCharacters(t *testing.T) {
	srv, svc := testServer(t)
	ids := seedPrompts(t, svc, "café crème")

	r := callTool(t, srv, "compose", map[string]any{"promptIds": []any{float64(ids[0])}})
	if r.IsError {
		t.Fatalf("compose failed: %s", resultText(r))
	}
	var res composeResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatal(err)
	}
	if res.Characters != 10 {
		t.Errorf("characters = %d, want 10", res.Characters)
	}
}

func TestComposeAndSave(t *testing.T) {
	srv, svc := testServer(t)
	ids := seedPrompts(t, svc, "first block", "second block")

	r := callTool(t, srv, "compose", map[string]any{
		"promptIds": []any{float64(ids[0]), float64(ids[1])},
		"name":      "Pair",
	})
	if r.IsError {
		t.Fatalf("compose failed: %s", resultText(r))
	}

	r = callTool(t, srv, "list_combinations", map[string]any{})
	var combos []models.Combination
	if err := json.Unmarshal([]byte(resultText(r)), &combos); err != nil {
		t.Fatal(err)
	}
	if len(combos) != 1 || combos[0].Name != "Pair" {
		t.Fatalf("combinations = %+v", combos)
	}

	r = callTool(t, srv, "combination_text", map[string]any{"id": float64(combos[0].ID)})
	if resultText(r) != "first block\n\nsecond block" {
		t.Errorf("combination text = %q", resultText(r))
	}
}

func TestComposeRejectsBadArguments(t *testing.T) {
	srv, _ := testServer(t)

	for _, args := range []map[string]any{
		{},
		{"promptIds": []any{}},
		{"promptIds": []any{"x"}},
		{"promptIds": []any{float64(404)}, "name": "Nothing"},
	} {
		if r := callTool(t, srv, "compose", args); !r.IsError {
			t.Errorf("compose(%v) should fail", args)
		}
	}
}

func TestLibraryContract(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "get_library_contract", map[string]any{})
	if !strings.Contains(resultText(r), "frontmatter") {
		t.Error("contract text missing")
	}

	contents, err := srv.readContractResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if tc, ok := contents[0].(mcp.TextResourceContents); !ok || tc.URI != contractURI {
		t.Errorf("resource = %+v", contents)
	}
}
