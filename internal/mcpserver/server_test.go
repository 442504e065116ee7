package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/astrometa/internal/api"
	"github.com/starford/astrometa/internal/calibration"
	"github.com/starford/astrometa/internal/indexer"
	"github.com/starford/astrometa/internal/testutil"
)

const (
	lightName = "M31_P02_LIGHT_Ha_2024-01-05T22-13-01_ASI2600MM_300_100_50_-10.fits"
	darkName  = "NA_NA_DARK_NA_2024-01-04T01-00-00_ASI2600MM_300_100_50_-10.fits"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()

	root := t.TempDir()
	testutil.WriteCapture(t, root, lightName)
	testutil.WriteCapture(t, root, darkName)

	stub := testutil.StubReader{}
	opts := indexer.Options{ReaderFor: stub.ReaderFor}
	svc := api.NewService([]string{root}, opts, calibration.DefaultOptions(), testutil.QuietLogger(t))

	return New(svc, opts), root
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper; call the handler
	// functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "query_metadata":
		result, err = srv.queryMetadata(ctx, req)
	case "get_file_headers":
		result, err = srv.getFileHeaders(ctx, req)
	case "find_calibration":
		result, err = srv.findCalibration(ctx, req)
	case "suggest_filename":
		result, err = srv.suggestFilename(ctx, req)
	default:
		t.Fatalf("unknown tool %q", name)
	}
	if err != nil {
		t.Fatalf("tool %s returned transport error: %v", name, err)
	}
	return result
}

func textContent(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return tc.Text
}

func TestQueryMetadata_Filtered(t *testing.T) {
	srv, _ := testServer(t)

	res := callTool(t, srv, "query_metadata", map[string]interface{}{
		"criteria": "type=LIGHT",
	})
	if res.IsError {
		t.Fatalf("tool error: %s", textContent(t, res))
	}
	out := textContent(t, res)
	if !strings.Contains(out, `"total": 1`) || !strings.Contains(out, "M31") {
		t.Fatalf("unexpected result: %s", out)
	}
}

func TestSplitCriteria_SpacedValues(t *testing.T) {
	got := splitCriteria("type=Light Frame filter=Ha|OIII targetname=NGC 7000")
	want := []string{"type=Light Frame", "filter=Ha|OIII", "targetname=NGC 7000"}
	if len(got) != len(want) {
		t.Fatalf("got %d pairs %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pair %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestQueryMetadata_SpacedCriterionValue(t *testing.T) {
	srv, _ := testServer(t)

	// A value containing a space must survive tokenization instead of
	// being rejected as a malformed criterion.
	res := callTool(t, srv, "query_metadata", map[string]interface{}{
		"criteria": "targetname=NGC 7000",
	})
	if res.IsError {
		t.Fatalf("tool error: %s", textContent(t, res))
	}
	if out := textContent(t, res); !strings.Contains(out, `"total": 0`) {
		t.Fatalf("unexpected result: %s", out)
	}
}

func TestQueryMetadata_BadCriteria(t *testing.T) {
	srv, _ := testServer(t)

	res := callTool(t, srv, "query_metadata", map[string]interface{}{
		"criteria": "no-equals-sign",
	})
	if !res.IsError {
		t.Fatal("expected tool error for malformed criteria")
	}
}

func TestGetFileHeaders_NotFound(t *testing.T) {
	srv, _ := testServer(t)

	res := callTool(t, srv, "get_file_headers", map[string]interface{}{
		"path": "/nope.fits",
	})
	if !res.IsError {
		t.Fatal("expected tool error for missing file")
	}
}

func TestGetFileHeaders_ReturnsFields(t *testing.T) {
	srv, root := testServer(t)

	res := callTool(t, srv, "get_file_headers", map[string]interface{}{
		"path": root + "/" + lightName,
	})
	if res.IsError {
		t.Fatalf("tool error: %s", textContent(t, res))
	}
	if out := textContent(t, res); !strings.Contains(out, `"filter": "Ha"`) {
		t.Fatalf("fields missing from result: %s", out)
	}
}

func TestFindCalibration_MatchesDark(t *testing.T) {
	srv, root := testServer(t)

	res := callTool(t, srv, "find_calibration", map[string]interface{}{
		"light": root + "/" + lightName,
	})
	if res.IsError {
		t.Fatalf("tool error: %s", textContent(t, res))
	}
	if out := textContent(t, res); !strings.Contains(out, darkName) {
		t.Fatalf("dark match missing: %s", out)
	}
}

func TestSuggestFilename_CanonicalName(t *testing.T) {
	srv, root := testServer(t)

	res := callTool(t, srv, "suggest_filename", map[string]interface{}{
		"path": root + "/" + lightName,
	})
	if res.IsError {
		t.Fatalf("tool error: %s", textContent(t, res))
	}
	if got := textContent(t, res); got != lightName {
		t.Fatalf("suggest_filename = %q, want %q", got, lightName)
	}
}

func TestFilenameFormatResource(t *testing.T) {
	srv, _ := testServer(t)

	contents, err := srv.readFilenameFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected contents type %T", contents[0])
	}
	if !strings.Contains(tc.Text, "NA") || !strings.Contains(tc.Text, "targetname") {
		t.Fatal("contract text incomplete")
	}
}
