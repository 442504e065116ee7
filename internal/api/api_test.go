package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/astrometa/internal/calibration"
	"github.com/starford/astrometa/internal/indexer"
	"github.com/starford/astrometa/internal/testutil"
)

const (
	lightName = "M31_P02_LIGHT_Ha_2024-01-05T22-13-01_ASI2600MM_300_100_50_-10.fits"
	darkName  = "NA_NA_DARK_NA_2024-01-04T01-00-00_ASI2600MM_300_100_50_-10.fits"
)

func newTestServer(t *testing.T, authEnabled bool, token string) (*httptest.Server, string) {
	t.Helper()
	root := t.TempDir()
	testutil.WriteCapture(t, root, lightName)
	testutil.WriteCapture(t, root, darkName)

	stub := testutil.StubReader{}
	opts := indexer.Options{Recursive: true, ReaderFor: stub.ReaderFor}
	svc := NewService([]string{root}, opts, calibration.DefaultOptions(), testutil.QuietLogger(t))

	srv := httptest.NewServer(NewRouter(svc, authEnabled, token, nil))
	t.Cleanup(srv.Close)
	return srv, root
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestQueryMetadata_All(t *testing.T) {
	srv, _ := newTestServer(t, false, "")

	var result QueryResult
	if code := getJSON(t, srv.URL+"/metadata", &result); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if result.Total != 2 {
		t.Fatalf("Total = %d, want 2", result.Total)
	}
}

func TestQueryMetadata_Filtered(t *testing.T) {
	srv, _ := newTestServer(t, false, "")

	var result QueryResult
	if code := getJSON(t, srv.URL+"/metadata?type=LIGHT", &result); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if result.Total != 1 {
		t.Fatalf("Total = %d, want 1 light", result.Total)
	}
	if got := result.Records[0].Fields.Strings()["targetname"]; got != "M31" {
		t.Fatalf("targetname = %q, want M31", got)
	}
}

func TestQueryMetadata_PipeSeparatedValues(t *testing.T) {
	srv, _ := newTestServer(t, false, "")

	var result QueryResult
	if code := getJSON(t, srv.URL+"/metadata?type=LIGHT%7CDARK", &result); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if result.Total != 2 {
		t.Fatalf("Total = %d, want both frame types", result.Total)
	}
}

func TestGetFile_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, false, "")

	if code := getJSON(t, srv.URL+"/metadata/file?path=/nope.fits", nil); code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
}

func TestGetFile_ReturnsFields(t *testing.T) {
	srv, root := newTestServer(t, false, "")

	var detail FileDetail
	code := getJSON(t, srv.URL+"/metadata/file?path="+root+"/"+lightName, &detail)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if detail.Fields["filter"] != "Ha" {
		t.Fatalf("filter = %q, want Ha", detail.Fields["filter"])
	}
}

func TestCalibration_FindsDark(t *testing.T) {
	srv, root := newTestServer(t, false, "")

	var result CalibrationResult
	code := getJSON(t, srv.URL+"/calibration?light="+root+"/"+lightName, &result)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if result.Matches.Dark != root+"/"+darkName {
		t.Fatalf("Dark = %q, want %q", result.Matches.Dark, root+"/"+darkName)
	}
	if result.Matches.Flat != "" {
		t.Fatalf("Flat = %q, want no match", result.Matches.Flat)
	}
}

func TestCalibration_MissingParam(t *testing.T) {
	srv, _ := newTestServer(t, false, "")

	if code := getJSON(t, srv.URL+"/calibration", nil); code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
}

func TestAuth_RejectsMissingToken(t *testing.T) {
	srv, _ := newTestServer(t, true, "secret")

	if code := getJSON(t, srv.URL+"/metadata", nil); code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", code)
	}
}

func TestAuth_AcceptsBearerToken(t *testing.T) {
	srv, _ := newTestServer(t, true, "secret")

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/metadata", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
