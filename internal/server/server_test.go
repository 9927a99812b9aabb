package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Ning0612/nasbrowser/internal/adapter/local"
	"github.com/Ning0612/nasbrowser/internal/domain"
	"github.com/Ning0612/nasbrowser/internal/service"
	"github.com/Ning0612/nasbrowser/internal/testutil"
)

func newTestServer(t *testing.T, opts Options) (*httptest.Server, string) {
	t.Helper()

	root := testutil.TempDir(t)
	store, err := local.New(root, nil)
	if err != nil {
		t.Fatalf("local.New() error = %v", err)
	}
	browser, err := service.NewBrowser(store, "")
	if err != nil {
		t.Fatalf("NewBrowser() error = %v", err)
	}
	srv, err := New(browser, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	// redirects are asserted, not followed
	ts.Client().CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return ts, root
}

func get(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()

	resp, err := ts.Client().Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func post(t *testing.T, ts *httptest.Server, path, contentType string, body io.Reader) *http.Response {
	t.Helper()

	resp, err := ts.Client().Post(ts.URL+path, contentType, body)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
}

func multipartBody(t *testing.T, files map[string]string, order ...string) (string, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for _, name := range order {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		fw.Write([]byte(files[name]))
	}
	mw.Close()
	return mw.FormDataContentType(), buf
}

func TestIndexRedirects(t *testing.T) {
	ts, _ := newTestServer(t, Options{})

	resp := get(t, ts, "/")
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/browse/" {
		t.Fatalf("GET / = %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, Options{})

	resp := get(t, ts, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /healthz = %d", resp.StatusCode)
	}
	if resp.Header.Get(headerRequestID) == "" {
		t.Error("response has no request id")
	}
}

func TestBrowse(t *testing.T) {
	ts, root := newTestServer(t, Options{})
	testutil.CreateTestFile(t, root, "B/c.mp3", []byte("mp3"))
	testutil.CreateTestFile(t, root, "a.TXT", []byte("hello"))

	resp := get(t, ts, "/browse/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /browse/ = %d", resp.StatusCode)
	}

	var listing domain.Listing
	decode(t, resp, &listing)

	if len(listing.Folders) != 1 || listing.Folders[0].Name != "B" {
		t.Errorf("folders = %+v", listing.Folders)
	}
	if len(listing.Files) != 1 || listing.Files[0].Name != "a.TXT" || listing.Files[0].SizeFormatted != "5 B" {
		t.Errorf("files = %+v", listing.Files)
	}
	if len(listing.Breadcrumbs) != 1 || listing.Breadcrumbs[0].Label != "Root" {
		t.Errorf("breadcrumbs = %+v", listing.Breadcrumbs)
	}

	sub := get(t, ts, "/browse/B")
	var subListing domain.Listing
	decode(t, sub, &subListing)
	if subListing.Path != "B" || len(subListing.Files) != 1 || subListing.Files[0].Category != domain.CategoryAudio {
		t.Errorf("sub listing = %+v", subListing)
	}
}

func TestBrowse_FileRedirectsToDownload(t *testing.T) {
	ts, root := newTestServer(t, Options{})
	testutil.CreateTestFile(t, root, "my docs/a b.txt", []byte("x"))

	resp := get(t, ts, "/browse/my%20docs/a%20b.txt")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/download/my%20docs/a%20b.txt" {
		t.Errorf("Location = %q", loc)
	}
}

func TestBrowse_Errors(t *testing.T) {
	ts, _ := newTestServer(t, Options{})

	tests := []struct {
		path string
		want int
	}{
		{"/browse/x/../../etc", http.StatusForbidden},
		{"/browse/..%2F..%2Fetc", http.StatusForbidden},
		{"/browse/missing", http.StatusNotFound},
		{"/nowhere", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := get(t, ts, tt.path)
			if resp.StatusCode != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.path, resp.StatusCode, tt.want)
			}
		})
	}
}

func TestDownload(t *testing.T) {
	ts, root := newTestServer(t, Options{})
	testutil.CreateTestFile(t, root, "docs/報告.pdf", []byte("%PDF-1.7"))
	testutil.CreateTestDir(t, root, "empty")

	resp := get(t, ts, "/download/docs/"+url.PathEscape("報告.pdf"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "%PDF-1.7" {
		t.Errorf("body = %q", body)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") || !strings.Contains(cd, url.PathEscape("報告.pdf")) {
		t.Errorf("Content-Disposition = %q", cd)
	}

	if resp := get(t, ts, "/download/empty"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("download folder = %d, want 404", resp.StatusCode)
	}
	if resp := get(t, ts, "/download/../etc/passwd"); resp.StatusCode != http.StatusForbidden {
		t.Errorf("download traversal = %d, want 403", resp.StatusCode)
	}
}

func TestUpload(t *testing.T) {
	ts, root := newTestServer(t, Options{})
	testutil.CreateTestFile(t, root, "a.txt", []byte("0123456789"))

	ct, body := multipartBody(t, map[string]string{"a.txt": "fresh"}, "a.txt")
	resp := post(t, ts, "/upload/", ct, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got uploadResponse
	decode(t, resp, &got)
	if got.Uploaded != 1 || got.Files[0] != "a_1.txt" {
		t.Errorf("response = %+v", got)
	}
	if data := testutil.ReadFile(t, root, "a.txt"); string(data) != "0123456789" {
		t.Errorf("original overwritten: %q", data)
	}
}

func TestUpload_Errors(t *testing.T) {
	ts, root := newTestServer(t, Options{})
	testutil.CreateTestFile(t, root, "a.txt", []byte("x"))

	t.Run("missing target", func(t *testing.T) {
		ct, body := multipartBody(t, map[string]string{"b.txt": "b"}, "b.txt")
		if resp := post(t, ts, "/upload/nope", ct, body); resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("traversal", func(t *testing.T) {
		ct, body := multipartBody(t, map[string]string{"b.txt": "b"}, "b.txt")
		if resp := post(t, ts, "/upload/x/../../etc", ct, body); resp.StatusCode != http.StatusForbidden {
			t.Errorf("status = %d, want 403", resp.StatusCode)
		}
	})

	t.Run("nothing selected", func(t *testing.T) {
		buf := &bytes.Buffer{}
		mw := multipart.NewWriter(buf)
		mw.WriteField("files", "")
		mw.Close()
		if resp := post(t, ts, "/upload/", mw.FormDataContentType(), buf); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("not multipart", func(t *testing.T) {
		if resp := post(t, ts, "/upload/", "text/plain", strings.NewReader("x")); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	testutil.AssertNotExists(t, root, "nope")
	testutil.AssertNotExists(t, root, "b.txt")
}

func TestUpload_TooLarge(t *testing.T) {
	ts, root := newTestServer(t, Options{MaxUploadBytes: 1024})

	ct, body := multipartBody(t, map[string]string{"big.bin": strings.Repeat("x", 4096)}, "big.bin")
	resp := post(t, ts, "/upload/", ct, body)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
	testutil.AssertNotExists(t, root, "big.bin")
}

func TestCreateFolder(t *testing.T) {
	ts, root := newTestServer(t, Options{})
	testutil.CreateTestDir(t, root, "docs")

	form := url.Values{"folder_name": {"New: Folder"}}
	resp := post(t, ts, "/create-folder/docs", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got createFolderResponse
	decode(t, resp, &got)
	if got.Name != "New Folder" || got.Path != "docs/New Folder" {
		t.Errorf("response = %+v", got)
	}
	testutil.AssertExists(t, root, "docs/New Folder")

	jsonResp := post(t, ts, "/create-folder/", "application/json", strings.NewReader(`{"folder_name":"照片"}`))
	if jsonResp.StatusCode != http.StatusCreated {
		t.Fatalf("json status = %d", jsonResp.StatusCode)
	}
	testutil.AssertExists(t, root, "照片")
}

func TestCreateFolder_Errors(t *testing.T) {
	ts, root := newTestServer(t, Options{})
	testutil.CreateTestDir(t, root, "existing")

	tests := []struct {
		name    string
		subpath string
		folder  string
		want    int
	}{
		{"exists", "", "existing", http.StatusConflict},
		{"blank", "", "  ", http.StatusBadRequest},
		{"invalid", "", "***", http.StatusBadRequest},
		{"missing parent", "nope", "x", http.StatusNotFound},
		{"traversal", "x/../../etc", "x", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"folder_name": {tt.folder}}
			resp := post(t, ts, "/create-folder/"+tt.subpath, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}

	if resp := post(t, ts, "/create-folder/", "application/json", strings.NewReader("{")); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed json status = %d, want 400", resp.StatusCode)
	}
}

func TestDelete(t *testing.T) {
	ts, root := newTestServer(t, Options{})
	testutil.CreateTestFile(t, root, "docs/sub/a.txt", []byte("x"))

	resp := post(t, ts, "/delete/docs/sub/a.txt", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got deleteResponse
	decode(t, resp, &got)
	if got.Deleted != "file" || got.Parent != "docs/sub" {
		t.Errorf("response = %+v", got)
	}

	resp = post(t, ts, "/delete/docs", "", nil)
	decode(t, resp, &got)
	if got.Deleted != "folder" || got.Parent != "" {
		t.Errorf("response = %+v", got)
	}
	testutil.AssertNotExists(t, root, "docs")
}

func TestDelete_Errors(t *testing.T) {
	ts, root := newTestServer(t, Options{})
	testutil.CreateTestDir(t, root, "keep")

	tests := []struct {
		path string
		want int
	}{
		{"/delete/missing", http.StatusNotFound},
		{"/delete/", http.StatusForbidden},
		{"/delete/keep/..", http.StatusForbidden},
		{"/delete/x/../../etc", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if resp := post(t, ts, tt.path, "", nil); resp.StatusCode != tt.want {
				t.Errorf("POST %s = %d, want %d", tt.path, resp.StatusCode, tt.want)
			}
		})
	}

	if resp := get(t, ts, "/delete/keep"); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /delete = %d, want 405", resp.StatusCode)
	}
	testutil.AssertExists(t, root, "keep")
}

func TestLinkEscapesAreForbidden(t *testing.T) {
	ts, root := newTestServer(t, Options{})
	outside := testutil.TempDir(t)
	testutil.CreateTestFile(t, outside, "secret.txt", []byte("TOPSECRET"))
	testutil.Symlink(t, outside, root, "link")

	if resp := get(t, ts, "/browse/nope/../link"); resp.StatusCode != http.StatusForbidden {
		t.Errorf("GET browse = %d, want 403", resp.StatusCode)
	}
	if resp := get(t, ts, "/download/nope/../link/secret.txt"); resp.StatusCode != http.StatusForbidden {
		t.Errorf("GET download = %d, want 403", resp.StatusCode)
	}
	if resp := post(t, ts, "/delete/nope/../link/secret.txt", "", nil); resp.StatusCode != http.StatusForbidden {
		t.Errorf("POST delete = %d, want 403", resp.StatusCode)
	}

	if got := testutil.ReadFile(t, outside, "secret.txt"); string(got) != "TOPSECRET" {
		t.Errorf("outside file content = %q", got)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	ts, _ := newTestServer(t, Options{})
	const id = "6f1c1f36-4d3b-4c2a-9b8e-0a1b2c3d4e5f"

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(headerRequestID, id)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get(headerRequestID); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}

	req.Header.Set(headerRequestID, "not-a-uuid")
	resp, err = ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get(headerRequestID); got == "not-a-uuid" || got == "" {
		t.Errorf("malformed request id kept: %q", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrUnsafePath, http.StatusForbidden},
		{domain.ErrPermissionDenied, http.StatusForbidden},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrTargetMissing, http.StatusNotFound},
		{domain.ErrNotFile, http.StatusNotFound},
		{domain.ErrNameEmpty, http.StatusBadRequest},
		{domain.ErrInvalidName, http.StatusBadRequest},
		{domain.ErrNothingSelected, http.StatusBadRequest},
		{domain.ErrAlreadyExists, http.StatusConflict},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestParentOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a.txt", ""},
		{"docs/a.txt", "docs"},
		{"docs/sub/", "docs"},
		{"x/../a.txt", ""},
		{`docs\sub\a`, "docs/sub"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := parentOf(tt.in); got != tt.want {
			t.Errorf("parentOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapePath(t *testing.T) {
	if got := escapePath("my docs/a#1.txt"); got != "my%20docs/a%231.txt" {
		t.Errorf("escapePath() = %q", got)
	}
}

func TestContentType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	content := bytes.NewReader(png)
	if got := contentType("scan", content); got != "image/png" {
		t.Errorf("contentType(no extension) = %q, want image/png", got)
	}
	if pos, _ := content.Seek(0, io.SeekCurrent); pos != 0 {
		t.Errorf("content not rewound, offset %d", pos)
	}

	if got := contentType("report.pdf", bytes.NewReader(png)); got != "application/pdf" {
		t.Errorf("contentType(.pdf) = %q, want extension to win", got)
	}
}
