package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joelkehle/trial-navigator/internal/navigator"
	"github.com/joelkehle/trial-navigator/internal/session"
	"github.com/joelkehle/trial-navigator/internal/trials"
)

// stubRunner stands in for the pipeline: it records the disease it was
// asked about and stamps a recognizable result onto the state.
type stubRunner struct {
	diseases []string
}

func (r *stubRunner) Run(ctx context.Context, state *navigator.State) *navigator.State {
	r.diseases = append(r.diseases, state.Disease)
	state.Studies = []trials.Study{
		{NCTID: "NCT11111111", BriefTitle: "Stub Trial", Status: trials.StatusRecruiting},
	}
	state.TotalCount = 1
	state.SimplifiedCriteria = "Stub criteria summary."
	state.Messages = append(state.Messages, navigator.Message{
		Role:    navigator.RoleAssistant,
		Content: fmt.Sprintf("Found 1 recruiting trials for %s.", state.Disease),
	})
	return state
}

func newServerForTest() (http.Handler, *stubRunner, *session.Store) {
	runner := &stubRunner{}
	store := session.NewStore(0)
	return NewServer(runner, store), runner, store
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(blob)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rr.Body.String())
	}
	return out
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := doJSON(t, h, http.MethodPost, "/v1/sessions", nil)
	if rr.Code != 200 {
		t.Fatalf("create session: %d %s", rr.Code, rr.Body.String())
	}
	id, _ := decodeMap(t, rr)["session_id"].(string)
	if id == "" {
		t.Fatal("missing session_id")
	}
	return id
}

func TestCreateAndGetSession(t *testing.T) {
	h, _, _ := newServerForTest()
	id := createSession(t, h)

	rr := doJSON(t, h, http.MethodGet, "/v1/sessions/"+id, nil)
	if rr.Code != 200 {
		t.Fatalf("get session: %d", rr.Code)
	}
	payload := decodeMap(t, rr)
	if payload["session_id"] != id {
		t.Fatalf("payload %v", payload)
	}
	if payload["state"] == nil {
		t.Fatal("missing state")
	}
}

func TestListSessions(t *testing.T) {
	h, _, _ := newServerForTest()
	a := createSession(t, h)
	b := createSession(t, h)

	rr := doJSON(t, h, http.MethodGet, "/v1/sessions", nil)
	payload := decodeMap(t, rr)
	ids, _ := payload["sessions"].([]any)
	if len(ids) != 2 {
		t.Fatalf("sessions %v", payload)
	}
	found := map[string]bool{}
	for _, v := range ids {
		found[v.(string)] = true
	}
	if !found[a] || !found[b] {
		t.Fatalf("sessions %v", ids)
	}
}

func TestSessionNotFound(t *testing.T) {
	h, _, _ := newServerForTest()
	rr := doJSON(t, h, http.MethodGet, "/v1/sessions/unknown-id", nil)
	if rr.Code != 404 {
		t.Fatalf("code %d", rr.Code)
	}
	payload := decodeMap(t, rr)
	if payload["ok"] != false {
		t.Fatalf("payload %v", payload)
	}
}

func TestDeleteSession(t *testing.T) {
	h, _, _ := newServerForTest()
	id := createSession(t, h)

	rr := doJSON(t, h, http.MethodDelete, "/v1/sessions/"+id, nil)
	if rr.Code != 200 {
		t.Fatalf("delete: %d", rr.Code)
	}
	rr = doJSON(t, h, http.MethodGet, "/v1/sessions/"+id, nil)
	if rr.Code != 404 {
		t.Fatalf("get after delete: %d", rr.Code)
	}
}

func TestChatRunsPipeline(t *testing.T) {
	h, runner, store := newServerForTest()
	id := createSession(t, h)

	rr := doJSON(t, h, http.MethodPost, "/v1/sessions/"+id+"/chat", map[string]any{
		"message": "breast cancer",
	})
	if rr.Code != 200 {
		t.Fatalf("chat: %d %s", rr.Code, rr.Body.String())
	}
	if len(runner.diseases) != 1 || runner.diseases[0] != "breast cancer" {
		t.Fatalf("runner calls %v", runner.diseases)
	}

	sess, err := store.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if sess.State.Disease != "breast cancer" {
		t.Fatalf("disease %q", sess.State.Disease)
	}
	if len(sess.State.Messages) != 2 {
		t.Fatalf("messages %v", sess.State.Messages)
	}
	if sess.State.Messages[0].Role != navigator.RoleUser {
		t.Fatal("first transcript entry should be the user turn")
	}
}

func TestChatWithInlineProfile(t *testing.T) {
	h, _, store := newServerForTest()
	id := createSession(t, h)

	rr := doJSON(t, h, http.MethodPost, "/v1/sessions/"+id+"/chat", map[string]any{
		"message": "diabetes",
		"profile": map[string]any{
			"age":               62,
			"gender":            "Male",
			"location":          "Chicago",
			"risk_tolerance":    "low",
			"travel_preference": "local",
		},
	})
	if rr.Code != 200 {
		t.Fatalf("chat: %d", rr.Code)
	}
	sess, _ := store.Get(id)
	if sess.State.Profile == nil || sess.State.Profile.Age != 62 || sess.State.Profile.Location != "Chicago" {
		t.Fatalf("profile %+v", sess.State.Profile)
	}
}

func TestChatValidation(t *testing.T) {
	h, runner, _ := newServerForTest()
	id := createSession(t, h)

	rr := doJSON(t, h, http.MethodPost, "/v1/sessions/"+id+"/chat", map[string]any{"message": "  "})
	if rr.Code != 400 {
		t.Fatalf("blank message: %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+id+"/chat", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != 400 {
		t.Fatalf("malformed json: %d", rec.Code)
	}
	if len(runner.diseases) != 0 {
		t.Fatal("pipeline must not run on invalid input")
	}
}

func TestPutProfile(t *testing.T) {
	h, _, store := newServerForTest()
	id := createSession(t, h)

	rr := doJSON(t, h, http.MethodPut, "/v1/sessions/"+id+"/profile", map[string]any{
		"age":      45,
		"gender":   "Female",
		"location": "Boston",
	})
	if rr.Code != 200 {
		t.Fatalf("profile: %d %s", rr.Code, rr.Body.String())
	}
	sess, _ := store.Get(id)
	if sess.State.Profile == nil || sess.State.Profile.Gender != navigator.GenderFemale {
		t.Fatalf("profile %+v", sess.State.Profile)
	}

	rr = doJSON(t, h, http.MethodPut, "/v1/sessions/"+id+"/profile", map[string]any{"age": -1})
	if rr.Code != 400 {
		t.Fatalf("negative age: %d", rr.Code)
	}
}

func TestReportMarkdownAndHTML(t *testing.T) {
	h, _, _ := newServerForTest()
	id := createSession(t, h)
	doJSON(t, h, http.MethodPost, "/v1/sessions/"+id+"/chat", map[string]any{"message": "melanoma"})

	rr := doJSON(t, h, http.MethodGet, "/v1/sessions/"+id+"/report", nil)
	if rr.Code != 200 {
		t.Fatalf("report: %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Fatalf("content type %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "# Trial Navigator Report") {
		t.Fatalf("body %q", rr.Body.String())
	}

	rr = doJSON(t, h, http.MethodGet, "/v1/sessions/"+id+"/report?format=html", nil)
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "<h1") {
		t.Fatalf("html body %q", rr.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _, _ := newServerForTest()
	id := createSession(t, h)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodDelete, "/v1/sessions"},
		{http.MethodGet, "/v1/sessions/" + id + "/chat"},
		{http.MethodPost, "/v1/sessions/" + id + "/profile"},
		{http.MethodPost, "/v1/sessions/" + id + "/report"},
		{http.MethodPost, "/v1/health"},
	} {
		rr := doJSON(t, h, tc.method, tc.path, nil)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: %d", tc.method, tc.path, rr.Code)
		}
	}
}

func TestUnknownSubresource(t *testing.T) {
	h, _, _ := newServerForTest()
	id := createSession(t, h)
	rr := doJSON(t, h, http.MethodGet, "/v1/sessions/"+id+"/bogus", nil)
	if rr.Code != 404 {
		t.Fatalf("code %d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	h, _, _ := newServerForTest()
	createSession(t, h)
	rr := doJSON(t, h, http.MethodGet, "/v1/health", nil)
	if rr.Code != 200 {
		t.Fatalf("health: %d", rr.Code)
	}
	payload := decodeMap(t, rr)
	if payload["ok"] != true || payload["sessions"] != float64(1) {
		t.Fatalf("payload %v", payload)
	}
}
