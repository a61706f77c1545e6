package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/lushlawncarepros/petersen-budget/internal/auth"
	"github.com/lushlawncarepros/petersen-budget/internal/ledger"
	"github.com/lushlawncarepros/petersen-budget/internal/tabular/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := ledger.NewService(memory.New(), nil)
	sessions := auth.NewManager(map[string]string{"ethan": "pw1", "alesa": "pw2"}, time.Hour)
	srv := NewServer(":0", svc, sessions)
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv
}

func postForm(srv *Server, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

// login authenticates and returns the session cookie.
func login(t *testing.T, srv *Server, user, pass string) *http.Cookie {
	t.Helper()
	rr := postForm(srv, "/login", url.Values{"username": {user}, "password": {pass}}, nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("login status=%d, want 303", rr.Code)
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set after login")
	return nil
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestIndexRedirectsToLoginWithoutSession(t *testing.T) {
	srv := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status=%d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	rr := postForm(srv, "/login", url.Values{"username": {"ethan"}, "password": {"wrong"}}, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid username or password") {
		t.Error("expected error message in login page")
	}
}

func TestAddTransactionRequiresLogin(t *testing.T) {
	srv := newTestServer(t)
	rr := postForm(srv, "/transactions", url.Values{
		"date": {"2024-03-01"}, "type": {"Expense"}, "category": {"Groceries"}, "amount": {"45.50"},
	}, nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status=%d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestAddTransactionRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	cookie := login(t, srv, "ethan", "pw1")

	rr := postForm(srv, "/transactions", url.Values{
		"date":     {"2024-03-01"},
		"type":     {"Expense"},
		"category": {"Groceries"},
		"amount":   {"45.50"},
		"memo":     {"weekly run"},
	}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("add status=%d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); !strings.Contains(loc, "msg=") {
		t.Errorf("expected success message in redirect, got %q", loc)
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?tab=history", nil)
	req.AddCookie(cookie)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("history status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Groceries") || !strings.Contains(body, "$45.50") {
		t.Errorf("history missing saved entry:\n%s", body)
	}
	if !strings.Contains(body, "Ethan") {
		t.Error("history missing owner display name")
	}
}

func TestAddTransactionRejectsBadAmount(t *testing.T) {
	srv := newTestServer(t)
	cookie := login(t, srv, "alesa", "pw2")

	rr := postForm(srv, "/transactions", url.Values{
		"date": {"2024-03-01"}, "type": {"Expense"}, "category": {"Groceries"}, "amount": {"abc"},
	}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status=%d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); !strings.Contains(loc, "err=") {
		t.Errorf("expected error in redirect, got %q", loc)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	srv := newTestServer(t)
	cookie := login(t, srv, "ethan", "pw1")

	rr := postForm(srv, "/categories", url.Values{
		"type": {"Expense"}, "name": {"Dining"}, "order": {"5"},
	}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("add category status=%d", rr.Code)
	}

	// Duplicate name for the same kind is rejected.
	rr = postForm(srv, "/categories", url.Values{
		"type": {"Expense"}, "name": {"dining"},
	}, cookie)
	if loc := rr.Header().Get("Location"); !strings.Contains(loc, "err=") {
		t.Errorf("expected duplicate error in redirect, got %q", loc)
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?tab=add", nil)
	req.AddCookie(cookie)
	srv.Handler.ServeHTTP(rr, req)
	if !strings.Contains(rr.Body.String(), "Dining") {
		t.Error("add tab missing new category")
	}

	rr = postForm(srv, "/categories/delete", url.Values{"row": {"0"}}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("delete category status=%d", rr.Code)
	}
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/?tab=add", nil)
	req.AddCookie(cookie)
	srv.Handler.ServeHTTP(rr, req)
	if strings.Contains(rr.Body.String(), `<span class="cat-name">Dining</span>`) {
		t.Error("category still listed after delete")
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	srv := newTestServer(t)
	cookie := login(t, srv, "ethan", "pw1")

	rr := postForm(srv, "/logout", url.Values{}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("logout status=%d", rr.Code)
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Errorf("expected redirect to /login after logout, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestSecurityHeadersSet(t *testing.T) {
	srv := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	srv.Handler.ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}
