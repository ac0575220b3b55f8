package gateway_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rjsharma/matrixpay-dashboard-go/internal/domain"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/gateway"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/infra/observability"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/infra/resilience"

	"go.uber.org/zap"
)

// fakeCreds records which session channel was invalidated.
type fakeCreds struct {
	memberToken       string
	adminToken        string
	memberInvalidated bool
	adminInvalidated  bool
}

func (f *fakeCreds) MemberToken() string { return f.memberToken }
func (f *fakeCreds) AdminToken() string  { return f.adminToken }
func (f *fakeCreds) InvalidateMember()   { f.memberInvalidated = true }
func (f *fakeCreds) InvalidateAdmin()    { f.adminInvalidated = true }

func newClient(t *testing.T, handler http.Handler, creds *fakeCreds) (*gateway.Client, *observability.Metrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	metrics := observability.NewMetrics()
	cfg := resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond}
	c := gateway.NewClient(
		srv.Client(),
		srv.URL,
		creds,
		resilience.NewCircuitBreaker("test"),
		cfg,
		metrics,
		zap.NewNop(),
	)
	return c, metrics
}

func TestBearerPerNamespace(t *testing.T) {
	var userAuth, adminAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user/wallet":
			userAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{"wallet":{"balance":100}}`))
		case "/admin/metrics":
			adminAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{"totalUsers":1}`))
		}
	})
	creds := &fakeCreds{memberToken: "member-tok", adminToken: "admin-tok"}
	c, _ := newClient(t, handler, creds)

	if _, err := c.WalletSnapshot(context.Background()); err != nil {
		t.Fatalf("wallet: %v", err)
	}
	if _, err := c.AdminMetrics(context.Background()); err != nil {
		t.Fatalf("metrics: %v", err)
	}

	if userAuth != "Bearer member-tok" {
		t.Errorf("user namespace got %q", userAuth)
	}
	if adminAuth != "Bearer admin-tok" {
		t.Errorf("admin namespace got %q", adminAuth)
	}
}

func TestUnauthorizedTearsDownMemberChannel(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Token expired"}`))
	})
	creds := &fakeCreds{memberToken: "stale"}
	c, metrics := newClient(t, handler, creds)

	_, err := c.WalletSnapshot(context.Background())
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if unauthorized.Namespace != "user" {
		t.Errorf("expected user namespace, got %s", unauthorized.Namespace)
	}
	if !creds.memberInvalidated {
		t.Error("member channel must be invalidated on 401")
	}
	if creds.adminInvalidated {
		t.Error("admin channel must be untouched")
	}
	if got := metrics.SessionTeardownCount("user"); got != 1 {
		t.Errorf("expected one user teardown counted, got %v", got)
	}
	if got := metrics.SessionTeardownCount("admin"); got != 0 {
		t.Errorf("expected no admin teardown counted, got %v", got)
	}
}

func TestUnauthorizedTearsDownAdminChannelOnly(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	creds := &fakeCreds{adminToken: "stale"}
	c, _ := newClient(t, handler, creds)

	_, err := c.AdminMetrics(context.Background())
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) || unauthorized.Namespace != "admin" {
		t.Fatalf("expected admin ErrUnauthorized, got %v", err)
	}
	if !creds.adminInvalidated {
		t.Error("admin channel must be invalidated on 401 under /admin")
	}
	if creds.memberInvalidated {
		t.Error("member channel must be untouched")
	}
}

func TestRemoteErrorCarriesServerMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Insufficient wallet balance"}`))
	})
	c, _ := newClient(t, handler, &fakeCreds{memberToken: "tok"})

	err := c.CreateWithdrawal(context.Background(), domain.WithdrawalRequest{Amount: 500})
	var remote *domain.ErrRemote
	if !errors.As(err, &remote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	if remote.Message != "Insufficient wallet balance" {
		t.Errorf("expected server message, got %q", remote.Message)
	}
}

func TestRemoteErrorGenericFallback(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>gateway error</html>"))
	})
	c, _ := newClient(t, handler, &fakeCreds{memberToken: "tok"})

	err := c.CreateWithdrawal(context.Background(), domain.WithdrawalRequest{Amount: 500})
	var remote *domain.ErrRemote
	if !errors.As(err, &remote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	if remote.Message != "Request failed" {
		t.Errorf("expected generic fallback, got %q", remote.Message)
	}
}

func TestMutationsAreNeverRetried(t *testing.T) {
	attempts := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	})
	c, _ := newClient(t, handler, &fakeCreds{memberToken: "tok"})

	if err := c.CreateWithdrawal(context.Background(), domain.WithdrawalRequest{Amount: 500}); err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("mutation must hit the platform exactly once, got %d attempts", attempts)
	}
}

func TestReadsRetryOn5xx(t *testing.T) {
	attempts := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"wallet":{"balance":250}}`))
	})
	c, _ := newClient(t, handler, &fakeCreds{memberToken: "tok"})

	patch, err := c.WalletSnapshot(context.Background())
	if err != nil {
		t.Fatalf("expected recovery after retries, got %v", err)
	}
	if patch.Balance == nil || *patch.Balance != 250 {
		t.Errorf("unexpected patch: %+v", patch)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestReadsDoNotRetryOn4xx(t *testing.T) {
	attempts := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Account blocked"}`))
	})
	c, _ := newClient(t, handler, &fakeCreds{memberToken: "tok"})

	_, err := c.WalletSnapshot(context.Background())
	var remote *domain.ErrRemote
	if !errors.As(err, &remote) || remote.Status != http.StatusForbidden {
		t.Fatalf("expected 403 ErrRemote, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("4xx must not be retried, got %d attempts", attempts)
	}
}

func TestAdminUsersQueryParams(t *testing.T) {
	var gotQuery string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"users":[]}`))
	})
	c, _ := newClient(t, handler, &fakeCreds{adminToken: "tok"})

	if _, err := c.AdminUsers(context.Background(), "active", "ravi"); err != nil {
		t.Fatalf("users: %v", err)
	}
	if gotQuery != "search=ravi&status=active" {
		t.Errorf("unexpected query: %q", gotQuery)
	}
}
