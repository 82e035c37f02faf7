package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/celerix-dev/imperivm/pkg/schema"
)

func testProvider(t *testing.T) *StaticProvider {
	t.Helper()
	creds, err := DefaultCredentials(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("DefaultCredentials failed: %v", err)
	}
	p, err := NewStaticProvider(creds)
	if err != nil {
		t.Fatalf("NewStaticProvider failed: %v", err)
	}
	return p
}

func TestVerify_Roster(t *testing.T) {
	p := testProvider(t)

	id, err := p.Verify("IAGO", "2005")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id.Name != "iago" || id.Role != schema.RankSupremo || !id.IsSupremo() {
		t.Errorf("unexpected identity %+v", id)
	}

	id, err = p.Verify(" krozz ", "11082010")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id.Role != schema.RankSubDon || id.IsSupremo() {
		t.Errorf("unexpected identity %+v", id)
	}
}

func TestVerify_UniformFailure(t *testing.T) {
	p := testProvider(t)
	cases := [][2]string{
		{"iago", "wrong"},
		{"nobody", "2005"},
		{"", ""},
	}
	for _, c := range cases {
		_, err := p.Verify(c[0], c[1])
		if !errors.Is(err, ErrAccessDenied) {
			t.Errorf("Verify(%q,%q) = %v, want ErrAccessDenied", c[0], c[1], err)
		}
		if err.Error() != "ACESSO NEGADO: FALHA NA CHAVE DE CRIPTOGRAFIA" {
			t.Errorf("unexpected message %q", err.Error())
		}
	}
}

func TestNewStaticProvider_Rejects(t *testing.T) {
	if _, err := NewStaticProvider(nil); err == nil {
		t.Error("expected error for empty roster")
	}
	h, _ := HashPassword("x", bcrypt.MinCost)
	if _, err := NewStaticProvider([]Credential{{Username: "a", PasswordHash: h, Role: "Chef"}}); err == nil {
		t.Error("expected error for unknown role")
	}
	if _, err := NewStaticProvider([]Credential{{Username: "a", PasswordHash: "plain", Role: schema.RankSoldier}}); err == nil {
		t.Error("expected error for non-bcrypt hash")
	}
}

func TestLoadProvider_JSONC(t *testing.T) {
	h, err := HashPassword("segredo", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	body := `[
		// the only admin on this deployment
		{"username": "Vito", "password_hash": "` + h + `", "role": "Conselheiro"},
	]`
	path := filepath.Join(t.TempDir(), "credentials.jsonc")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProvider(path)
	if err != nil {
		t.Fatalf("LoadProvider failed: %v", err)
	}
	id, err := p.Verify("vito", "segredo")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id.Role != schema.RankAdvisor {
		t.Errorf("expected Conselheiro, got %q", id.Role)
	}
	if _, err := p.Verify("iago", "2005"); !errors.Is(err, ErrAccessDenied) {
		t.Error("default roster should not apply when a file is configured")
	}
}

func TestLoadProvider_MissingFile(t *testing.T) {
	if _, err := LoadProvider(filepath.Join(t.TempDir(), "nope.jsonc")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSessions_IssueParse(t *testing.T) {
	s, err := NewSessions("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	base := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return base }

	token, expires, err := s.Issue(schema.Identity{Name: "iago", Role: schema.RankSupremo})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if !expires.Equal(base.Add(time.Hour)) {
		t.Errorf("unexpected expiry %v", expires)
	}

	id, err := s.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if id.Name != "iago" || id.Role != schema.RankSupremo {
		t.Errorf("unexpected identity %+v", id)
	}

	s.Now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := s.Parse(token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected expired token to fail, got %v", err)
	}
}

func TestSessions_ForeignSecret(t *testing.T) {
	a, _ := NewSessions("a", time.Hour)
	b, _ := NewSessions("b", time.Hour)
	token, _, err := a.Issue(schema.Identity{Name: "krozz", Role: schema.RankSubDon})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Parse(token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession, got %v", err)
	}
	if _, err := b.Parse("garbage"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession, got %v", err)
	}
}
