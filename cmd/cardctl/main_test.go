package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/juantap/web/internal/domain"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNormalizeTemplateFromStdin(t *testing.T) {
	out, _, err := run(t, `{"name":"Minimal Clean!!","category":"premium","original_price":399,"discount":25,"tags":"[\"clean\"]"}`, "normalize")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	var tpl domain.Template
	if err := json.Unmarshal([]byte(out), &tpl); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if tpl.Slug != "minimal-clean" || tpl.Price != 299.25 || !tpl.IsPremium {
		t.Fatalf("unexpected template %+v", tpl)
	}
	if len(tpl.Tags) != 1 || tpl.Tags[0] != "clean" {
		t.Fatalf("unexpected tags %v", tpl.Tags)
	}
}

func TestNormalizeUserFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	if err := os.WriteFile(path, []byte(`{"user":{"id":3,"username":"ana","social_links":"[{\"platform\":\"GitHub\"}]"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	out, _, err := run(t, "", "normalize", "--kind", "user", path)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	var user domain.User
	if err := json.Unmarshal([]byte(out), &user); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if user.ID != "3" || len(user.SocialLinks) != 1 || user.SocialLinks[0].Platform != "github" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestNormalizeRejectsUnknownKind(t *testing.T) {
	if _, _, err := run(t, "{}", "normalize", "--kind", "order"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	if _, _, err := run(t, "<html>", "normalize"); err == nil {
		t.Fatalf("expected error for non-JSON input")
	}
}

func TestSlug(t *testing.T) {
	out, _, err := run(t, "", "slug", "Neon", "Cyber", "2.0!")
	if err != nil {
		t.Fatalf("slug: %v", err)
	}
	if out != "neon-cyber-2-0\n" {
		t.Fatalf("unexpected slug %q", out)
	}
	if _, _, err := run(t, "", "slug", "!!!"); err == nil {
		t.Fatalf("expected error for a name without letters")
	}
}

func TestPrice(t *testing.T) {
	out, _, err := run(t, "", "price", "399", "25")
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	for _, want := range []string{"original  399.00", "discount  25%", "price     299.25", "savings   99.75"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if _, _, err := run(t, "", "price", "100", "150"); err == nil {
		t.Fatalf("expected error for discount above 100")
	}
	if _, _, err := run(t, "", "price", "abc", "10"); err == nil {
		t.Fatalf("expected error for a non-numeric price")
	}
}

func TestRenderSampleProfile(t *testing.T) {
	out, stderr, err := run(t, `{"slug":"neon","variant":"neon-cyber","layout":"creative"}`, "render", "--base-url", "https://juantap.example", "--log-level", "info")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	if got, _ := doc.Find("article.jt-card").Attr("data-variant"); got != "neon-cyber" {
		t.Fatalf("unexpected variant %q", got)
	}
	if got := doc.Find(".jt-name").Text(); got != "Juan Dela Cruz" {
		t.Fatalf("unexpected name %q", got)
	}
	if got, _ := doc.Find("[data-action=share]").Attr("data-share-url"); got != "https://juantap.example/juandelacruz" {
		t.Fatalf("unexpected share url %q", got)
	}
	if !strings.Contains(stderr, "rendering preview") {
		t.Fatalf("expected log line on stderr, got %q", stderr)
	}
}

func TestRenderWithProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "me.json")
	if err := os.WriteFile(path, []byte(`{"id":1,"display_name":"Rio Santos","username":"rio"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	out, _, err := run(t, `{"slug":"plain"}`, "render", "--profile", path)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Rio Santos") {
		t.Fatalf("expected profile name in output:\n%s", out)
	}
}

func TestVariants(t *testing.T) {
	out, _, err := run(t, "", "variants")
	if err != nil {
		t.Fatalf("variants: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 13 {
		t.Fatalf("expected header and 12 variants, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.HasPrefix(lines[1], "minimal ") {
		t.Fatalf("unexpected table:\n%s", out)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	if _, _, err := run(t, "", "variants", "--log-level", "loud"); err == nil {
		t.Fatalf("expected error for invalid log level")
	}
}
