package domain

import "testing"

func TestNewTemplateDefaults(t *testing.T) {
	tpl := NewTemplate()
	if tpl.Category != CategoryFree || tpl.Layout != LayoutMinimal {
		t.Fatalf("unexpected defaults %+v", tpl)
	}
	if tpl.SocialStyle != SocialStyleDefault || tpl.ConnectStyle != ConnectStyleGrid || tpl.ProfileStyle != ProfileStyleCentered {
		t.Fatalf("unexpected style defaults %+v", tpl)
	}
	if tpl.Fonts.Title != DefaultFontFamily || tpl.Fonts.Description != DefaultFontFamily {
		t.Fatalf("unexpected font defaults %+v", tpl.Fonts)
	}
	if tpl.FontSizes.Title != 22 || tpl.FontSizes.Description != 12 {
		t.Fatalf("unexpected font size defaults %+v", tpl.FontSizes)
	}
	if tpl.Features == nil || tpl.Tags == nil {
		t.Fatalf("expected non-nil lists")
	}
}

func TestApplyDefaultsKeepsValues(t *testing.T) {
	tpl := Template{Layout: LayoutArtistic, FontSizes: FontSizes{Title: 40}}
	ApplyDefaults(&tpl)
	if tpl.Layout != LayoutArtistic || tpl.FontSizes.Title != 40 || tpl.FontSizes.Description != 12 {
		t.Fatalf("unexpected template %+v", tpl)
	}
}

func TestParseEnums(t *testing.T) {
	if v, ok := ParseLayout(" Creative "); !ok || v != LayoutCreative {
		t.Fatalf("ParseLayout = %q, %v", v, ok)
	}
	if _, ok := ParseLayout("brutalist"); ok {
		t.Fatalf("expected unknown layout to fail")
	}
	if v, ok := ParseProfileStyle("center"); !ok || v != ProfileStyleCentered {
		t.Fatalf("ParseProfileStyle(center) = %q, %v", v, ok)
	}
	if v, ok := ParseConnectStyle("COMPACT"); !ok || v != ConnectStyleCompact {
		t.Fatalf("ParseConnectStyle = %q, %v", v, ok)
	}
	if v, ok := ParseCategory("Premium"); !ok || v != CategoryPremium {
		t.Fatalf("ParseCategory = %q, %v", v, ok)
	}
}

func TestColorsGetSet(t *testing.T) {
	var c Colors
	if !c.IsZero() {
		t.Fatalf("expected zero colors")
	}
	for _, role := range ColorRoles {
		if !c.Set(role, " #abcdef ") {
			t.Fatalf("Set(%q) rejected a known role", role)
		}
		if c.Get(role) != "#abcdef" {
			t.Fatalf("Get(%q) = %q", role, c.Get(role))
		}
	}
	if c.Set("shadow", "#000") || c.Get("shadow") != "" {
		t.Fatalf("unknown roles must be rejected")
	}
}

func TestCanonicalFontFamily(t *testing.T) {
	cases := map[string]string{
		"inter":                      "Inter",
		`"Source Sans Pro", Arial`:   "Source Sans Pro",
		"'playfair display', serif": "Playfair Display",
	}
	for in, want := range cases {
		if got, ok := CanonicalFontFamily(in); !ok || got != want {
			t.Fatalf("CanonicalFontFamily(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := CanonicalFontFamily("Comic Sans MS"); ok {
		t.Fatalf("expected family outside allow-list to fail")
	}
}

func TestIsColor(t *testing.T) {
	valid := []string{"#fff", "#0ea5e9", "#0ea5e9cc", "rgba(0, 0, 0, 0.4)", "hsl(200 50% 40%)", "white", "linear-gradient(135deg, #667eea 0%, #764ba2 100%)"}
	for _, v := range valid {
		if !IsColor(v) {
			t.Fatalf("expected %q to be a color", v)
		}
	}
	invalid := []string{"", "#ggg", "red;background:url(x)", "expression(alert(1))", "url(javascript:x)", "#12345"}
	for _, v := range invalid {
		if IsColor(v) {
			t.Fatalf("expected %q to be rejected", v)
		}
	}
}

func TestUserLabelAndVisibleLinks(t *testing.T) {
	if (User{Name: "Ana", Username: "ana"}).Label() != "Ana" {
		t.Fatalf("expected name before username")
	}
	if (User{DisplayName: " ", Username: "ana"}).Label() != "ana" {
		t.Fatalf("expected username fallback")
	}
	links := []SocialLink{{ID: "a", IsVisible: true}, {ID: "b"}, {ID: "c", IsVisible: true}}
	visible := VisibleSocialLinks(links)
	if len(visible) != 2 || visible[0].ID != "a" || visible[1].ID != "c" {
		t.Fatalf("unexpected visible links %+v", visible)
	}
}

func TestAcquisitionStateCanMarkUsed(t *testing.T) {
	for status, want := range map[AcquisitionStatus]bool{StatusFree: false, StatusSaved: true, StatusPending: false, StatusBought: true} {
		if got := (AcquisitionState{Status: status}).CanMarkUsed(); got != want {
			t.Fatalf("CanMarkUsed(%s) = %v, want %v", status, got, want)
		}
	}
}
