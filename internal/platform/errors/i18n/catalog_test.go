package i18n

import "testing"

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	if got := GetCatalog(""); got != base {
		t.Fatal("expected empty locale to resolve to en-US")
	}
	if got := GetCatalog("missing-locale"); got != base {
		t.Fatal("expected fallback to en-US catalog")
	}
}

func TestGetCatalogMatchesRegion(t *testing.T) {
	base := GetCatalog(BaseLocale)
	if got := GetCatalog("en-GB"); got != base {
		t.Fatalf("expected en-GB to match en-US, got %q", got.Locale())
	}
}

func TestFormatFallbacks(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "hello {{.Name}}",
	})

	if cat.Format("unknown", nil) != "unknown" {
		t.Fatal("expected code fallback when template missing")
	}
	if cat.Format("code", nil) != "hello <no value>" {
		t.Fatal("expected template to render missing metadata")
	}
	if cat.Format("code", map[string]string{"Name": "Gunther"}) != "hello Gunther" {
		t.Fatal("expected template to render metadata")
	}
}

func TestFormatTemplateErrorFallback(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "{{ if .Name }}",
	})
	if cat.Format("code", map[string]string{"Name": "X"}) != "{{ if .Name }}" {
		t.Fatal("expected template fallback on parse error")
	}
}

func TestRegisterCatalog(t *testing.T) {
	custom := NewCatalog("custom", map[Code]string{"code": "ok"})
	RegisterCatalog("custom", custom)
	if got := GetCatalog("custom"); got != custom {
		t.Fatal("expected registered catalog")
	}
}

func TestEveryCodeHasMessage(t *testing.T) {
	codes := []Code{
		CodeActorEmptyID, CodeActorEmptyName, CodeActorNotFound, CodeActorInvalidCharacteristic,
		CodeTestEmptyID, CodeTestInvalidRoll, CodeTestInvalidOutcome, CodeTestAlreadyResolved,
		CodeRerollNotFound, CodeRerollActorMismatch, CodeStressInvalidLevel,
		CodeDiceMissing, CodeDiceInvalidSpec, CodeNotFound,
	}
	cat := GetCatalog(BaseLocale)
	for _, code := range codes {
		if cat.Format(code, nil) == code {
			t.Errorf("missing en-US message for %s", code)
		}
	}
}
