package i18n

import "testing"

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		t.Setenv(env, "")
	}
}

func TestDetectLanguagePriority(t *testing.T) {
	clearLocaleEnv(t)
	t.Setenv("LANG", "de_DE.UTF-8")
	t.Setenv("LC_ALL", "ru_RU.UTF-8")
	if got := detectLanguage(); got != "ru_RU" {
		t.Fatalf("detectLanguage() = %q, want LC_ALL over LANG with encoding stripped", got)
	}
}

func TestDetectLanguageListTakesFirst(t *testing.T) {
	clearLocaleEnv(t)
	t.Setenv("LANGUAGE", "fr:en:de")
	if got := detectLanguage(); got != "fr" {
		t.Fatalf("detectLanguage() = %q, want first list entry", got)
	}
}

func TestDetectLanguageSkipsCAndPosix(t *testing.T) {
	clearLocaleEnv(t)
	t.Setenv("LC_ALL", "C")
	t.Setenv("LANG", "POSIX")
	if got := detectLanguage(); got != "en" {
		t.Fatalf("detectLanguage() = %q, want the en fallback", got)
	}

	clearLocaleEnv(t)
	t.Setenv("LC_ALL", "C.UTF-8")
	t.Setenv("LANG", "uk_UA.UTF-8")
	if got := detectLanguage(); got != "uk_UA" {
		t.Fatalf("detectLanguage() = %q, want C skipped in favor of LANG", got)
	}
}

func TestDetectLanguageDefault(t *testing.T) {
	clearLocaleEnv(t)
	if got := detectLanguage(); got != "en" {
		t.Fatalf("detectLanguage() = %q, want en", got)
	}
}
