// Package i18n translates lokalc's own user-facing strings.
//
// It wraps the gotext library behind T() and N(); translations are
// embedded in the binary via //go:embed and selected at startup by
// Init(). Only CLI-layer messages go through here; diagnostics carried
// by errors and warnings stay structured and are formatted by the
// consumer.
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// locales embeds the compiled translation catalogs, laid out as
// locales/{lang}/LC_MESSAGES/lokalc.po.
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name.
const domain = "lokalc"

var catalog *gotext.Locale

// Init selects the message language. An empty lang auto-detects from
// LANGUAGE, LC_ALL, LC_MESSAGES and LANG, in GNU gettext order. Call
// once at startup before T or N.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	catalog = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	catalog.AddDomain(domain)
	catalog.SetDomain(domain)
}

// T translates one string, returning it unchanged when no translation
// exists.
func T(msgid string) string {
	if catalog == nil {
		return msgid
	}
	return catalog.Get(msgid)
}

// N translates with plural forms, choosing by n.
func N(singular, plural string, n int) string {
	if catalog == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return catalog.GetN(singular, plural, n)
}

func detectLanguage() string {
	// GNU gettext priority: LANGUAGE > LC_ALL > LC_MESSAGES > LANG
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if val := os.Getenv(env); val != "" {
			// LANGUAGE can be a colon-separated list; take the first
			if env == "LANGUAGE" {
				parts := strings.SplitN(val, ":", 2)
				val = parts[0]
			}
			// Strip encoding and modifier: "ru_RU.UTF-8" -> "ru_RU".
			if i := strings.IndexAny(val, ".@"); i >= 0 {
				val = val[:i]
			}
			// "C" and "POSIX" mean no translation
			if val == "C" || val == "POSIX" || val == "" {
				continue
			}
			return val
		}
	}
	return "en"
}
