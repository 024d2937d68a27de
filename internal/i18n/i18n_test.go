package i18n_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-datetools/internal/config"
	"github.com/tartampluch/go-datetools/internal/i18n"
)

func TestTranslator_English(t *testing.T) {
	tr := i18n.New("en")
	require.NotNil(t, tr.Localizer)

	got := tr.MsgData(config.TKeyLeapYes, map[string]any{"Year": 2000})
	assert.Equal(t, "2000 is a leap year.", got)
}

func TestTranslator_French(t *testing.T) {
	tr := i18n.New("fr")

	got := tr.MsgData(config.TKeyLeapNo, map[string]any{"Year": 1900})
	assert.Equal(t, "1900 n'est pas une année bissextile.", got)
}

func TestTranslator_FallsBackToDefault(t *testing.T) {
	// An unsupported language must degrade to English, not to raw keys.
	tr := i18n.New("de")

	got := tr.MsgData(config.TKeySpan, map[string]any{"Span": "01:00:00.000"})
	assert.Equal(t, "Elapsed time: 01:00:00.000", got)
}

func TestTranslator_MissingKeyDegradesToKey(t *testing.T) {
	tr := i18n.New("en")
	assert.Equal(t, "no_such_key", tr.Msg("no_such_key"))
}

func TestTranslator_DetectsEmbeddedLanguages(t *testing.T) {
	tr := i18n.New("en")
	assert.ElementsMatch(t, config.SupportedLanguages, tr.SupportedLanguages)
}
