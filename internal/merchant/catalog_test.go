package merchant

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/taoyao-code/qris-server/internal/config"
	"github.com/taoyao-code/qris-server/internal/protocol/qris"
)

const minimalTemplate = "0002010102115802ID5903ABC"

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog([]Entry{
		{Name: "main", Template: cfgpkg.DefaultTemplate},
		{Name: "kiosk", Template: minimalTemplate, MaxAmount: 50000},
	}, qris.DefaultAmountLimits)
	require.NoError(t, err)

	assert.Equal(t, "main", c.Default())
	assert.Equal(t, []string{"kiosk", "main"}, c.Names())

	g, name, err := c.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "main", name)
	assert.Equal(t, qris.DefaultAmountLimits, g.Limits())

	g, _, err = c.Lookup("kiosk")
	require.NoError(t, err)
	assert.Equal(t, qris.AmountLimits{Min: 100, Max: 50000}, g.Limits())

	_, _, err = c.Lookup("nope")
	assert.True(t, errors.Is(err, ErrUnknownMerchant))
}

func TestNewCatalog_Errors(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"空目录", nil},
		{"缺少名称", []Entry{{Template: minimalTemplate}}},
		{"重复名称", []Entry{{Name: "a", Template: minimalTemplate}, {Name: "a", Template: minimalTemplate}}},
		{"模板非法", []Entry{{Name: "a", Template: "00"}}},
		{"模板缺少58", []Entry{{Name: "a", Template: "000201"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.entries, qris.DefaultAmountLimits)
			assert.Error(t, err)
		})
	}
}

func TestFromConfig_WithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	content := `
templates:
  - name: warung
    template: "` + minimalTemplate + `"
    minAmount: 1000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := FromConfig(cfgpkg.QRISConfig{
		Template:      cfgpkg.DefaultTemplate,
		MerchantName:  "default",
		TemplatesFile: path,
		MinAmount:     100,
		MaxAmount:     500000,
		DefaultAmount: 10000,
		Expiry:        time.Hour,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "warung"}, c.Names())

	g, _, err := c.Lookup("warung")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), g.Limits().Min)

	payload, err := g.Generate(1000)
	require.NoError(t, err)
	assert.NoError(t, qris.VerifyChecksum(payload))
}

func TestFromConfig_CompositeTags(t *testing.T) {
	c, err := FromConfig(cfgpkg.QRISConfig{
		Template:      cfgpkg.DefaultTemplate,
		MerchantName:  "default",
		MinAmount:     100,
		MaxAmount:     500000,
		CompositeTags: []string{"26"},
	})
	require.NoError(t, err)

	g, _, err := c.Lookup("")
	require.NoError(t, err)
	tpl := g.Template()
	assert.True(t, tpl.Find("26").IsTemplate())
	assert.False(t, tpl.Find("51").IsTemplate())
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("templates: [::"), 0o600))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}
