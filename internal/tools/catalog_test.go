package tools

import (
	"testing"

	"github.com/jamesruggles/secuscan/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestCatalogCoversEveryTool(t *testing.T) {
	statuses := Catalog()
	assert.Len(t, statuses, 23)
	for _, s := range statuses {
		assert.True(t, s.Active, s.Name)
		assert.NotEmpty(t, s.Category, s.Name)
	}
}

func TestLookup(t *testing.T) {
	tool, ok := Lookup("nmap")
	assert.True(t, ok)
	assert.Equal(t, model.ToolNmap, tool)

	tool, ok = Lookup("Apache JMeter")
	assert.True(t, ok)
	assert.Equal(t, model.ToolJMeter, tool)

	_, ok = Lookup("metasploit")
	assert.False(t, ok)
}

func TestParseList(t *testing.T) {
	selected, unknown := ParseList("Nmap, selenium automation,Nmap,,bogus")
	assert.Equal(t, []model.ToolType{model.ToolNmap, model.ToolSelenium}, selected)
	assert.Equal(t, []string{"bogus"}, unknown)
}
