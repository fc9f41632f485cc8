package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abelzeko/tank-bot/internal/config"
	"github.com/abelzeko/tank-bot/internal/entities"
	"github.com/abelzeko/tank-bot/internal/integration"
	"github.com/abelzeko/tank-bot/internal/repository"
	"github.com/ansel1/merry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableHTML(lastDecade int) string {
	var b strings.Builder
	b.WriteString("<html><body><table>\n")
	for decade := 0; decade <= lastDecade; decade += 10 {
		b.WriteString(fmt.Sprintf("<tr><td>%d</td>", decade))
		for digit := 0; digit < 10; digit++ {
			b.WriteString(fmt.Sprintf("<td>%d,5</td>", (decade+digit)*10))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

func TestImportTables(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/diesel" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, tableHTML(50))
	}))
	defer server.Close()

	repo, err := repository.NewSQLiteTableRepository(filepath.Join(t.TempDir(), "calibration.db"))
	require.NoError(t, err)
	defer repo.Close()

	sources := []config.ImportSource{
		{Fuel: "DIESEL", Source: server.URL + "/diesel"},
		{Fuel: "GASOLINA", Source: server.URL + "/missing"},
	}
	err = importTables(context.Background(), integration.NewTableScraper(), repo, sources)
	require.Error(t, err, "the missing source must be reported")
	assert.Contains(t, err.Error(), "GASOLINA")

	table, err := repo.LoadTable(entities.Diesel)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 20, 30, 40, 50}, table.Decades())
	row, ok := table.Row(50)
	require.True(t, ok)
	assert.Equal(t, entities.Liters(590.5), row[9])

	imported, err := repo.LastImportTime(entities.Diesel)
	require.NoError(t, err)
	assert.False(t, imported.IsZero())

	_, err = repo.LoadTable(entities.Gasoline)
	assert.True(t, merry.Is(err, repository.ErrUnknownFuel))
}
