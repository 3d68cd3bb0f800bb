package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCells(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "three columns",
			line: "1234567   SMITH JOHN   123 MAIN ST",
			want: []string{"1234567", "SMITH JOHN", "123 MAIN ST"},
		},
		{
			name: "single spaces stay together",
			line: "SMITH JOHN JR   123 MAIN ST",
			want: []string{"SMITH JOHN JR", "123 MAIN ST"},
		},
		{
			name: "leading and trailing space trimmed",
			line: "   ALLEGHENY TOWNSHIP   ",
			want: []string{"ALLEGHENY TOWNSHIP"},
		},
		{
			name: "blank line",
			line: "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitCells(tt.line))
		})
	}
}

func TestExtractTables(t *testing.T) {
	t.Run("single table", func(t *testing.T) {
		text := "County Repository List\n\n" +
			"1234567  SMITH JOHN  123 MAIN ST  01.05-16..-093.00-000\n" +
			"7654321  DOE JANE  456 OAK AVE  02.07-11..-041.00-000\n"

		tables := extractTables(text)
		require.Len(t, tables, 1)
		require.Len(t, tables[0].Rows, 2)
		assert.Equal(t, []string{"1234567", "SMITH JOHN", "123 MAIN ST", "01.05-16..-093.00-000"}, tables[0].Rows[0])
	})

	t.Run("blank line splits tables", func(t *testing.T) {
		text := "A  B  C\n\nD  E  F\n"
		tables := extractTables(text)
		require.Len(t, tables, 2)
	})

	t.Run("short rows kept inside a table", func(t *testing.T) {
		text := "1234567  SMITH JOHN  123 MAIN ST\n" +
			"ALLEGHENY TOWNSHIP\n" +
			"7654321  DOE JANE  456 OAK AVE\n"

		tables := extractTables(text)
		require.Len(t, tables, 1)
		require.Len(t, tables[0].Rows, 3)
		assert.Equal(t, []string{"ALLEGHENY TOWNSHIP"}, tables[0].Rows[1])
	})

	t.Run("narrative text before a table is not a row", func(t *testing.T) {
		text := "Notice is hereby given of sale\n" +
			"1234567  SMITH JOHN  123 MAIN ST\n"

		tables := extractTables(text)
		require.Len(t, tables, 1)
		require.Len(t, tables[0].Rows, 1)
	})

	t.Run("no tables", func(t *testing.T) {
		assert.Empty(t, extractTables("just a paragraph of text\nwith no columns"))
	})
}

func TestValidatePath(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		assert.Error(t, ValidatePath(""))
	})

	t.Run("missing file", func(t *testing.T) {
		err := ValidatePath("/nonexistent/list.pdf")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("directory", func(t *testing.T) {
		err := ValidatePath(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "directory")
	})

	t.Run("wrong extension", func(t *testing.T) {
		err := ValidatePath("/tmp/list.txt")
		require.Error(t, err)
	})
}
