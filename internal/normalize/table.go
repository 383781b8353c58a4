package normalize

import "strings"

// renderTable flattens a KindTable node into the pipe-delimited text form:
// an optional `caption='...'` line, followed by one line per row, cells
// joined by `|` (ordinary) or `||` (heading) to match the first cell of
// that row. Empty cells render as a single space so column boundaries
// stay visible.
func renderTable(heading *[]string, node Node, buf *strings.Builder) {
	buf.WriteByte('\n')

	if len(node.Captions) > 0 {
		var captionBuf strings.Builder
		for i, c := range node.Captions {
			if i > 0 {
				captionBuf.WriteByte(' ')
			}
			renderSiblings(heading, c.Children, &captionBuf)
		}
		buf.WriteString("caption='")
		buf.WriteString(strings.TrimSpace(captionBuf.String()))
		buf.WriteString("'\n")
	}

	for _, row := range node.Rows {
		renderTableRow(heading, row, buf)
		buf.WriteByte('\n')
	}
}

func renderTableRow(heading *[]string, row TableRow, buf *strings.Builder) {
	if len(row.Cells) == 0 {
		return
	}

	sep := "|"
	if row.Cells[0].Heading {
		sep = "||"
	}

	buf.WriteString(sep)
	for _, cell := range row.Cells {
		var cellBuf strings.Builder
		renderSiblings(heading, cell.Children, &cellBuf)
		text := strings.TrimSpace(cellBuf.String())
		if text == "" {
			text = " "
		}
		buf.WriteString(text)
		buf.WriteString(sep)
	}
}

// parseTable parses the lines of a `{| ... |}` block (inclusive of both
// delimiter lines) into a KindTable node: `|+` lines become captions, `|-`
// starts a new row, and `|`/`!!`-or-`!`-separated cell lines within a row
// become ordinary/heading cells respectively.
func parseTable(lines []string) Node {
	var captions []TableCaption
	var rows []TableRow
	var currentRow *TableRow

	closeRow := func() {
		if currentRow != nil && len(currentRow.Cells) > 0 {
			rows = append(rows, *currentRow)
		}
		currentRow = nil
	}

	for i := 1; i < len(lines)-1; i++ {
		t := strings.TrimSpace(lines[i])
		switch {
		case t == "":
			continue
		case strings.HasPrefix(t, "|+"):
			captions = append(captions, TableCaption{Children: parseInline(strings.TrimSpace(t[2:]))})
		case strings.HasPrefix(t, "|-"):
			closeRow()
			currentRow = &TableRow{}
		case strings.HasPrefix(t, "!"):
			if currentRow == nil {
				currentRow = &TableRow{}
			}
			for _, cell := range strings.Split(strings.TrimPrefix(t, "!"), "!!") {
				currentRow.Cells = append(currentRow.Cells, TableCell{
					Heading:  true,
					Children: parseInline(strings.TrimSpace(cell)),
				})
			}
		case strings.HasPrefix(t, "|"):
			if currentRow == nil {
				currentRow = &TableRow{}
			}
			for _, cell := range strings.Split(strings.TrimPrefix(t, "|"), "||") {
				currentRow.Cells = append(currentRow.Cells, TableCell{
					Children: parseInline(strings.TrimSpace(cell)),
				})
			}
		}
	}
	closeRow()

	return Node{Kind: KindTable, Captions: captions, Rows: rows}
}
