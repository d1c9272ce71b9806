package index

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/standardbeagle/trecsearch/internal/types"
	"github.com/standardbeagle/trecsearch/internal/xerrors"
)

// WritePageTable writes the page table as docs.txt: one line per document,
// in doc_id order, "url term_count begin_offset end_offset".
func WritePageTable(path string, pageTable []types.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return xerrors.NewIOError("create", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, doc := range pageTable {
		url := doc.URL
		if url == "" {
			url = "-"
		}
		if _, err := fmt.Fprintf(w, "%s %d %d %d\n", url, doc.TermCount, doc.BeginOffset, doc.EndOffset); err != nil {
			return xerrors.NewIOError("write", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return xerrors.NewIOError("flush", path, err)
	}
	return nil
}

// ReadPageTable reads docs.txt back into a slice indexed by doc_id.
func ReadPageTable(path string) ([]types.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.NewIOError("open", path, err)
	}
	defer f.Close()

	var table []types.Document
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	id := 0
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 4 {
			return nil, xerrors.NewFormatError("read_page_table", int64(id), fmt.Errorf("expected 4 fields, got %d", len(fields)))
		}
		termCount, err1 := strconv.Atoi(fields[1])
		begin, err2 := strconv.ParseInt(fields[2], 10, 64)
		end, err3 := strconv.ParseInt(fields[3], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, xerrors.NewFormatError("read_page_table", int64(id), fmt.Errorf("malformed integer fields"))
		}
		table = append(table, types.Document{
			ID:          types.DocID(id),
			URL:         fields[0],
			TermCount:   termCount,
			BeginOffset: begin,
			EndOffset:   end,
		})
		id++
	}
	if err := sc.Err(); err != nil {
		return nil, xerrors.NewIOError("scan", path, err)
	}
	return table, nil
}

// WriteDocNoTable writes the docno -> doc_id side table used by the
// convert-ids auxiliary tool, one "docno doc_id" pair per line.
func WriteDocNoTable(path string, pageTable []types.Document, docnos []string) error {
	f, err := os.Create(path)
	if err != nil {
		return xerrors.NewIOError("create", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, docno := range docnos {
		if _, err := fmt.Fprintf(w, "%s %d\n", docno, i); err != nil {
			return xerrors.NewIOError("write", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return xerrors.NewIOError("flush", path, err)
	}
	return nil
}

// ReadDocNoTable reads the docno -> doc_id side table back into a lookup
// map, for the convert-ids auxiliary tool.
func ReadDocNoTable(path string) (map[string]types.DocID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.NewIOError("open", path, err)
	}
	defer f.Close()

	table := make(map[string]types.DocID)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			return nil, xerrors.NewFormatError("read_docno_table", int64(lineNo), fmt.Errorf("expected 2 fields, got %d", len(fields)))
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, xerrors.NewFormatError("read_docno_table", int64(lineNo), fmt.Errorf("malformed doc_id %q", fields[1]))
		}
		table[fields[0]] = types.DocID(id)
		lineNo++
	}
	if err := sc.Err(); err != nil {
		return nil, xerrors.NewIOError("scan", path, err)
	}
	return table, nil
}
