package query

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/standardbeagle/trecsearch/internal/types"
	"github.com/standardbeagle/trecsearch/internal/xerrors"
)

// LoadLexicon reads the merger's "term ids_offset freqs_offset doc_count"
// lexicon file into a map for O(1) term lookup.
func LoadLexicon(path string) (map[string]types.LexiconEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.NewIOError("open", path, err)
	}
	defer f.Close()

	lexicon := make(map[string]types.LexiconEntry)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := int64(0)
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) != 4 {
			return nil, xerrors.NewFormatError("load_lexicon", lineNo, fmt.Errorf("expected 4 fields, got %d", len(fields)))
		}
		idsOffset, err1 := strconv.ParseInt(fields[1], 10, 64)
		freqOffset, err2 := strconv.ParseInt(fields[2], 10, 64)
		docCount, err3 := strconv.Atoi(fields[3])
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, xerrors.NewFormatError("load_lexicon", lineNo, fmt.Errorf("malformed integer fields"))
		}
		lexicon[fields[0]] = types.LexiconEntry{
			Term:       fields[0],
			IDsOffset:  idsOffset,
			FreqOffset: freqOffset,
			DocCount:   docCount,
		}
	}
	if err := sc.Err(); err != nil {
		return nil, xerrors.NewIOError("scan", path, err)
	}
	return lexicon, nil
}
