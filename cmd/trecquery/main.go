// Command trecquery answers ad-hoc queries and MRR evaluation batches
// against a merged trecindex index.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/trecsearch/internal/codec"
	"github.com/standardbeagle/trecsearch/internal/config"
	"github.com/standardbeagle/trecsearch/internal/eval"
	"github.com/standardbeagle/trecsearch/internal/index"
	"github.com/standardbeagle/trecsearch/internal/query"
	"github.com/standardbeagle/trecsearch/internal/types"
	"github.com/standardbeagle/trecsearch/internal/version"
)

func main() {
	app := &cli.App{
		Name:    "trecquery",
		Usage:   "query and evaluate a trecindex index",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "trecsearch.kdl",
				Usage: "query config file path",
			},
			&cli.StringFlag{
				Name:     "index",
				Aliases:  []string{"i"},
				Required: true,
				Usage:    "directory holding merged_index, freqs, storage, and docs.txt",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "vbyte",
				Usage: "posting codec: vbyte or bin",
			},
			&cli.StringFlag{
				Name:  "mode",
				Value: "disjunctive",
				Usage: "conjunctive or disjunctive",
			},
		},
		Commands: []*cli.Command{
			queryCommand(),
			evaluateCommand(),
			convertIDsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openEngine(c *cli.Context) (*query.Engine, config.QueryConfig, error) {
	_, queryCfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, config.QueryConfig{}, err
	}

	dir := c.String("index")
	ext := "vbyte"
	if c.String("format") == "bin" {
		ext = "bin"
	}

	e, err := query.Open(query.Options{
		LexiconPath:   filepath.Join(dir, "storage_"+ext+".txt"),
		PageTablePath: filepath.Join(dir, "docs.txt"),
		IndexPath:     filepath.Join(dir, "merged_index."+ext),
		FreqsPath:     filepath.Join(dir, "freqs."+ext),
		Format:        formatFromExt(ext),
		CacheCapacity: queryCfg.CacheCapacity,
		BM25:          queryCfg.BM25,
	})
	return e, queryCfg, err
}

func modeFromFlag(s string) types.QueryMode {
	if strings.EqualFold(s, "conjunctive") {
		return types.Conjunctive
	}
	return types.Disjunctive
}

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "run a single ad-hoc query and print ranked results",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "n", Value: query.DefaultNResults, Usage: "number of results"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("usage: trecquery query [--n N] <query text>")
			}
			engine, queryCfg, err := openEngine(c)
			if err != nil {
				return err
			}

			n := c.Int("n")
			if n <= 0 {
				n = queryCfg.NResults
			}
			results, err := engine.Search(strings.Join(c.Args().Slice(), " "), modeFromFlag(c.String("mode")), n)
			if err != nil {
				return err
			}
			for rank, r := range results {
				doc, _ := engine.Document(r.DocID)
				fmt.Printf("%d\t%d\t%.4f\t%s\n", rank+1, r.DocID, r.Score, doc.URL)
			}
			return nil
		},
	}
}

func evaluateCommand() *cli.Command {
	return &cli.Command{
		Name:  "evaluate",
		Usage: "run a TSV batch of judged queries and report MRR",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "judgments", Required: true, Usage: "TSV file: query_id\\tquery_text\\trelevant_doc_id"},
			&cli.IntFlag{Name: "n", Value: query.DefaultNResults, Usage: "top-n cutoff for MRR"},
			&cli.IntFlag{Name: "workers", Value: eval.DefaultWorkers, Usage: "concurrent query workers"},
		},
		Action: func(c *cli.Context) error {
			engine, _, err := openEngine(c)
			if err != nil {
				return err
			}

			judgments, err := loadJudgments(c.String("judgments"))
			if err != nil {
				return err
			}

			bar := progressbar.Default(int64(len(judgments)), "evaluating")
			report, err := eval.StreamRun(context.Background(), engine, judgments, eval.Options{
				Mode:    modeFromFlag(c.String("mode")),
				N:       c.Int("n"),
				Workers: c.Int("workers"),
			}, func(eval.QueryResult) { _ = bar.Add(1) })
			if err != nil {
				return err
			}

			fmt.Printf("MRR@%d: %.4f\n", c.Int("n"), report.MRR)
			fmt.Printf("avg latency: %s, total: %s, errors: %d/%d\n",
				report.AvgLatency, report.TotalDuration, report.Errors, len(report.Results))
			return json.NewEncoder(os.Stdout).Encode(report)
		},
	}
}

func loadJudgments(path string) ([]eval.Judgment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var judgments []eval.Judgment
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed judgment line %q: expected 3 tab-separated fields", line)
		}
		relevantID, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("malformed relevant doc id %q: %w", fields[2], err)
		}
		judgments = append(judgments, eval.Judgment{
			QueryID:    fields[0],
			QueryText:  fields[1],
			RelevantID: types.DocID(relevantID),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return judgments, nil
}

func convertIDsCommand() *cli.Command {
	return &cli.Command{
		Name:  "convert-ids",
		Usage: "rewrite a qrels file's DOCNO column into dense doc_ids using docnos.txt",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "qrels", Required: true, Usage: "TREC qrels file: qid iteration docno relevance"},
		},
		Action: func(c *cli.Context) error {
			dir := c.String("index")
			path := filepath.Join(dir, "docnos.txt")
			table, err := index.ReadDocNoTable(path)
			if err != nil {
				return err
			}

			f, err := os.Open(c.String("qrels"))
			if err != nil {
				return err
			}
			defer f.Close()

			w := bufio.NewWriter(os.Stdout)
			sc := bufio.NewScanner(f)
			for sc.Scan() {
				line := sc.Text()
				if line == "" {
					continue
				}
				fields := strings.Fields(line)
				if len(fields) != 4 {
					return fmt.Errorf("malformed qrels line %q: expected 4 fields (qid iteration docno relevance)", line)
				}
				qid, docno := fields[0], fields[2]
				id, ok := table[docno]
				if !ok {
					return fmt.Errorf("docno %q not found in %s", docno, path)
				}
				if _, err := fmt.Fprintf(w, "%s %d\n", qid, id); err != nil {
					return err
				}
			}
			if err := sc.Err(); err != nil {
				return err
			}
			return w.Flush()
		},
	}
}

func formatFromExt(ext string) codec.Format {
	if ext == "bin" {
		return codec.Bin
	}
	return codec.Vbyte
}
