// Command trecindex builds and merges a disk-resident inverted index from a
// TREC-formatted (optionally gzip-compressed) document collection.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/trecsearch/internal/codec"
	"github.com/standardbeagle/trecsearch/internal/config"
	"github.com/standardbeagle/trecsearch/internal/corpus"
	"github.com/standardbeagle/trecsearch/internal/index"
	"github.com/standardbeagle/trecsearch/internal/merge"
	"github.com/standardbeagle/trecsearch/internal/version"
)

func main() {
	app := &cli.App{
		Name:    "trecindex",
		Usage:   "build a disk-resident inverted index from a TREC document collection",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "trecsearch.kdl",
				Usage: "build config file path",
			},
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"o"},
				Required: true,
				Usage:    "output directory for chunks, merged index, lexicon, and page table",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "posting codec: vbyte or bin (overrides config)",
			},
		},
		Commands: []*cli.Command{
			buildIndexCommand(),
			mergeCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadBuildConfig(c *cli.Context) (config.BuildConfig, error) {
	build, _, err := config.Load(c.String("config"))
	if err != nil {
		return config.BuildConfig{}, err
	}
	if f := c.String("format"); f != "" {
		if f == "bin" {
			build.Format = codec.Bin
		} else {
			build.Format = codec.Vbyte
		}
	}
	return build, nil
}

func buildIndexCommand() *cli.Command {
	return &cli.Command{
		Name:  "build-index",
		Usage: "parse a TREC collection and spill partial-index chunks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "corpus",
				Aliases:  []string{"c"},
				Required: true,
				Usage:    "path to the TREC collection file (.gz supported)",
			},
		},
		Action: func(c *cli.Context) error {
			build, err := loadBuildConfig(c)
			if err != nil {
				return err
			}
			outDir := c.String("out")
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir %s: %w", outDir, err)
			}

			rc, err := corpus.Open(c.String("corpus"))
			if err != nil {
				return err
			}
			defer rc.Close()

			reader := corpus.NewReaderSize(rc, int(build.BufferSize))
			builder := index.NewBuilder(outDir, build.OutputEntrySize, build.Format)

			bar := progressbar.Default(-1, "indexing documents")
			var docnos []string
			for {
				doc, body, err := reader.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					return err
				}
				if err := builder.AddDocument(doc, body); err != nil {
					return err
				}
				docnos = append(docnos, doc.DocNo)
				_ = bar.Add(1)
			}

			numChunks, pageTable, err := builder.Finish()
			if err != nil {
				return err
			}

			pageTablePath := filepath.Join(outDir, "docs.txt")
			if err := index.WritePageTable(pageTablePath, pageTable); err != nil {
				return err
			}
			docNoPath := filepath.Join(outDir, "docnos.txt")
			if err := index.WriteDocNoTable(docNoPath, pageTable, docnos); err != nil {
				return err
			}

			fmt.Printf("wrote %d chunks, %d documents, to %s\n", numChunks, len(pageTable), outDir)
			return nil
		},
	}
}

func mergeCommand() *cli.Command {
	return &cli.Command{
		Name:  "merge",
		Usage: "k-way merge partial-index chunks into the final index",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "chunks",
				Required: true,
				Usage:    "number of chunks produced by build-index",
			},
		},
		Action: func(c *cli.Context) error {
			build, err := loadBuildConfig(c)
			if err != nil {
				return err
			}
			runID := uuid.New().String()
			log.Printf("merge run %s: %d chunks, format=%v", runID, c.Int("chunks"), build.Format)

			lexicon, err := merge.Merge(merge.Options{
				OutDir:              c.String("out"),
				NumChunks:           c.Int("chunks"),
				Format:              build.Format,
				InputIndexChunkSize: build.InputIndexChunkSize,
			})
			if err != nil {
				return err
			}
			fmt.Printf("merged %d terms into %s\n", len(lexicon), c.String("out"))
			return nil
		},
	}
}
