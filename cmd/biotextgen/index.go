// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/pdiddy/biotextgen/internal/corpus"
	"github.com/pdiddy/biotextgen/internal/corpusdb"
	"github.com/pdiddy/biotextgen/internal/ingest"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the SQLite corpus index (build, search, entities, export)",
	Long: `Index keeps a local SQLite database of the enriched corpus under
index/corpus.db with FTS5 search over titles and abstracts and lookups by
entity and search term.`,
}

// --- build subcommand ---

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Index the enriched corpus snapshot",
	Long: `Build loads enriched/abstracts_to_text.json (or --snapshot) into the index,
replacing its previous contents. An unchanged snapshot is skipped.`,
	RunE: runIndexBuild,
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	snapshot, _ := cmd.Flags().GetString("snapshot")
	if snapshot == "" {
		snapshot = filepath.Join(cfg.OutputDir, corpus.ReducedPath)
	}

	var terms corpusdb.TermSource
	if m, err := openManifest(cmd, cfg.InputDir); err == nil {
		ix, _ := ingest.BuildTermIndex(m, os.Stdout)
		terms = ix
	} else {
		fmt.Fprintf(os.Stdout, "skipped term index: %v\n", err)
	}

	store, err := openStore(cmd, cfg.OutputDir)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Ingest(cmd.Context(), snapshot, terms, os.Stdout)
	return err
}

// --- search subcommand ---

var indexSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the index by full text, entity or term",
	RunE:  runIndexSearch,
}

func runIndexSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --entity, or --term")
	}

	store, err := openStore(cmd, cfg.OutputDir)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-10s  %-60s  %s\n", "Rank", "PMID", "Title", "Entities")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%-4d  %-10s  %-60s  %d\n", i+1, r.PMID, truncate(r.Title, 60), len(r.Entities))
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- entities subcommand ---

var indexEntitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "List the most frequent multi-word entities in the index",
	RunE:  runIndexEntities,
}

func runIndexEntities(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	n, _ := cmd.Flags().GetInt("top")
	if n == 0 {
		n = cfg.Stats.TopEntities
	}

	store, err := openStore(cmd, cfg.OutputDir)
	if err != nil {
		return err
	}
	defer store.Close()

	counts, err := store.EntityCounts(cmd.Context(), n)
	if err != nil {
		return err
	}
	for _, c := range counts {
		fmt.Fprintf(os.Stdout, "%5d  %s\n", c.Count, c.Entity)
	}
	return nil
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export indexed records to YAML or JSON",
	Long: `Export writes the indexed records (or the subset matching the search
flags) to index/export.yaml or index/export.json.`,
	RunE: runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")

	store, err := openStore(cmd, cfg.OutputDir)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = store.ExportJSON(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command, outputDir string) (*corpusdb.Store, error) {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return corpusdb.Open(outputDir, maxResults)
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) corpusdb.QueryOptions {
	query, _ := cmd.Flags().GetString("query")
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}
	entity, _ := cmd.Flags().GetString("entity")
	term, _ := cmd.Flags().GetString("term")
	limit, _ := cmd.Flags().GetInt("limit")
	return corpusdb.QueryOptions{
		Query:      query,
		Entity:     entity,
		Term:       term,
		MaxResults: limit,
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	indexCmd.PersistentFlags().Int("max-results", 20, "default number of search results")

	indexBuildCmd.Flags().String("snapshot", "", "snapshot to index (default: enriched/abstracts_to_text.json)")
	indexBuildCmd.Flags().String("manifest", "", "manifest file for search terms (default: <input-dir>/manifest.yaml)")

	for _, c := range []*cobra.Command{indexSearchCmd, indexExportCmd} {
		c.Flags().String("query", "", "FTS5 query over title and abstract")
		c.Flags().String("entity", "", "filter by exact entity mention")
		c.Flags().String("term", "", "filter by search term")
		c.Flags().Int("limit", 0, "maximum results (0 = use default)")
	}
	indexSearchCmd.Flags().Bool("json", false, "output results as JSON")
	indexEntitiesCmd.Flags().Int("top", 0, "number of entities listed (0 = config default)")
	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexSearchCmd)
	indexCmd.AddCommand(indexEntitiesCmd)
	indexCmd.AddCommand(indexExportCmd)

	rootCmd.AddCommand(indexCmd)
}
