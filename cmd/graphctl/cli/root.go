// Package cli builds the graphctl command tree: one persistent --db flag
// selecting the database path, and commands for node and relationship
// add/show/rm, expand, and stats.
// Grounded on the teacher's flag-based config wiring in src/main.go,
// rebuilt with cobra + viper per SPEC_FULL.md §9's ambient stack.
package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jgodjo/pagegraph/config"
	"github.com/jgodjo/pagegraph/graphdb"
	"github.com/jgodjo/pagegraph/model"
)

var (
	dbPath     string
	pageSize   int
	cachePages int
	evictK     int
	verbose    bool
)

// Root builds the graphctl command tree.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "graphctl",
		Short: "Operate a pagegraph graph database",
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "graph", "database path prefix")
	root.PersistentFlags().IntVar(&pageSize, "pagesize", config.DefaultPageSize, "page size in bytes")
	root.PersistentFlags().IntVar(&cachePages, "cache-pages", config.DefaultCachePages, "buffer pool frame count")
	root.PersistentFlags().IntVar(&evictK, "evict-k", config.DefaultEvictLRUK, "LRU-K eviction constant")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(nodeCmd(), relCmd(), expandCmd(), statsCmd())
	return root
}

func logger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func openEngine() (*graphdb.Engine, error) {
	cfg := config.NewWithParams(dbPath, pageSize, cachePages, evictK)
	return graphdb.Open(cfg, logger())
}

func parseID(s string) (model.ID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return model.ID(n), nil
}

func parseDirection(s string) (model.Direction, error) {
	switch s {
	case "outgoing", "out":
		return model.Outgoing, nil
	case "incoming", "in":
		return model.Incoming, nil
	case "both", "":
		return model.Both, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (want outgoing|incoming|both)", s)
	}
}

func nodeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "node", Short: "Node operations"}

	add := &cobra.Command{
		Use:   "add <label>",
		Short: "Create a node with the given label",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			label, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			e, err := openEngine()
			if err != nil {
				return err
			}
			defer e.Close()
			id, err := e.CreateNode(label)
			if err != nil {
				return err
			}
			fmt.Println(uint64(id))
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a node record",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := openEngine()
			if err != nil {
				return err
			}
			defer e.Close()
			rec, err := e.GetNode(id)
			if err != nil {
				return err
			}
			fmt.Printf("id=%d label=%d first_relationship=%d in_use=%v\n",
				rec.ID, rec.Label, rec.FirstRelationship, rec.InUse())
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a node (must have no incident relationships)",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := openEngine()
			if err != nil {
				return err
			}
			defer e.Close()
			return e.DeleteNode(id)
		},
	}

	cmd.AddCommand(add, show, rm)
	return cmd
}

func relCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "rel", Short: "Relationship operations"}

	add := &cobra.Command{
		Use:   "add <src> <tgt> <label> <weight>",
		Short: "Create a relationship",
		Args:  cobra.ExactArgs(4),
		RunE: func(c *cobra.Command, args []string) error {
			src, err := parseID(args[0])
			if err != nil {
				return err
			}
			tgt, err := parseID(args[1])
			if err != nil {
				return err
			}
			label, err := strconv.ParseUint(args[2], 10, 64)
			if err != nil {
				return err
			}
			weight, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return err
			}
			e, err := openEngine()
			if err != nil {
				return err
			}
			defer e.Close()
			id, err := e.CreateRelationship(src, tgt, label, weight)
			if err != nil {
				return err
			}
			fmt.Println(uint64(id))
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a relationship record",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := openEngine()
			if err != nil {
				return err
			}
			defer e.Close()
			rec, err := e.GetRelationship(id)
			if err != nil {
				return err
			}
			fmt.Printf("id=%d src=%d tgt=%d label=%d weight=%g\n",
				rec.ID, rec.SourceNode, rec.TargetNode, rec.Label, rec.Weight)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a relationship",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := openEngine()
			if err != nil {
				return err
			}
			defer e.Close()
			return e.DeleteRelationship(id)
		},
	}

	cmd.AddCommand(add, show, rm)
	return cmd
}

func expandCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "expand <node>",
		Short: "List relationships incident to a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			d, err := parseDirection(dir)
			if err != nil {
				return err
			}
			e, err := openEngine()
			if err != nil {
				return err
			}
			defer e.Close()
			ids, err := e.Expand(id, d)
			if err != nil {
				return err
			}
			for _, rid := range ids {
				fmt.Println(uint64(rid))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "both", "outgoing|incoming|both")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print buffer pool and I/O counters",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			e, err := openEngine()
			if err != nil {
				return err
			}
			defer e.Close()
			s := e.Stats()
			fmt.Printf("pins=%d unpins=%d evictions=%d free_frames=%d\n", s.Cache.Pins, s.Cache.Unpins, s.Cache.Evictions, s.Cache.FreeFrames)
			fmt.Printf("node_reads=%d node_writes=%d\n", s.NodeIO.Reads, s.NodeIO.Writes)
			fmt.Printf("rel_reads=%d rel_writes=%d\n", s.RelIO.Reads, s.RelIO.Writes)
			return nil
		},
	}
}
