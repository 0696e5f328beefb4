package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// outputType describes one generated artifact: its CLI flag, the banner
// title used when writing to stdout, the comment character for that
// banner, and a fixed work estimate for progress weighting.
type outputType struct {
	name    string
	title   string
	comment string
	work    float64
	emit    func(*Database, *sink) error
}

var outputTypes = []outputType{
	{"models", "models.py", "#", 5.0, (*Database).outputModels},
	{"admin", "admin.py", "#", 1.0, (*Database).outputAdmin},
	{"fixture", "fixture.json", "#", 150.0, (*Database).outputFixture},
	{"postgresql", "pg_data.sql", "-", 40.0, (*Database).outputPostgres},
}

type cliOptions struct {
	outputs        map[string]string // output type name -> path or "-"
	appName        string
	schema         string
	keepTableNames bool
	progress       bool
	debug          bool
	sourceType     string
	configPath     string
	loadDSN        string
}

func main() {
	opts := cliOptions{outputs: make(map[string]string)}

	rootCmd := &cobra.Command{
		Use:   "mdb2django [flags] <database>",
		Short: "Generate Django models, admin, fixtures and PostgreSQL bulk-load data from a legacy database snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], &opts)
		},
		SilenceUsage: true,
	}

	flags := rootCmd.Flags()
	var outputFlags [4]*string
	for i, ot := range outputTypes {
		outputFlags[i] = flags.StringP(ot.name+"-file", ot.name[:1], "",
			fmt.Sprintf("write %s to this path, or - for stdout", ot.title))
	}
	flags.StringVarP(&opts.appName, "app-name", "n", "", "Django application name (default myapp)")
	flags.StringVarP(&opts.schema, "schema", "s", "", "schema qualifier prefixed onto generated table names")
	flags.BoolVarP(&opts.keepTableNames, "keep-table-names", "k", false, "keep source table names instead of app_model names")
	flags.BoolVarP(&opts.progress, "progress", "P", false, "report percentage-complete progress")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "dump the resolved relationship set as comments")
	flags.StringVar(&opts.sourceType, "source-type", "sqlite", "snapshot format of the source database (sqlite or mysql)")
	flags.StringVar(&opts.configPath, "config", "", "path to a TOML mapping config file")
	flags.StringVar(&opts.loadDSN, "load-dsn", "", "load the bulk-copy data directly into this PostgreSQL database")

	rootCmd.PreRun = func(cmd *cobra.Command, args []string) {
		for i, ot := range outputTypes {
			opts.outputs[ot.name] = *outputFlags[i]
		}
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, dsn string, opts *cliOptions) error {
	var cfg *MappingConfig
	if opts.configPath != "" {
		var err error
		cfg, err = loadMappingConfig(opts.configPath)
		if err != nil {
			return err
		}
	}
	dbOpts := databaseOptions(cmd, opts, cfg)

	src, err := openSource(opts.sourceType, dsn)
	if err != nil {
		return err
	}
	defer src.Close()
	log.Printf("reading %s source %s", src.Name(), dsn)

	d := newDatabase(src, dbOpts)
	models, err := d.Models()
	if err != nil {
		return err
	}
	log.Printf("found %d tables", len(models))

	totalWork := 0.0
	for _, ot := range outputTypes {
		if opts.outputs[ot.name] != "" {
			totalWork += ot.work
		}
	}

	var tracker *progressTracker
	if opts.progress {
		tracker = newProgressTracker(totalWork, func(pct int, message string) {
			log.Printf("%3d%% %s", pct, message)
		})
	}

	for _, ot := range outputTypes {
		path := opts.outputs[ot.name]
		if path == "" {
			continue
		}
		if err := writeArtifact(d, ot, path, tracker); err != nil {
			return fmt.Errorf("generate %s: %w", ot.title, err)
		}
	}

	if opts.debug {
		if err := dumpRelationships(d); err != nil {
			return err
		}
	}

	if opts.loadDSN != "" {
		if err := loadPostgres(context.Background(), d, opts.loadDSN); err != nil {
			return err
		}
	}
	return nil
}

// databaseOptions merges the TOML mapping config with CLI flags; flags
// that were set explicitly win over the config file.
func databaseOptions(cmd *cobra.Command, opts *cliOptions, cfg *MappingConfig) DatabaseOptions {
	dbOpts := DatabaseOptions{
		AppName:        opts.appName,
		Schema:         opts.schema,
		KeepTableNames: opts.keepTableNames,
	}
	if cfg != nil {
		if dbOpts.AppName == "" {
			dbOpts.AppName = cfg.AppName
		}
		if dbOpts.Schema == "" {
			dbOpts.Schema = cfg.Schema
		}
		if !cmd.Flags().Changed("keep-table-names") {
			dbOpts.KeepTableNames = cfg.KeepTableNames
		}
		dbOpts.TableName = cfg.tableNameFunc()
		dbOpts.ColumnName = cfg.columnNameFunc()
		dbOpts.Convert = cfg.conversionFunc()
	}
	return dbOpts
}

// writeArtifact runs one emitter against a file or, for the "-"
// sentinel, standard output under a banner header.
func writeArtifact(d *Database, ot outputType, path string, tracker *progressTracker) error {
	var w io.Writer
	var f *os.File
	if path == "-" {
		w = os.Stdout
		banner := strings.Repeat(ot.comment, 68-len(ot.title))
		fmt.Printf("\n\n%s %s %s\n\n", banner, ot.title, strings.Repeat(ot.comment, 2))
	} else {
		var err error
		f, err = os.Create(path)
		if err != nil {
			return err
		}
		w = f
	}

	var progress func(int, string)
	if tracker != nil {
		tracker.startArtifact(ot.work)
		progress = tracker.note
	}
	s := newSink(w, progress)
	err := ot.emit(d, s)
	if tracker != nil {
		tracker.finishArtifact()
	}
	if err == nil {
		err = s.err
	}
	if f != nil {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// dumpRelationships prints the resolved relationship set as comments.
func dumpRelationships(d *Database) error {
	models, err := d.Models()
	if err != nil {
		return err
	}
	for _, m := range models {
		for _, f := range m.Fields() {
			rel, err := f.ForeignKey()
			if err != nil {
				return err
			}
			if rel == nil {
				continue
			}
			fmt.Printf("# %s.%s -> %s.%s\n",
				rel.ToField.model.name, rel.ToField.name,
				rel.FromField.model.name, rel.FromField.name)
		}
	}
	return nil
}
