package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pr0100noob/elta-import/internal/config"
	"github.com/pr0100noob/elta-import/internal/db"
	"github.com/pr0100noob/elta-import/internal/metrics"
	"github.com/pr0100noob/elta-import/internal/metrics/prompush"
	"github.com/pr0100noob/elta-import/internal/record"
	"github.com/pr0100noob/elta-import/internal/service"
)

// multiFlag collects repeated -filter values, each "Field=v1|v2".
type multiFlag []string

func (m *multiFlag) String() string     { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error { *m = append(*m, v); return nil }

// main is the entry point for the importer binary. It loads configuration,
// optionally initializes a metrics backend, opens the selected store, and
// dispatches one command.
func main() {
	var (
		userFlg           string
		roleFlg           string
		filtersFlg        multiFlag
		totalsFlg         bool
		metricsBackendFlg string
		pushGatewayURLFlg string
	)

	flag.StringVar(&userFlg, "user", "admin@local", "acting principal's email")
	flag.StringVar(&roleFlg, "role", "admin", "acting principal's role (admin, user)")
	flag.Var(&filtersFlg, "filter", "report filter, Field=v1|v2 (repeatable)")
	flag.BoolVar(&totalsFlg, "totals", false, "append the totals row on export")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend (pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
	}

	cfg := config.Load()
	initMetrics(cfg, metricsBackendFlg, pushGatewayURLFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		fatalf("open store: %v", err)
	}
	defer conn.Close(ctx)

	svc := service.New(conn, cfg.DataTable)
	p := service.Principal{Email: userFlg, Role: service.Role(roleFlg)}
	start := time.Now()

	switch cmd := flag.Arg(0); cmd {
	case "init":
		if err := svc.Init(ctx, time.Now()); err != nil {
			fatalf("init: %v", err)
		}
		log.Printf("store initialized")

	case "import":
		if flag.NArg() < 2 {
			usage()
		}
		runImport(ctx, svc, p, flag.Arg(1))

	case "report":
		cols, rows, err := svc.Query(ctx, p, parseFilters(filtersFlg))
		if err != nil {
			fatalf("report: %v", err)
		}
		printReport(cols, rows)

	case "export":
		if flag.NArg() < 2 {
			usage()
		}
		data, err := svc.Export(ctx, p, parseFilters(filtersFlg), totalsFlg)
		if err != nil {
			fatalf("export: %v", err)
		}
		if err := os.WriteFile(flag.Arg(1), data, 0o644); err != nil {
			fatalf("export: %v", err)
		}
		log.Printf("wrote %s (%d bytes)", flag.Arg(1), len(data))

	case "uploads":
		ups, err := svc.ListUploads(ctx, p)
		if err != nil {
			fatalf("uploads: %v", err)
		}
		for _, u := range ups {
			fmt.Printf("%d\t%s\t%s\t%s\t%s\n",
				u.ID, u.Filename, u.ContentHash, u.UploadedBy,
				u.UploadedAt.Format(time.RFC3339))
		}

	case "delete-upload":
		if flag.NArg() < 2 {
			usage()
		}
		id, err := strconv.ParseInt(flag.Arg(1), 10, 64)
		if err != nil {
			fatalf("delete-upload: bad id %q", flag.Arg(1))
		}
		if err := svc.DeleteUpload(ctx, p, id); err != nil {
			fatalf("delete-upload: %v", err)
		}
		log.Printf("upload %d deleted", id)

	default:
		fatalf("unknown command %q", cmd)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

func runImport(ctx context.Context, svc *service.Service, p service.Principal, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("import: %v", err)
	}
	rows, meta, err := svc.ParseAndNormalize(ctx, path, data)
	if err != nil {
		fatalf("import: %v", err)
	}
	id, err := svc.Persist(ctx, p, meta, rows)
	if err != nil {
		fatalf("import: %v", err)
	}
	log.Printf("upload %d: %d rows from %s (hash %s)", id, len(rows), path, meta.ContentHash)
}

func printReport(cols []string, rows []record.Record) {
	fmt.Println(strings.Join(cols, "\t"))
	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = record.String(row[c])
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
}

// parseFilters turns repeated "Field=v1|v2" flags into the filter map.
func parseFilters(raw []string) map[string][]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string][]string, len(raw))
	for _, f := range raw {
		field, vals, ok := strings.Cut(f, "=")
		if !ok {
			fatalf("bad filter %q (want Field=v1|v2)", f)
		}
		for _, v := range strings.Split(vals, "|") {
			if v != "" {
				out[field] = append(out[field], v)
			}
		}
	}
	return out
}

// initMetrics decides the metrics backend: flag, then env, then disabled.
func initMetrics(cfg config.Config, backendFlg, gwFlg string, verbose bool) {
	backendName := backendFlg
	if backendName == "" {
		backendName = cfg.MetricsBackend
	}
	switch backendName {
	case "pushgateway":
		gwURL := gwFlg
		if gwURL == "" {
			gwURL = cfg.PushgatewayURL
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend("elta_import", gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		if verbose {
			log.Printf("metrics: url=%v, backend=%v", gwURL, backendName)
		}
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: elta-import [flags] <command> [args]

commands:
  init                  create tables, seed the registry, sync columns
  import <file.xlsx>    parse, normalize, and persist one workbook
  report                print the filtered report
  export <out.xlsx>     write the filtered report as a workbook
  uploads               list upload batches
  delete-upload <id>    remove one upload and its rows

flags:
`)
	flag.PrintDefaults()
	os.Exit(2)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
