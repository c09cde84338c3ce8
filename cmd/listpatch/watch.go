package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"flo.znkr.io/listpatch/observe"
	"flo.znkr.io/listpatch/patch"
	"flo.znkr.io/listpatch/script"
	"flo.znkr.io/listpatch/server"
)

func watchCmd() *cobra.Command {
	var (
		cfg  config
		addr string
	)
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Reconcile a list with the lines of FILE whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.OutOrStdout(), &cfg, args[0], addr)
		},
	}
	cfg.flags(cmd.Flags(), "lines")
	cmd.Flags().StringVar(&addr, "addr", "", "serve the list and metrics at this address, e.g. localhost:8080")
	return cmd
}

// watcher reconciles a live list with the contents of a file.
type watcher struct {
	cfg     *config
	path    string
	records *script.Records
	ops     *observe.Recorder
	feed    *server.Feed
	rec     *patch.Reconciler[string]
}

func newWatcher(w io.Writer, cfg *config, path string) (*watcher, error) {
	cb, err := cfg.callback()
	if err != nil {
		return nil, err
	}
	records := script.NewRecords(0)
	opts, err := cfg.options(w, records)
	if err != nil {
		return nil, err
	}
	ops := &observe.Recorder{}
	opts = append(opts, patch.WithObserver(observe.Tee(cfg.observer(w), ops)))
	r := patch.NewReconciler(cb, opts...)
	r.Attach(&patch.Slice[string]{})
	return &watcher{
		cfg:     cfg,
		path:    path,
		records: records,
		ops:     ops,
		feed:    server.NewFeed(filepath.Base(path), 20),
		rec:     r,
	}, nil
}

// reload reads the file and submits its items.
func (w *watcher) reload(ctx context.Context) error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("reading %s: %v", w.path, err)
	}
	items, err := w.cfg.split(string(data))
	if err != nil {
		return err
	}
	err = w.rec.Submit(ctx, items)
	ops := w.ops.Flush()
	if evalErr := w.cfg.evalErr(); evalErr != nil {
		err = evalErr
	}
	if err != nil {
		return fmt.Errorf("reconciling %s: %v", w.path, err)
	}
	w.feed.Add(server.Entry{
		Generation: w.rec.Generation(),
		Time:       time.Now(),
		Items:      len(items),
		Ops:        ops,
	})
	return nil
}

func runWatch(out io.Writer, cfg *config, path, addr string) error {
	w, err := newWatcher(out, cfg, path)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.reload(ctx); err != nil {
		return err
	}

	// Watch the directory, editors tend to replace files instead of writing them.
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %v", err)
	}
	defer fw.Close()
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %v", path, err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("starting watch: %v", err)
	}
	var serveErr <-chan error
	if addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(w.records)
		srv, err := server.Run(addr, w.rec, w.feed, reg)
		if err != nil {
			return err
		}
		defer srv.Shutdown(context.Background())
		serveErr = srv.Error()
		log.Printf("Now serving at %s", srv.Addr())
	}
	log.Printf("Watching %s, press Ctrl-C to stop", path)

	// Setup signals to react to Ctrl-C.
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt)

	for {
		select {
		case event := <-fw.Events:
			if event.Name != abs || event.Has(fsnotify.Chmod) {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				log.Printf("%s is gone, waiting for it to come back", path)
				continue
			}
			start := time.Now()
			if err := w.reload(ctx); err != nil {
				log.Printf("failed to reconcile: %v", err)
				continue
			}
			log.Printf("Reconciled generation %d (%v)", w.rec.Generation(), time.Since(start))
		case err := <-fw.Errors:
			return fmt.Errorf("watching: %v", err)
		case err := <-serveErr:
			return fmt.Errorf("serving: %v", err)
		case <-sigint:
			fmt.Print("\r") // remove Ctrl-C output characters
			log.Printf("Received Ctrl-C, shutting down")
			return nil
		}
	}
}
