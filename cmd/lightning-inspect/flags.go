package main

import (
	"flag"
	"time"
)

// options bundles every command-line flag lightning-inspect accepts.
type options struct {
	target           string
	watch            bool
	interval         time.Duration
	json             bool
	version          bool
	heapProfile      string
	goroutineProfile string
}

func parseFlags() *options {
	opts := &options{}
	flag.StringVar(&opts.target, "target", "http://localhost:6060", "base URL of the process exposing /debug/lightning/snapshot")
	flag.BoolVar(&opts.watch, "watch", false, "poll the snapshot endpoint repeatedly instead of once")
	flag.DurationVar(&opts.interval, "interval", 2*time.Second, "polling interval when -watch is set")
	flag.BoolVar(&opts.json, "json", false, "print the raw JSON snapshot instead of a pretty summary")
	flag.BoolVar(&opts.version, "version", false, "print the CLI version and exit")
	flag.StringVar(&opts.heapProfile, "heap-profile", "", "download a heap profile to this path and exit")
	flag.StringVar(&opts.goroutineProfile, "goroutine-profile", "", "download a goroutine profile to this path and exit")
	flag.Parse()
	return opts
}
