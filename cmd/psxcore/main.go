package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"psxcore/internal/bios"
	"psxcore/internal/console"
	"psxcore/internal/cpu"
)

func main() {
	verbose := flag.Bool("v", false, "enable verbose logging")
	biosPath := flag.String("bios", "", "path to a BIOS image (omit to run a dummy BIOS)")
	debug := flag.Bool("debug", false, "run under the interactive terminal debugger")
	breakAt := flag.Uint64("break", 0, "address to set a debugger breakpoint at (requires -debug)")
	flag.Parse()

	printIfVerbose(*verbose, "Starting PSX core...")

	var img *bios.Image
	if *biosPath == "" {
		printIfVerbose(*verbose, "No -bios given, running a dummy BIOS")
		img = bios.NewDummy()
	} else {
		data, err := os.ReadFile(*biosPath)
		if err != nil {
			log.Fatalf("reading BIOS image: %v", err)
		}
		img, err = bios.New(data)
		if err != nil {
			log.Fatalf("loading BIOS image: %v", err)
		}
	}

	printIfVerbose(*verbose, "Building interconnect...")
	interconnect := console.NewBasicInterconnect(img)
	shared := console.NewSharedState()
	c := cpu.New(nil)

	var dbg *console.TermDebugger
	if *debug {
		dbg = console.NewTermDebugger()
		if *breakAt != 0 {
			dbg.AddBreakpoint(uint32(*breakAt))
		}
		dbg.Start()
		defer dbg.Stop()
	}

	done := make(chan struct{})
	stop := make(chan struct{})

	printIfVerbose(*verbose, "Running CPU...")
	start := time.Now()

	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				var debugger console.Debugger
				if dbg != nil {
					debugger = dbg
				}
				c.Step(shared, interconnect, nil, debugger)
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		printIfVerbose(*verbose, "Signal received, stopping CPU...")
		close(stop)
		<-done
	case <-done:
	}

	printIfVerbose(*verbose, "CPU stopped.")
	printIfVerbose(*verbose, "Total execution time: %s", time.Since(start))
}

func printIfVerbose(verbose bool, format string, v ...interface{}) {
	if verbose {
		log.Printf(format, v...)
	}
}
