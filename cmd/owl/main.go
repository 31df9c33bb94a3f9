package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/projectdiscovery/gologger"

	"github.com/owlmon/owl/internal/runner"
)

func main() {
	options := runner.ParseOptions()
	owlRunner, err := runner.NewRunner(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create runner: %s\n", err)
	}
	defer owlRunner.Close()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup close handler; the runner drains the sighting queue before
	// Run returns.
	go func() {
		<-c
		cancel()
	}()

	if err := owlRunner.Run(ctx); err != nil {
		gologger.Fatal().Msgf("Could not run owl: %s\n", err)
	}
}
